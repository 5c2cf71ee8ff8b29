package model

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/breddycfc/social-places-ai-test/core/client"
	"github.com/breddycfc/social-places-ai-test/core/errors"
	"github.com/breddycfc/social-places-ai-test/pkg/schema"
)

// ModelService 统一的模型服务，配置驱动的单模型接入
type ModelService struct {
	client *client.OpenAIClient
}

// NewModelService 创建模型服务
func NewModelService(apiKey, baseURL string) *ModelService {
	return &ModelService{
		client: client.NewOpenAIClient(apiKey, baseURL),
	}
}

// ChatCompletionParams 聊天参数
type ChatCompletionParams struct {
	ModelName           string
	Messages            []*schema.Message
	Temperature         float32
	MaxCompletionTokens int
	ResponseFormat      *openai.ChatCompletionResponseFormat
}

// ChatCompletion 非流式对话
func (s *ModelService) ChatCompletion(ctx context.Context, params ChatCompletionParams) (*openai.ChatCompletionResponse, error) {
	if len(params.Messages) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "messages 不能为空")
	}

	// 转换为OpenAI消息格式
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(params.Messages))
	for _, msg := range params.Messages {
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	req := client.ChatCompletionRequest{
		Model:               params.ModelName,
		Messages:            openaiMessages,
		Temperature:         params.Temperature,
		MaxCompletionTokens: params.MaxCompletionTokens,
		ResponseFormat:      params.ResponseFormat,
	}

	return s.client.ChatCompletion(ctx, req)
}
