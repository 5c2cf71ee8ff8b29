package gorm

import (
	"time"
)

// Review 门店评论表
type Review struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreName     string    `gorm:"size:255;not null;index:idx_reviews_store" json:"store_name"`                         // 门店全名，如 'Social Places V&A Waterfront'
	BrandName     string    `gorm:"size:100;not null;default:'Social Places';index:idx_reviews_brand" json:"brand_name"` // 品牌名，本库固定为 'Social Places'
	Platform      string    `gorm:"size:50;not null;index:idx_reviews_platform" json:"platform"`                         // Google, Facebook, TripAdvisor, Instagram, Hellopeter
	ReviewDate    time.Time `gorm:"not null;index:idx_reviews_date" json:"review_date"`                                  // 评论发布时间
	ReviewComment string    `gorm:"type:text" json:"review_comment"`                                                     // 评论正文
	ReviewerName  string    `gorm:"size:100" json:"reviewer_name"`                                                       // 评论人
	ReviewStatus  string    `gorm:"size:50;default:'Open'" json:"review_status"`                                         // Resolved, Open, Pending
	Rating        int       `gorm:"not null;index:idx_reviews_rating;check:rating >= 1 AND rating <= 5" json:"rating"`   // 总评分 1-5
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}

// ReviewCategory 评论主题分类表（一条评论可命中多个主题）
type ReviewCategory struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ReviewID     int64  `gorm:"not null;index:idx_categories_review" json:"review_id"`            // 外键指向 reviews 表
	CategoryName string `gorm:"size:100;not null;index:idx_categories_name" json:"category_name"` // Service, Food, Cleanliness, Atmosphere, Environment
	Sentiment    string `gorm:"size:50;not null;index:idx_categories_sentiment" json:"sentiment"` // Positive, Negative, Neutral
}

// TableName 指定表名
func (ReviewCategory) TableName() string {
	return "review_categories"
}

// ReviewRating 动态子评分表（如 Service、Cleanliness 单项打分）
type ReviewRating struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ReviewID    int64  `gorm:"not null;index:idx_ratings_review" json:"review_id"` // 外键指向 reviews 表
	FieldName   string `gorm:"size:100;not null" json:"field_name"`                // 子评分项名称
	RatingValue int    `gorm:"not null" json:"rating_value"`                       // 子评分 1-5
}

// TableName 指定表名
func (ReviewRating) TableName() string {
	return "review_ratings"
}

// ReviewExtra 动态扩展字段表（如 Waitron Name、Meal Ordered）
type ReviewExtra struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ReviewID   int64  `gorm:"not null;index:idx_extras_review" json:"review_id"` // 外键指向 reviews 表
	FieldName  string `gorm:"size:100;not null" json:"field_name"`               // 扩展字段名
	FieldValue string `gorm:"size:255" json:"field_value"`                       // 扩展字段值
}

// TableName 指定表名
func (ReviewExtra) TableName() string {
	return "review_extras"
}
