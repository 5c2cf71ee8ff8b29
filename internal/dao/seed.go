package dao

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gogf/gf/v2/frame/g"
	"gorm.io/gorm"

	gormModel "github.com/breddycfc/social-places-ai-test/internal/model/gorm"
)

// seedRandSource 固定随机种子，重复灌入得到相同的数据分布
const seedRandSource = 20240601

var storeNames = []string{
	"Social Places V&A Waterfront",
	"Social Places Canal Walk",
	"Social Places Gateway",
	"Social Places Sandton City",
	"Social Places Menlyn Park",
	"Social Places Eastgate",
	"Social Places Tyger Valley",
	"Social Places Cavendish Square",
	"Social Places Mall of Africa",
	"Social Places Brooklyn Mall",
}

var platforms = []string{"Google", "Facebook", "TripAdvisor", "Instagram", "Hellopeter"}

var reviewStatuses = []string{"Resolved", "Open", "Pending"}

// seedCategory 评论命中的主题及情感倾向
type seedCategory struct {
	name      string
	sentiment string
}

// seedComment 演示评论文本及其主题标注
type seedComment struct {
	text       string
	categories []seedCategory
}

var positiveComments = []seedComment{
	{"Absolutely fantastic service, our waiter went above and beyond. The food was delicious too!", []seedCategory{{"Service", "Positive"}, {"Food", "Positive"}}},
	{"Best burger I've had in ages. Great atmosphere and friendly staff.", []seedCategory{{"Food", "Positive"}, {"Atmosphere", "Positive"}, {"Service", "Positive"}}},
	{"Spotless restaurant, quick service and the kids loved the play area.", []seedCategory{{"Cleanliness", "Positive"}, {"Service", "Positive"}}},
	{"Lovely evening out. The manager checked in on us and the dessert was on the house.", []seedCategory{{"Service", "Positive"}, {"Atmosphere", "Positive"}}},
	{"Great value for money, generous portions and everything arrived hot.", []seedCategory{{"Food", "Positive"}}},
	{"The new menu is superb and the staff were attentive without being pushy.", []seedCategory{{"Food", "Positive"}, {"Service", "Positive"}}},
	{"Beautiful view from the deck, perfect spot for a family lunch.", []seedCategory{{"Environment", "Positive"}, {"Atmosphere", "Positive"}}},
	{"Quick, friendly and clean. Exactly what you want from a lunch stop.", []seedCategory{{"Service", "Positive"}, {"Cleanliness", "Positive"}}},
}

var negativeComments = []seedComment{
	{"Waited 45 minutes for cold food. Nobody apologised.", []seedCategory{{"Service", "Negative"}, {"Food", "Negative"}}},
	{"The tables were sticky and the bathroom was a mess. Won't be back.", []seedCategory{{"Cleanliness", "Negative"}}},
	{"Rude staff and wrong order twice. Terrible experience.", []seedCategory{{"Service", "Negative"}}},
	{"Food was bland and overpriced for what you get.", []seedCategory{{"Food", "Negative"}}},
	{"Far too noisy, we couldn't hear each other at all and the music was blaring.", []seedCategory{{"Atmosphere", "Negative"}, {"Environment", "Negative"}}},
	{"My order was forgotten entirely. Had to ask three times for the bill.", []seedCategory{{"Service", "Negative"}}},
	{"Found a hair in my salad and the manager just shrugged.", []seedCategory{{"Food", "Negative"}, {"Cleanliness", "Negative"}, {"Service", "Negative"}}},
	{"Parking is a nightmare and the queue was out the door with only two tills open.", []seedCategory{{"Environment", "Negative"}, {"Service", "Negative"}}},
}

var mixedComments = []seedComment{
	{"Food was great but the service was painfully slow.", []seedCategory{{"Food", "Positive"}, {"Service", "Negative"}}},
	{"Lovely venue, although the menu feels tired and needs a refresh.", []seedCategory{{"Atmosphere", "Positive"}, {"Food", "Neutral"}}},
	{"Our waitron was wonderful, shame about the cold chips.", []seedCategory{{"Service", "Positive"}, {"Food", "Negative"}}},
	{"Decent spot for a quick bite, nothing special though.", []seedCategory{{"Food", "Neutral"}}},
	{"The breakfast was excellent but the place could do with a deep clean.", []seedCategory{{"Food", "Positive"}, {"Cleanliness", "Negative"}}},
	{"Good coffee, average food, friendly enough staff.", []seedCategory{{"Food", "Neutral"}, {"Service", "Positive"}}},
}

var reviewerNames = []string{
	"Thabo Mokoena", "Sarah van der Merwe", "Ayesha Patel", "Johan Botha", "Lerato Dlamini",
	"Michael O'Connor", "Zanele Khumalo", "Pieter du Plessis", "Fatima Abrahams", "David Naidoo",
	"Nomvula Sithole", "Chris Venter", "Priya Govender", "Sipho Ndlovu", "Annelie Steyn",
	"James Mitchell", "Busisiwe Mthembu", "Riaan Fourie", "Jessica Adams", "Mandla Zulu",
	"Carla Jacobs", "Tumelo Molefe", "Megan Smith", "Kagiso Maleka", "Liezel Pretorius",
	"Andile Ngcobo", "Rachel Daniels", "Werner Kruger", "Naledi Mokwena", "Brandon Pillay",
}

var waitronNames = []string{
	"Sibongile", "Tracey", "Lwazi", "Chantelle", "Bongani",
	"Anika", "Thulani", "Candice", "Katlego", "Dewald",
}

var meals = []string{
	"Cheese Burger", "Rump Steak 300g", "Margherita Pizza", "Chicken Schnitzel",
	"Calamari Starter", "Full English Breakfast", "Butter Chicken Curry",
	"Caesar Salad", "Ribs & Wings Combo",
}

// SeedIfEmpty 在评论表为空时灌入演示数据，返回实际插入的评论条数。
// 已有数据时不做任何写入，避免覆盖真实评论。
func SeedIfEmpty(ctx context.Context, gdb *gorm.DB, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	var existing int64
	if err := gdb.Model(&gormModel.Review{}).Count(&existing).Error; err != nil {
		return 0, fmt.Errorf("统计评论条数失败: %w", err)
	}
	if existing > 0 {
		g.Log().Infof(ctx, "评论库已有 %d 条评论，跳过演示数据灌入", existing)
		return 0, nil
	}

	rng := rand.New(rand.NewSource(seedRandSource))
	end := time.Now()

	err := gdb.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < count; i++ {
			review, categories, ratings, extras := buildSeedReview(rng, end)
			if err := tx.Create(review).Error; err != nil {
				return err
			}
			for j := range categories {
				categories[j].ReviewID = review.ID
			}
			if len(categories) > 0 {
				if err := tx.Create(&categories).Error; err != nil {
					return err
				}
			}
			for j := range ratings {
				ratings[j].ReviewID = review.ID
			}
			if len(ratings) > 0 {
				if err := tx.Create(&ratings).Error; err != nil {
					return err
				}
			}
			for j := range extras {
				extras[j].ReviewID = review.ID
			}
			if len(extras) > 0 {
				if err := tx.Create(&extras).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// buildSeedReview 生成一条演示评论及其子表记录。
// Canal Walk 与 Tyger Valley 两家门店刻意偏负面，保证"表现最差门店"类查询有稳定答案。
func buildSeedReview(rng *rand.Rand, end time.Time) (*gormModel.Review, []gormModel.ReviewCategory, []gormModel.ReviewRating, []gormModel.ReviewExtra) {
	store := storeNames[rng.Intn(len(storeNames))]

	posWeight, negWeight := 60, 25
	if store == "Social Places Canal Walk" || store == "Social Places Tyger Valley" {
		posWeight, negWeight = 30, 50
	}

	var comment seedComment
	var rating int
	switch roll := rng.Intn(100); {
	case roll < posWeight:
		comment = positiveComments[rng.Intn(len(positiveComments))]
		rating = 4 + rng.Intn(2) // 4-5
	case roll < posWeight+negWeight:
		comment = negativeComments[rng.Intn(len(negativeComments))]
		rating = 1 + rng.Intn(3) // 1-3
	default:
		comment = mixedComments[rng.Intn(len(mixedComments))]
		rating = 2 + rng.Intn(3) // 2-4
	}

	// 评论时间落在近两年内
	reviewDate := end.AddDate(0, 0, -rng.Intn(730)).Add(-time.Duration(rng.Intn(24)) * time.Hour)

	review := &gormModel.Review{
		StoreName:     store,
		BrandName:     "Social Places",
		Platform:      platforms[rng.Intn(len(platforms))],
		ReviewDate:    reviewDate,
		ReviewComment: comment.text,
		ReviewerName:  reviewerNames[rng.Intn(len(reviewerNames))],
		ReviewStatus:  reviewStatuses[rng.Intn(len(reviewStatuses))],
		Rating:        rating,
	}

	categories := make([]gormModel.ReviewCategory, 0, len(comment.categories))
	for _, c := range comment.categories {
		categories = append(categories, gormModel.ReviewCategory{
			CategoryName: c.name,
			Sentiment:    c.sentiment,
		})
	}

	var ratings []gormModel.ReviewRating
	if rng.Intn(100) < 70 {
		// Service 子评分围绕总评分 ±1
		ratings = append(ratings, gormModel.ReviewRating{
			FieldName:   "Service",
			RatingValue: clampRating(rating + rng.Intn(3) - 1),
		})
	}
	if rng.Intn(100) < 50 {
		ratings = append(ratings, gormModel.ReviewRating{
			FieldName:   "Cleanliness",
			RatingValue: 3 + rng.Intn(3),
		})
	}

	var extras []gormModel.ReviewExtra
	if rng.Intn(100) < 40 {
		extras = append(extras, gormModel.ReviewExtra{
			FieldName:  "Waitron Name",
			FieldValue: waitronNames[rng.Intn(len(waitronNames))],
		})
	}
	if rng.Intn(100) < 30 {
		extras = append(extras, gormModel.ReviewExtra{
			FieldName:  "Meal Ordered",
			FieldValue: meals[rng.Intn(len(meals))],
		})
	}

	return review, categories, ratings, extras
}

// clampRating 将评分收敛到 1-5 区间
func clampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
