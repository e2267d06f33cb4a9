package db

import (
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models 마이그레이션 대상 모델 목록
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Restaurant{},
		&model.MenuItem{},
		&model.Review{},
		&model.Party{},
		&model.PartyParticipant{},
		&model.ReviewAnalysis{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed 개발 환경용 샘플 맛집/메뉴 데이터
// 맛집을 시트에서 읽을 때는 메뉴의 restaurant_id 가 시트 행과 어긋나므로 건너뛴다
func Seed(environment, storageBackend string) error {
	return seed(DB, environment, storageBackend)
}

func seed(db *gorm.DB, environment, storageBackend string) error {
	if environment != "development" {
		logger.Info("Skipping seed outside development", map[string]interface{}{
			"environment": environment,
		})
		return nil
	}
	if storageBackend == "sheet" {
		logger.Info("Skipping seed: restaurants are stored in the spreadsheet")
		return nil
	}
	return seedRestaurants(db)
}

func seedRestaurants(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Restaurant{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Restaurants already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding sample restaurants...")

	type seedRow struct {
		restaurant model.Restaurant
		menu       []model.MenuItem
	}

	f := func(v float64) *float64 { return &v }
	rows := []seedRow{
		{
			restaurant: model.Restaurant{
				Name:     "을지로 김치찌개",
				Category: model.CategoryKorean,
				Address:  "서울특별시 중구 을지로 100",
				Latitude: f(37.5660), Longitude: f(126.9910),
			},
			menu: []model.MenuItem{
				{ItemName: "김치찌개", Price: 9000},
				{ItemName: "제육볶음", Price: 10000},
			},
		},
		{
			restaurant: model.Restaurant{
				Name:     "시청 짬뽕",
				Category: model.CategoryChinese,
				Address:  "서울특별시 중구 세종대로 110",
				Latitude: f(37.5663), Longitude: f(126.9779),
			},
			menu: []model.MenuItem{
				{ItemName: "짬뽕", Price: 10000},
				{ItemName: "짜장면", Price: 8000},
			},
		},
		{
			restaurant: model.Restaurant{
				Name:     "광화문 스시",
				Category: model.CategoryJapan,
				Address:  "서울특별시 종로구 세종대로 172",
				Latitude: f(37.5716), Longitude: f(126.9769),
			},
			menu: []model.MenuItem{
				{ItemName: "점심 초밥 세트", Price: 15000},
			},
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			restaurant := row.restaurant
			restaurant.CleanedAddress = restaurant.Address
			if err := tx.Create(&restaurant).Error; err != nil {
				logger.Error("Failed to create restaurant", err, map[string]interface{}{
					"name": restaurant.Name,
				})
				return err
			}
			for _, item := range row.menu {
				item.RestaurantID = restaurant.ID
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
		}

		logger.Info("Restaurants seeded successfully", map[string]interface{}{
			"total_restaurants": len(rows),
		})
		return nil
	})
}
