package repository

import (
	"github.com/fisa/matjip-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalysisRepository interface {
	Upsert(analysis *model.ReviewAnalysis) error
	FindByRestaurant(restaurantID uint) (*model.ReviewAnalysis, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Upsert 맛집당 1건 유지 (restaurant_id 충돌 시 갱신)
func (r *analysisRepository) Upsert(analysis *model.ReviewAnalysis) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "restaurant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"taste", "value", "service", "hygiene", "mood",
			"summary", "keywords", "review_count", "fallback", "analyzed_at",
		}),
	}).Create(analysis).Error
}

func (r *analysisRepository) FindByRestaurant(restaurantID uint) (*model.ReviewAnalysis, error) {
	var analysis model.ReviewAnalysis
	if err := r.db.Where("restaurant_id = ?", restaurantID).First(&analysis).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}
