package repository

import (
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/pkg/logger"
	"gorm.io/gorm"
)

// ReviewRepository 리뷰/답글 저장소 (관계형 DB 또는 스프레드시트)
type ReviewRepository interface {
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	// ListByTarget 대상의 모든 행 (created_at, id 오름차순)
	ListByTarget(target model.Target) ([]model.Review, error)
	// RatingStats 최상위 리뷰만 집계, ids 가 비어 있으면 전체
	RatingStats(targetType model.TargetType, ids []uint) ([]model.RatingStat, error)
	ListRoots(targetType model.TargetType, ids []uint) ([]model.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", logger.Fields{
		"target_type": review.TargetType,
		"target_id":   review.TargetID,
		"user_id":     review.UserID,
		"parent_id":   review.ParentID,
	})

	// 작성자 이름은 응답용으로만 채워 두므로 users 는 건드리지 않는다
	if err := r.db.Omit("User").Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, logger.Fields{
			"target_id": review.TargetID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Preload("User").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByTarget(target model.Target) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.
		Preload("User").
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error
	if err != nil {
		logger.Error("Failed to list reviews by target", err, logger.Fields{
			"target_type": target.Type,
			"target_id":   target.ID,
		})
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) RatingStats(targetType model.TargetType, ids []uint) ([]model.RatingStat, error) {
	query := r.db.Model(&model.Review{}).
		Select("target_id, COUNT(*) AS review_count, AVG(rating) AS avg_rating").
		Where("target_type = ? AND parent_id IS NULL AND rating > 0", targetType)
	if len(ids) > 0 {
		query = query.Where("target_id IN ?", ids)
	}

	var stats []model.RatingStat
	if err := query.Group("target_id").Scan(&stats).Error; err != nil {
		logger.Error("Failed to aggregate ratings", err)
		return nil, err
	}
	return stats, nil
}

func (r *reviewRepository) ListRoots(targetType model.TargetType, ids []uint) ([]model.Review, error) {
	query := r.db.Where("target_type = ? AND parent_id IS NULL AND rating > 0", targetType)
	if len(ids) > 0 {
		query = query.Where("target_id IN ?", ids)
	}

	var reviews []model.Review
	if err := query.Order("created_at ASC, id ASC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
