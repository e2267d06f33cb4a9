package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/fisa/matjip-backend/internal/cache"
	"github.com/fisa/matjip-backend/pkg/logger"
	"github.com/fisa/matjip-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound       = errors.New("review not found")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrCommentRequired      = errors.New("comment is required")
	ErrParentNotFound       = errors.New("parent review not found")
	ErrParentTargetMismatch = errors.New("parent review belongs to another target")
	ErrInvalidTarget        = errors.New("invalid review target")
)

// IndentPerDepth 답글 깊이당 들여쓰기(px)
const IndentPerDepth = 25

const reviewCachePrefix = "reviews:"

type ReviewService interface {
	AddReview(ctx context.Context, actor Actor, target model.Target, comment string, rating int, parentID *uint) (*model.Review, error)
	Thread(ctx context.Context, target model.Target) (*model.ReviewThread, error)
}

type reviewService struct {
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
	menuRepo       repository.MenuRepository
	cache          cache.Cache
	events         EventPublisher
	// writes 리뷰 저장마다 증가, 읽는 도중 바뀌면 트리를 캐시하지 않는다
	writes atomic.Uint64
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	restaurantRepo repository.RestaurantRepository,
	menuRepo repository.MenuRepository,
	c cache.Cache,
	events EventPublisher,
) ReviewService {
	if c == nil {
		c = cache.Noop{}
	}
	return &reviewService{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
		menuRepo:       menuRepo,
		cache:          c,
		events:         publisherOrNop(events),
	}
}

// AddReview 최상위 리뷰는 평점 1~5, 답글은 평점 0으로 저장
// 부모는 이미 존재하고 같은 대상에 속해야 한다
func (s *reviewService) AddReview(ctx context.Context, actor Actor, target model.Target, comment string, rating int, parentID *uint) (*model.Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrCommentRequired
	}
	if err := s.ensureTarget(target); err != nil {
		return nil, err
	}

	if parentID == nil {
		if rating < 1 || rating > 5 {
			return nil, ErrInvalidRating
		}
	} else {
		parent, err := s.reviewRepo.FindByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Reply rejected: parent not found", logger.Fields{
					"parent_id": *parentID,
				})
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.TargetType != target.Type || parent.TargetID != target.ID {
			logger.Warn("Reply rejected: parent belongs to another target", logger.Fields{
				"parent_id":     *parentID,
				"parent_target": parent.TargetID,
				"target_id":     target.ID,
			})
			return nil, ErrParentTargetMismatch
		}
		rating = model.ReplyRating
	}

	review := &model.Review{
		TargetType: target.Type,
		TargetID:   target.ID,
		UserID:     actor.UserID,
		User:       &model.User{ID: actor.UserID, Name: actor.UserName},
		Rating:     rating,
		Comment:    comment,
		ParentID:   parentID,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}
	s.writes.Add(1)

	s.cache.Invalidate(ctx, threadCacheKey(target), restaurantCachePrefix)
	s.events.Publish(EventReviewCreated, review)

	logger.Info("Review added", logger.Fields{
		"review_id":   review.ID,
		"target_type": target.Type,
		"target_id":   target.ID,
		"is_reply":    parentID != nil,
	})
	return review, nil
}

func (s *reviewService) Thread(ctx context.Context, target model.Target) (*model.ReviewThread, error) {
	if err := s.ensureTarget(target); err != nil {
		return nil, err
	}

	key := threadCacheKey(target)
	var cached model.ReviewThread
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	seen := s.writes.Load()
	rows, err := s.reviewRepo.ListByTarget(target)
	if err != nil {
		return nil, err
	}

	roots, orphans := BuildCommentTree(rows)
	if len(orphans) > 0 {
		logger.Warn("Unreachable comments found", logger.Fields{
			"target_type": target.Type,
			"target_id":   target.ID,
			"count":       len(orphans),
		})
	}

	count, avg := summarizeRatings(rows)
	thread := &model.ReviewThread{
		Target:    target,
		Count:     count,
		AvgRating: util.RoundRating(avg),
		Stars:     util.StarRating(avg),
		Roots:     roots,
		Orphans:   orphans,
	}

	if s.writes.Load() == seen {
		s.cache.Set(ctx, key, thread)
	}
	return thread, nil
}

func (s *reviewService) ensureTarget(target model.Target) error {
	var err error
	switch target.Type {
	case model.TargetRestaurant:
		if _, err = s.restaurantRepo.FindByID(target.ID); errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRestaurantNotFound
		}
	case model.TargetMenuItem:
		if _, err = s.menuRepo.FindByID(target.ID); errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMenuItemNotFound
		}
	default:
		return ErrInvalidTarget
	}
	return err
}

func threadCacheKey(target model.Target) string {
	return fmt.Sprintf("%s%s:%d", reviewCachePrefix, target.Type, target.ID)
}

// summarizeRatings 최상위 리뷰(평점 > 0)만 집계
func summarizeRatings(rows []model.Review) (int, float64) {
	var count, sum int
	for _, r := range rows {
		if r.IsRoot() && r.Rating > 0 {
			count++
			sum += r.Rating
		}
	}
	if count == 0 {
		return 0, 0
	}
	return count, float64(sum) / float64(count)
}
