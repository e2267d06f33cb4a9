package sheet

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/fisa/matjip-backend/internal/app/model"
	"gorm.io/gorm"
)

// ReviewStore "reviews" 시트 기반 리뷰 저장소
// 작성자 이름을 함께 저장해 users 테이블 없이도 표시 가능
type ReviewStore struct {
	wb *Workbook
}

func NewReviewStore(wb *Workbook) *ReviewStore {
	return &ReviewStore{wb: wb}
}

func (s *ReviewStore) Create(review *model.Review) error {
	return s.wb.Update(ReviewSheet, func(records []Record) ([]Record, error) {
		review.ID = nextID(records)
		if review.CreatedAt.IsZero() {
			review.CreatedAt = time.Now()
		}
		return append(records, encodeReview(review)), nil
	})
}

func (s *ReviewStore) FindByID(id uint) (*model.Review, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *ReviewStore) ListByTarget(target model.Target) ([]model.Review, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	result := make([]model.Review, 0)
	for _, r := range all {
		if r.TargetType == target.Type && r.TargetID == target.ID {
			result = append(result, r)
		}
	}
	sortByCreated(result)
	return result, nil
}

func (s *ReviewStore) RatingStats(targetType model.TargetType, ids []uint) ([]model.RatingStat, error) {
	roots, err := s.ListRoots(targetType, ids)
	if err != nil {
		return nil, err
	}

	sums := make(map[uint]int)
	counts := make(map[uint]int64)
	var order []uint
	for _, r := range roots {
		if _, ok := counts[r.TargetID]; !ok {
			order = append(order, r.TargetID)
		}
		sums[r.TargetID] += r.Rating
		counts[r.TargetID]++
	}

	stats := make([]model.RatingStat, 0, len(order))
	for _, id := range order {
		stats = append(stats, model.RatingStat{
			TargetID:    id,
			ReviewCount: counts[id],
			AvgRating:   float64(sums[id]) / float64(counts[id]),
		})
	}
	return stats, nil
}

func (s *ReviewStore) ListRoots(targetType model.TargetType, ids []uint) ([]model.Review, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}

	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	result := make([]model.Review, 0)
	for _, r := range all {
		if r.TargetType != targetType || !r.IsRoot() || r.Rating <= 0 {
			continue
		}
		if len(ids) > 0 && !wanted[r.TargetID] {
			continue
		}
		result = append(result, r)
	}
	sortByCreated(result)
	return result, nil
}

func (s *ReviewStore) all() ([]model.Review, error) {
	records, err := s.wb.Records(ReviewSheet)
	if err != nil {
		return nil, err
	}
	reviews := make([]model.Review, 0, len(records))
	for _, rec := range records {
		reviews = append(reviews, decodeReview(rec))
	}
	return reviews, nil
}

func sortByCreated(reviews []model.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		}
		return reviews[i].ID < reviews[j].ID
	})
}

func encodeReview(r *model.Review) Record {
	parent := rootParent
	if r.ParentID != nil {
		parent = formatUint(*r.ParentID)
	}
	targetType := r.TargetType
	if targetType == "" {
		targetType = model.TargetRestaurant
	}
	return Record{
		"id":          formatUint(r.ID),
		"target_type": string(targetType),
		"target_id":   formatUint(r.TargetID),
		"user_id":     r.UserID,
		"user":        r.AuthorName(),
		"rating":      strconv.Itoa(r.Rating),
		"comment":     r.Comment,
		"parent_id":   parent,
		"timestamp":   formatTime(r.CreatedAt),
	}
}

func decodeReview(rec Record) model.Review {
	review := model.Review{
		ID:         parseUint(rec["id"]),
		TargetType: model.TargetType(rec["target_type"]),
		TargetID:   parseUint(rec["target_id"]),
		UserID:     rec["user_id"],
		Comment:    rec["comment"],
		CreatedAt:  parseTime(rec["timestamp"]),
	}
	if review.TargetType == "" {
		review.TargetType = model.TargetRestaurant
	}
	// 평점이 "4.0" 처럼 실수로 저장된 시트도 허용
	if rating, err := strconv.ParseFloat(rec["rating"], 64); err == nil {
		review.Rating = int(math.Round(rating))
	}
	if p := rec["parent_id"]; p != "" && p != rootParent {
		id := parseUint(p)
		review.ParentID = &id
	}
	if name := rec["user"]; name != "" {
		review.User = &model.User{ID: review.UserID, Name: name}
	}
	return review
}
