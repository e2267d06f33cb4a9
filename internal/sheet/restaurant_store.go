package sheet

import (
	"sort"
	"time"

	"github.com/fisa/matjip-backend/internal/app/model"
	"gorm.io/gorm"
)

// RestaurantStore "restaurants" 시트 기반 맛집 저장소
type RestaurantStore struct {
	wb *Workbook
}

func NewRestaurantStore(wb *Workbook) *RestaurantStore {
	return &RestaurantStore{wb: wb}
}

func (s *RestaurantStore) Create(restaurant *model.Restaurant) error {
	return s.wb.Update(RestaurantSheet, func(records []Record) ([]Record, error) {
		restaurant.ID = nextID(records)
		if restaurant.AddedAt.IsZero() {
			restaurant.AddedAt = time.Now()
		}
		return append(records, encodeRestaurant(restaurant)), nil
	})
}

// CreateWithReview 두 시트를 한 번에 저장
func (s *RestaurantStore) CreateWithReview(restaurant *model.Restaurant, review *model.Review) error {
	return s.wb.UpdateAll(func(tables map[string][]Record) error {
		now := time.Now()
		restaurant.ID = nextID(tables[RestaurantSheet])
		if restaurant.AddedAt.IsZero() {
			restaurant.AddedAt = now
		}
		review.ID = nextID(tables[ReviewSheet])
		review.TargetType = model.TargetRestaurant
		review.TargetID = restaurant.ID
		if review.CreatedAt.IsZero() {
			review.CreatedAt = now
		}

		tables[RestaurantSheet] = append(tables[RestaurantSheet], encodeRestaurant(restaurant))
		tables[ReviewSheet] = append(tables[ReviewSheet], encodeReview(review))
		return nil
	})
}

func (s *RestaurantStore) FindByID(id uint) (*model.Restaurant, error) {
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

func (s *RestaurantStore) FindByNameOrAddress(name, address string) (*model.Restaurant, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	for i := range all {
		if all[i].Name == name || all[i].Address == address {
			return &all[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *RestaurantStore) List(category model.Category) ([]model.Restaurant, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}

	result := make([]model.Restaurant, 0, len(all))
	for _, r := range all {
		if category.IsAll() || r.Category == category {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].AddedAt.Equal(result[j].AddedAt) {
			return result[i].AddedAt.After(result[j].AddedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *RestaurantStore) FindByIDs(ids []uint) ([]model.Restaurant, error) {
	if len(ids) == 0 {
		return []model.Restaurant{}, nil
	}
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	all, err := s.all()
	if err != nil {
		return nil, err
	}
	result := make([]model.Restaurant, 0, len(ids))
	for _, r := range all {
		if wanted[r.ID] {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *RestaurantStore) UpdateImageURL(id uint, imageURL string) error {
	return s.wb.Update(RestaurantSheet, func(records []Record) ([]Record, error) {
		for _, rec := range records {
			if parseUint(rec["id"]) == id {
				rec["image_url"] = imageURL
				return records, nil
			}
		}
		return nil, gorm.ErrRecordNotFound
	})
}

func (s *RestaurantStore) all() ([]model.Restaurant, error) {
	records, err := s.wb.Records(RestaurantSheet)
	if err != nil {
		return nil, err
	}
	restaurants := make([]model.Restaurant, 0, len(records))
	for _, rec := range records {
		restaurants = append(restaurants, decodeRestaurant(rec))
	}
	return restaurants, nil
}

func encodeRestaurant(r *model.Restaurant) Record {
	return Record{
		"id":              formatUint(r.ID),
		"name":            r.Name,
		"category":        string(r.Category),
		"address":         r.Address,
		"cleaned_address": r.CleanedAddress,
		"lat":             formatFloatPtr(r.Latitude),
		"lon":             formatFloatPtr(r.Longitude),
		"url":             r.URL,
		"image_url":       r.ImageURL,
		"added_by":        r.AddedBy,
		"added_at":        formatTime(r.AddedAt),
	}
}

func decodeRestaurant(rec Record) model.Restaurant {
	return model.Restaurant{
		ID:             parseUint(rec["id"]),
		Name:           rec["name"],
		Category:       model.Category(rec["category"]),
		Address:        rec["address"],
		CleanedAddress: rec["cleaned_address"],
		Latitude:       parseFloatPtr(rec["lat"]),
		Longitude:      parseFloatPtr(rec["lon"]),
		URL:            rec["url"],
		ImageURL:       rec["image_url"],
		AddedBy:        rec["added_by"],
		AddedAt:        parseTime(rec["added_at"]),
	}
}

// EncodeRestaurant 시트 레이아웃 한 행 (내보내기용)
func EncodeRestaurant(r *model.Restaurant) Record {
	return encodeRestaurant(r)
}

// DecodeRestaurant 시트 한 행을 맛집으로 (가져오기용)
func DecodeRestaurant(rec Record) model.Restaurant {
	return decodeRestaurant(rec)
}
