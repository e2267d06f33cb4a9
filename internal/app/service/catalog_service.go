package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/fisa/matjip-backend/internal/cache"
	"github.com/fisa/matjip-backend/internal/storage"
	"github.com/fisa/matjip-backend/pkg/geo"
	"github.com/fisa/matjip-backend/pkg/logger"
	"github.com/fisa/matjip-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrRestaurantNotFound   = errors.New("restaurant not found")
	ErrRestaurantExists     = errors.New("restaurant already exists")
	ErrRestaurantNameEmpty  = errors.New("restaurant name is required")
	ErrAddressEmpty         = errors.New("restaurant address is required")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrAddressNotFound      = errors.New("address not found")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")
)

const restaurantCachePrefix = "restaurants:"

// Geocoder 주소 -> 좌표 (실패 시 geo.ErrNotFound)
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geo.Result, error)
}

// PhotoStorage 맛집 사진 업로드 URL 발급
type PhotoStorage interface {
	PresignRestaurantPhoto(ctx context.Context, restaurantID uint, filename, contentType string) (*storage.PresignedUpload, error)
}

type AddRestaurantInput struct {
	Name     string
	Category model.Category
	Address  string
	URL      string
	Rating   int // 0 이면 첫 리뷰 없음
	Comment  string
}

type AddRestaurantResult struct {
	Restaurant *model.Restaurant `json:"restaurant"`
	Existing   bool              `json:"existing"`
	Review     *model.Review     `json:"review,omitempty"`
}

type CatalogService interface {
	AddRestaurant(ctx context.Context, actor Actor, input AddRestaurantInput) (*AddRestaurantResult, error)
	ListRestaurants(ctx context.Context, category model.Category) ([]model.RestaurantSummary, error)
	GetRestaurant(id uint) (*model.RestaurantSummary, error)
	MapMarkers(ctx context.Context, category model.Category) (*model.MapView, error)
	RatingTrend(ids []uint) ([]model.TrendPoint, error)
	AddMenuItem(restaurantID uint, itemName string, price int) (*model.MenuItem, error)
	ListMenu(restaurantID uint) ([]model.MenuItem, error)
	MenuWithinBudget(budget, limit int, lat, lon *float64) ([]model.MenuCandidate, error)
	AttachPhoto(ctx context.Context, restaurantID uint, filename, contentType string) (*storage.PresignedUpload, error)
}

// Actor 요청한 사용자
type Actor struct {
	UserID   string
	UserName string
}

type catalogService struct {
	restaurantRepo repository.RestaurantRepository
	reviewRepo     repository.ReviewRepository
	menuRepo       repository.MenuRepository
	geocoder       Geocoder
	photos         PhotoStorage
	cache          cache.Cache
	events         EventPublisher
	defaultLat     float64
	defaultLon     float64
}

type CatalogDeps struct {
	Restaurants repository.RestaurantRepository
	Reviews     repository.ReviewRepository
	Menu        repository.MenuRepository
	Geocoder    Geocoder
	Photos      PhotoStorage // nil 이면 사진 업로드 비활성화
	Cache       cache.Cache
	Events      EventPublisher
	DefaultLat  float64
	DefaultLon  float64
}

func NewCatalogService(deps CatalogDeps) CatalogService {
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	return &catalogService{
		restaurantRepo: deps.Restaurants,
		reviewRepo:     deps.Reviews,
		menuRepo:       deps.Menu,
		geocoder:       deps.Geocoder,
		photos:         deps.Photos,
		cache:          c,
		events:         publisherOrNop(deps.Events),
		defaultLat:     deps.DefaultLat,
		defaultLon:     deps.DefaultLon,
	}
}

// AddRestaurant 이름 또는 주소가 같은 맛집이 있으면 기존 맛집과 ErrRestaurantExists 를 돌려준다
// 좌표를 얻지 못하면 저장하지 않는다
func (s *catalogService) AddRestaurant(ctx context.Context, actor Actor, input AddRestaurantInput) (*AddRestaurantResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.Comment = strings.TrimSpace(input.Comment)

	logger.Info("Adding restaurant", logger.Fields{
		"name":     input.Name,
		"category": input.Category,
		"user_id":  actor.UserID,
	})

	if input.Name == "" {
		return nil, ErrRestaurantNameEmpty
	}
	if input.Address == "" {
		return nil, ErrAddressEmpty
	}
	if !input.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if input.Rating < 0 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if input.Rating > 0 && input.Comment == "" {
		return nil, ErrCommentRequired
	}

	existing, err := s.restaurantRepo.FindByNameOrAddress(input.Name, input.Address)
	if err == nil {
		logger.Info("Restaurant already exists", logger.Fields{
			"restaurant_id": existing.ID,
			"name":          existing.Name,
		})
		return &AddRestaurantResult{Restaurant: existing, Existing: true}, ErrRestaurantExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	location, err := s.geocoder.Geocode(ctx, input.Address)
	if err != nil {
		logger.Warn("Restaurant not saved: address not geocodable", logger.Fields{
			"address": input.Address,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrAddressNotFound, err)
	}

	lat, lon := location.Latitude, location.Longitude
	restaurant := &model.Restaurant{
		Name:           input.Name,
		Category:       input.Category,
		Address:        input.Address,
		CleanedAddress: location.CleanedAddress,
		Latitude:       &lat,
		Longitude:      &lon,
		URL:            strings.TrimSpace(input.URL),
		AddedBy:        actor.UserID,
	}

	// 실패해도 목록 캐시는 비운다
	defer s.cache.Invalidate(ctx, restaurantCachePrefix)

	result := &AddRestaurantResult{Restaurant: restaurant}
	if input.Rating > 0 {
		review := &model.Review{
			UserID:  actor.UserID,
			User:    &model.User{ID: actor.UserID, Name: actor.UserName},
			Rating:  input.Rating,
			Comment: input.Comment,
		}
		if err := s.restaurantRepo.CreateWithReview(restaurant, review); err != nil {
			return nil, err
		}
		result.Review = review
	} else if err := s.restaurantRepo.Create(restaurant); err != nil {
		return nil, err
	}

	s.events.Publish(EventRestaurantCreated, restaurant)

	logger.Info("Restaurant added", logger.Fields{
		"restaurant_id": restaurant.ID,
		"lat":           lat,
		"lon":           lon,
	})
	return result, nil
}

func (s *catalogService) ListRestaurants(ctx context.Context, category model.Category) ([]model.RestaurantSummary, error) {
	if !category.IsAll() && !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	key := restaurantCachePrefix + "list:" + string(category)
	var cached []model.RestaurantSummary
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	restaurants, err := s.restaurantRepo.List(category)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(restaurants)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, summaries)
	return summaries, nil
}

func (s *catalogService) GetRestaurant(id uint) (*model.RestaurantSummary, error) {
	restaurant, err := s.findRestaurant(id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize([]model.Restaurant{*restaurant})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// MapMarkers 좌표가 있는 맛집만, 중심은 평균 좌표 (없으면 기본 좌표)
func (s *catalogService) MapMarkers(ctx context.Context, category model.Category) (*model.MapView, error) {
	summaries, err := s.ListRestaurants(ctx, category)
	if err != nil {
		return nil, err
	}

	view := &model.MapView{Markers: []model.MapMarker{}}
	var points [][2]float64
	for _, r := range summaries {
		if !r.HasLocation() {
			continue
		}
		view.Markers = append(view.Markers, model.MapMarker{
			ID:        r.ID,
			Name:      r.Name,
			Category:  r.Category,
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			AvgRating: r.AvgRating,
			URL:       r.URL,
		})
		points = append(points, [2]float64{*r.Latitude, *r.Longitude})
	}
	view.CenterLat, view.CenterLon = geo.Center(points, s.defaultLat, s.defaultLon)
	return view, nil
}

// RatingTrend 맛집별 일 평균 평점 (ids 가 비어 있으면 전체)
func (s *catalogService) RatingTrend(ids []uint) ([]model.TrendPoint, error) {
	roots, err := s.reviewRepo.ListRoots(model.TargetRestaurant, ids)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		restaurantID uint
		date         string
		sum, count   int
	}
	buckets := make(map[string]*bucket)
	var order []string
	restaurantIDs := make(map[uint]bool)

	for _, r := range roots {
		date := r.CreatedAt.Format("2006-01-02")
		key := fmt.Sprintf("%d|%s", r.TargetID, date)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{restaurantID: r.TargetID, date: date}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += r.Rating
		b.count++
		restaurantIDs[r.TargetID] = true
	}

	names, err := s.restaurantNames(restaurantIDs)
	if err != nil {
		return nil, err
	}

	points := make([]model.TrendPoint, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		points = append(points, model.TrendPoint{
			RestaurantID:   b.restaurantID,
			RestaurantName: names[b.restaurantID],
			Date:           b.date,
			AvgRating:      util.RoundRating(float64(b.sum) / float64(b.count)),
			ReviewCount:    b.count,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].RestaurantID != points[j].RestaurantID {
			return points[i].RestaurantID < points[j].RestaurantID
		}
		return points[i].Date < points[j].Date
	})
	return points, nil
}

func (s *catalogService) AddMenuItem(restaurantID uint, itemName string, price int) (*model.MenuItem, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if _, err := s.findRestaurant(restaurantID); err != nil {
		return nil, err
	}

	item := &model.MenuItem{
		RestaurantID: restaurantID,
		ItemName:     strings.TrimSpace(itemName),
		Price:        price,
	}
	if err := s.menuRepo.Create(item); err != nil {
		return nil, err
	}

	logger.Info("Menu item added", logger.Fields{
		"restaurant_id": restaurantID,
		"menu_item_id":  item.ID,
	})
	return item, nil
}

func (s *catalogService) ListMenu(restaurantID uint) ([]model.MenuItem, error) {
	if _, err := s.findRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.menuRepo.ListByRestaurant(restaurantID)
}

// MenuWithinBudget 예산에 가까운(비싼) 순, 같은 가격이면 가까운 순
func (s *catalogService) MenuWithinBudget(budget, limit int, lat, lon *float64) ([]model.MenuCandidate, error) {
	items, err := s.menuRepo.WithinBudget(budget, limit)
	if err != nil {
		return nil, err
	}

	ids := make(map[uint]bool)
	for _, item := range items {
		ids[item.RestaurantID] = true
	}
	restaurants, err := s.restaurantsByID(ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.MenuCandidate, 0, len(items))
	for _, item := range items {
		r, ok := restaurants[item.RestaurantID]
		if !ok {
			continue
		}
		candidate := model.MenuCandidate{
			MenuItemID:     item.ID,
			ItemName:       item.ItemName,
			Price:          item.Price,
			RestaurantID:   r.ID,
			RestaurantName: r.Name,
			Category:       r.Category,
			Address:        r.Address,
		}
		if lat != nil && lon != nil && r.HasLocation() {
			d := geo.DistanceKm(*lat, *lon, *r.Latitude, *r.Longitude)
			candidate.DistanceKm = &d
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Price != candidates[j].Price {
			return candidates[i].Price > candidates[j].Price
		}
		di, dj := candidates[i].DistanceKm, candidates[j].DistanceKm
		return di != nil && (dj == nil || *di < *dj)
	})
	return candidates, nil
}

func (s *catalogService) AttachPhoto(ctx context.Context, restaurantID uint, filename, contentType string) (*storage.PresignedUpload, error) {
	if s.photos == nil {
		return nil, ErrPhotoStorageDisabled
	}
	if _, err := s.findRestaurant(restaurantID); err != nil {
		return nil, err
	}

	upload, err := s.photos.PresignRestaurantPhoto(ctx, restaurantID, filename, contentType)
	if err != nil {
		return nil, err
	}
	if err := s.restaurantRepo.UpdateImageURL(restaurantID, upload.FileURL); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, restaurantCachePrefix)
	logger.Info("Restaurant photo upload issued", logger.Fields{
		"restaurant_id": restaurantID,
		"key":           upload.Key,
	})
	return upload, nil
}

func (s *catalogService) findRestaurant(id uint) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return restaurant, nil
}

func (s *catalogService) summarize(restaurants []model.Restaurant) ([]model.RestaurantSummary, error) {
	ids := make([]uint, len(restaurants))
	for i, r := range restaurants {
		ids[i] = r.ID
	}

	var stats []model.RatingStat
	if len(ids) > 0 {
		var err error
		if stats, err = s.reviewRepo.RatingStats(model.TargetRestaurant, ids); err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]model.RatingStat, len(stats))
	for _, st := range stats {
		byID[st.TargetID] = st
	}

	summaries := make([]model.RestaurantSummary, len(restaurants))
	for i, r := range restaurants {
		st := byID[r.ID]
		summaries[i] = model.RestaurantSummary{
			Restaurant:  r,
			ReviewCount: st.ReviewCount,
			AvgRating:   util.RoundRating(st.AvgRating),
			Stars:       util.StarRating(st.AvgRating),
		}
	}
	return summaries, nil
}

func (s *catalogService) restaurantsByID(ids map[uint]bool) (map[uint]model.Restaurant, error) {
	list := make([]uint, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	restaurants, err := s.restaurantRepo.FindByIDs(list)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID] = r
	}
	return byID, nil
}

func (s *catalogService) restaurantNames(ids map[uint]bool) (map[uint]string, error) {
	restaurants, err := s.restaurantsByID(ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(restaurants))
	for id, r := range restaurants {
		names[id] = r.Name
	}
	return names, nil
}
