package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/fisa/matjip-backend/internal/cache"
	"github.com/fisa/matjip-backend/internal/db"
	"github.com/fisa/matjip-backend/internal/storage"
	"github.com/fisa/matjip-backend/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGeocoder struct {
	results map[string]*geo.Result
	calls   int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (*geo.Result, error) {
	g.calls++
	if r, ok := g.results[address]; ok {
		return r, nil
	}
	return nil, geo.ErrNotFound
}

type fakePhotoStorage struct{}

func (fakePhotoStorage) PresignRestaurantPhoto(ctx context.Context, restaurantID uint, filename, contentType string) (*storage.PresignedUpload, error) {
	if contentType != "image/jpeg" {
		return nil, storage.ErrUnsupportedContentType
	}
	return &storage.PresignedUpload{
		UploadURL: "https://upload.example.com/put",
		FileURL:   "https://cdn.example.com/restaurants/1/photo.jpg",
		Key:       "restaurants/1/photo.jpg",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

type catalogFixture struct {
	db       *gorm.DB
	service  CatalogService
	geocoder *fakeGeocoder
	events   *recordingPublisher
	actor    Actor
}

func setupCatalogTest(t *testing.T) *catalogFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	require.NoError(t, testDB.Create(&model.User{ID: "user0001", Name: "김철수", Email: "kim@example.com"}).Error)

	geocoder := &fakeGeocoder{results: map[string]*geo.Result{
		"서울 중구 을지로 100 2층": {CleanedAddress: "서울 중구 을지로 100", Latitude: 37.566, Longitude: 126.991},
		"서울 중구 세종대로 110":   {CleanedAddress: "서울 중구 세종대로 110", Latitude: 37.5663, Longitude: 126.9779},
	}}
	events := &recordingPublisher{}

	svc := NewCatalogService(CatalogDeps{
		Restaurants: repository.NewRestaurantRepository(testDB),
		Reviews:     repository.NewReviewRepository(testDB),
		Menu:        repository.NewMenuRepository(testDB),
		Geocoder:    geocoder,
		Photos:      fakePhotoStorage{},
		Cache:       cache.NewMemory("test:", time.Minute),
		Events:      events,
		DefaultLat:  37.5665,
		DefaultLon:  126.9780,
	})

	return &catalogFixture{
		db:       testDB,
		service:  svc,
		geocoder: geocoder,
		events:   events,
		actor:    Actor{UserID: "user0001", UserName: "김철수"},
	}
}

func (f *catalogFixture) add(t *testing.T, name, address string, rating int) *model.Restaurant {
	result, err := f.service.AddRestaurant(context.Background(), f.actor, AddRestaurantInput{
		Name:     name,
		Category: model.CategoryKorean,
		Address:  address,
		Rating:   rating,
		Comment:  "맛있어요",
	})
	require.NoError(t, err)
	return result.Restaurant
}

func TestCatalogService_AddRestaurant(t *testing.T) {
	f := setupCatalogTest(t)
	ctx := context.Background()

	result, err := f.service.AddRestaurant(ctx, f.actor, AddRestaurantInput{
		Name:     " 을지로 김치찌개 ",
		Category: model.CategoryKorean,
		Address:  "서울 중구 을지로 100 2층",
		Rating:   5,
		Comment:  "국물이 진해요",
	})
	require.NoError(t, err)
	assert.False(t, result.Existing)
	assert.Equal(t, "을지로 김치찌개", result.Restaurant.Name)
	assert.Equal(t, "서울 중구 을지로 100", result.Restaurant.CleanedAddress)
	require.True(t, result.Restaurant.HasLocation())
	assert.InDelta(t, 37.566, *result.Restaurant.Latitude, 1e-9)
	assert.Equal(t, "user0001", result.Restaurant.AddedBy)
	require.NotNil(t, result.Review)
	assert.Equal(t, 5, result.Review.Rating)
	assert.Contains(t, f.events.events, EventRestaurantCreated)

	// 이름이 같으면 기존 맛집
	dup, err := f.service.AddRestaurant(ctx, f.actor, AddRestaurantInput{
		Name:     "을지로 김치찌개",
		Category: model.CategoryKorean,
		Address:  "서울 중구 세종대로 110",
	})
	assert.ErrorIs(t, err, ErrRestaurantExists)
	require.NotNil(t, dup)
	assert.True(t, dup.Existing)
	assert.Equal(t, result.Restaurant.ID, dup.Restaurant.ID)

	// 주소가 같아도 기존 맛집
	_, err = f.service.AddRestaurant(ctx, f.actor, AddRestaurantInput{
		Name:     "다른 이름",
		Category: model.CategoryKorean,
		Address:  "서울 중구 을지로 100 2층",
	})
	assert.ErrorIs(t, err, ErrRestaurantExists)
}

func TestCatalogService_AddRestaurant_FailsClosed(t *testing.T) {
	f := setupCatalogTest(t)

	tests := []struct {
		name    string
		input   AddRestaurantInput
		wantErr error
	}{
		{"unknown address", AddRestaurantInput{Name: "어딘가", Category: model.CategoryEtc, Address: "없는 주소"}, ErrAddressNotFound},
		{"invalid category", AddRestaurantInput{Name: "어딘가", Category: "분식", Address: "서울 중구 세종대로 110"}, ErrInvalidCategory},
		{"all is not a category", AddRestaurantInput{Name: "어딘가", Category: model.CategoryAll, Address: "서울 중구 세종대로 110"}, ErrInvalidCategory},
		{"rating out of range", AddRestaurantInput{Name: "어딘가", Category: model.CategoryEtc, Address: "서울 중구 세종대로 110", Rating: 6}, ErrInvalidRating},
		{"blank name", AddRestaurantInput{Name: "   ", Category: model.CategoryEtc, Address: "서울 중구 세종대로 110"}, ErrRestaurantNameEmpty},
		{"blank address", AddRestaurantInput{Name: "어딘가", Category: model.CategoryEtc, Address: " \t"}, ErrAddressEmpty},
		{"first review without comment", AddRestaurantInput{Name: "어딘가", Category: model.CategoryEtc, Address: "서울 중구 세종대로 110", Rating: 4, Comment: "  "}, ErrCommentRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.AddRestaurant(context.Background(), f.actor, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	f.db.Model(&model.Restaurant{}).Count(&count)
	assert.Zero(t, count)
}

func TestCatalogService_AddRestaurant_FirstReviewFailureLeavesNothing(t *testing.T) {
	f := setupCatalogTest(t)
	ctx := context.Background()
	diskFull := errors.New("disk full")

	const callback = "test:fail_review_insert"
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register(callback, func(tx *gorm.DB) {
		if tx.Statement.Table == "reviews" {
			tx.AddError(diskFull)
		}
	}))

	listed, err := f.service.ListRestaurants(ctx, model.CategoryAll)
	require.NoError(t, err)
	assert.Empty(t, listed)

	input := AddRestaurantInput{
		Name:     "을지로 김치찌개",
		Category: model.CategoryKorean,
		Address:  "서울 중구 을지로 100 2층",
		Rating:   5,
		Comment:  "국물이 진해요",
	}
	_, err = f.service.AddRestaurant(ctx, f.actor, input)
	assert.ErrorIs(t, err, diskFull)
	assert.NotContains(t, f.events.events, EventRestaurantCreated)

	var restaurants, reviews int64
	f.db.Model(&model.Restaurant{}).Count(&restaurants)
	f.db.Model(&model.Review{}).Count(&reviews)
	assert.Zero(t, restaurants)
	assert.Zero(t, reviews)

	// 저장소가 회복되면 같은 입력으로 다시 등록할 수 있어야 한다
	require.NoError(t, f.db.Callback().Create().Remove(callback))

	result, err := f.service.AddRestaurant(ctx, f.actor, input)
	require.NoError(t, err)
	require.NotNil(t, result.Review)
	assert.Equal(t, result.Restaurant.ID, result.Review.TargetID)

	listed, err = f.service.ListRestaurants(ctx, model.CategoryAll)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(1), listed[0].ReviewCount)
}

func TestCatalogService_ListRestaurants(t *testing.T) {
	f := setupCatalogTest(t)
	ctx := context.Background()

	first := f.add(t, "을지로 김치찌개", "서울 중구 을지로 100 2층", 4)
	_, err := f.service.AddRestaurant(ctx, f.actor, AddRestaurantInput{
		Name:     "시청 짬뽕",
		Category: model.CategoryChinese,
		Address:  "서울 중구 세종대로 110",
	})
	require.NoError(t, err)

	all, err := f.service.ListRestaurants(ctx, model.CategoryAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "시청 짬뽕", all[0].Name, "newest first")

	korean, err := f.service.ListRestaurants(ctx, model.CategoryKorean)
	require.NoError(t, err)
	require.Len(t, korean, 1)
	assert.Equal(t, first.ID, korean[0].ID)
	assert.Equal(t, int64(1), korean[0].ReviewCount)
	assert.Equal(t, 4.0, korean[0].AvgRating)
	assert.Equal(t, "⭐⭐⭐⭐", korean[0].Stars)

	_, err = f.service.ListRestaurants(ctx, "분식")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	view, err := f.service.MapMarkers(ctx, model.CategoryAll)
	require.NoError(t, err)
	assert.Len(t, view.Markers, 2)
	assert.InDelta(t, (37.566+37.5663)/2, view.CenterLat, 1e-9)

	empty, err := f.service.MapMarkers(ctx, model.CategoryJapan)
	require.NoError(t, err)
	assert.Empty(t, empty.Markers)
	assert.Equal(t, 37.5665, empty.CenterLat)
}

func TestCatalogService_ListRestaurants_CacheInvalidatedOnAdd(t *testing.T) {
	f := setupCatalogTest(t)
	ctx := context.Background()

	f.add(t, "을지로 김치찌개", "서울 중구 을지로 100 2층", 0)
	list, err := f.service.ListRestaurants(ctx, model.CategoryAll)
	require.NoError(t, err)
	require.Len(t, list, 1)

	f.add(t, "시청 국밥", "서울 중구 세종대로 110", 0)
	list, err = f.service.ListRestaurants(ctx, model.CategoryAll)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCatalogService_Menu(t *testing.T) {
	f := setupCatalogTest(t)
	near := f.add(t, "을지로 김치찌개", "서울 중구 을지로 100 2층", 0)
	far := f.add(t, "시청 짬뽕", "서울 중구 세종대로 110", 0)

	_, err := f.service.AddMenuItem(near.ID, "김치찌개", 9000)
	require.NoError(t, err)
	_, err = f.service.AddMenuItem(far.ID, "짬뽕", 9000)
	require.NoError(t, err)
	_, err = f.service.AddMenuItem(far.ID, "탕수육", 20000)
	require.NoError(t, err)

	_, err = f.service.AddMenuItem(near.ID, "공짜", 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = f.service.AddMenuItem(999, "유령", 1000)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	menu, err := f.service.ListMenu(far.ID)
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "짬뽕", menu[0].ItemName)

	// 을지로 100 근처에서 예산 10000원
	lat, lon := 37.566, 126.991
	candidates, err := f.service.MenuWithinBudget(10000, 10, &lat, &lon)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "김치찌개", candidates[0].ItemName, "same price, nearer first")
	require.NotNil(t, candidates[0].DistanceKm)
	assert.Less(t, *candidates[0].DistanceKm, *candidates[1].DistanceKm)

	none, err := f.service.MenuWithinBudget(1000, 10, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalogService_RatingTrend(t *testing.T) {
	f := setupCatalogTest(t)
	restaurant := f.add(t, "을지로 김치찌개", "서울 중구 을지로 100 2층", 0)

	day1 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	day2 := day1.AddDate(0, 0, 1)
	for _, r := range []model.Review{
		{TargetType: model.TargetRestaurant, TargetID: restaurant.ID, UserID: "user0001", Rating: 5, Comment: "a", CreatedAt: day1},
		{TargetType: model.TargetRestaurant, TargetID: restaurant.ID, UserID: "user0001", Rating: 4, Comment: "b", CreatedAt: day1.Add(time.Hour)},
		{TargetType: model.TargetRestaurant, TargetID: restaurant.ID, UserID: "user0001", Rating: 2, Comment: "c", CreatedAt: day2},
	} {
		r := r
		require.NoError(t, f.db.Create(&r).Error)
	}

	points, err := f.service.RatingTrend([]uint{restaurant.ID})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-05-01", points[0].Date)
	assert.Equal(t, 4.5, points[0].AvgRating)
	assert.Equal(t, 2, points[0].ReviewCount)
	assert.Equal(t, "을지로 김치찌개", points[0].RestaurantName)
	assert.Equal(t, 2.0, points[1].AvgRating)
}

func TestCatalogService_AttachPhoto(t *testing.T) {
	f := setupCatalogTest(t)
	ctx := context.Background()
	restaurant := f.add(t, "을지로 김치찌개", "서울 중구 을지로 100 2층", 0)

	upload, err := f.service.AttachPhoto(ctx, restaurant.ID, "photo.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.NotEmpty(t, upload.UploadURL)

	summary, err := f.service.GetRestaurant(restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, upload.FileURL, summary.ImageURL)

	_, err = f.service.AttachPhoto(ctx, restaurant.ID, "doc.pdf", "application/pdf")
	assert.ErrorIs(t, err, storage.ErrUnsupportedContentType)

	_, err = f.service.AttachPhoto(ctx, 999, "photo.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	disabled := NewCatalogService(CatalogDeps{Restaurants: repository.NewRestaurantRepository(f.db)})
	_, err = disabled.AttachPhoto(ctx, restaurant.ID, "photo.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrPhotoStorageDisabled)
}
