package sheet

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	_ repository.RestaurantRepository = (*RestaurantStore)(nil)
	_ repository.ReviewRepository     = (*ReviewStore)(nil)
)

func setupSheetTest(t *testing.T) *Workbook {
	wb, err := Open(filepath.Join(t.TempDir(), "matjip.xlsx"))
	require.NoError(t, err)
	return wb
}

func floatPtr(v float64) *float64 { return &v }

func TestOpen_CreatesSheetsWithHeaders(t *testing.T) {
	wb := setupSheetTest(t)

	f, err := excelize.OpenFile(wb.Path())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RestaurantSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, headers[RestaurantSheet], rows[0])

	rows, err = f.GetRows(ReviewSheet)
	require.NoError(t, err)
	assert.Equal(t, headers[ReviewSheet], rows[0])
}

func TestRestaurantStore(t *testing.T) {
	store := NewRestaurantStore(setupSheetTest(t))

	first := &model.Restaurant{Name: "명동교자", Category: model.CategoryKorean, Address: "서울 중구 명동10길 29", Latitude: floatPtr(37.5625), Longitude: floatPtr(126.9856)}
	second := &model.Restaurant{Name: "스시효", Category: model.CategoryJapan, Address: "서울 강남구 청담동 1"}
	require.NoError(t, store.Create(first))
	require.NoError(t, store.Create(second))
	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, uint(2), second.ID)

	found, err := store.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "명동교자", found.Name)
	require.NotNil(t, found.Latitude)
	assert.InDelta(t, 37.5625, *found.Latitude, 1e-9)

	noLoc, err := store.FindByID(2)
	require.NoError(t, err)
	assert.False(t, noLoc.HasLocation())

	_, err = store.FindByID(99)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	dup, err := store.FindByNameOrAddress("다른 이름", "서울 강남구 청담동 1")
	require.NoError(t, err)
	assert.Equal(t, uint(2), dup.ID)

	_, err = store.FindByNameOrAddress("없음", "없음")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	japanese, err := store.List(model.CategoryJapan)
	require.NoError(t, err)
	require.Len(t, japanese, 1)
	assert.Equal(t, "스시효", japanese[0].Name)

	all, err := store.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.UpdateImageURL(1, "https://cdn.example.com/1.jpg"))
	found, _ = store.FindByID(1)
	assert.Equal(t, "https://cdn.example.com/1.jpg", found.ImageURL)
	assert.True(t, errors.Is(store.UpdateImageURL(99, "x"), gorm.ErrRecordNotFound))
}

func TestRestaurantStore_CreateWithReview(t *testing.T) {
	wb := setupSheetTest(t)
	restaurants := NewRestaurantStore(wb)
	reviews := NewReviewStore(wb)

	require.NoError(t, restaurants.Create(&model.Restaurant{Name: "명동교자", Category: model.CategoryKorean, Address: "서울 중구 명동10길 29"}))

	restaurant := &model.Restaurant{Name: "스시효", Category: model.CategoryJapan, Address: "서울 강남구 청담동 1"}
	review := &model.Review{UserID: "u0000001", User: &model.User{Name: "김철수"}, Rating: 4, Comment: "신선해요"}
	require.NoError(t, restaurants.CreateWithReview(restaurant, review))
	assert.Equal(t, uint(2), restaurant.ID)
	assert.Equal(t, uint(1), review.ID)

	rows, err := reviews.ListByTarget(model.Target{Type: model.TargetRestaurant, ID: restaurant.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "신선해요", rows[0].Comment)
	assert.Equal(t, "김철수", rows[0].AuthorName())
}

func TestWorkbook_UpdateAllFailureWritesNothing(t *testing.T) {
	wb := setupSheetTest(t)
	diskFull := errors.New("disk full")

	err := wb.UpdateAll(func(tables map[string][]Record) error {
		tables[RestaurantSheet] = append(tables[RestaurantSheet], Record{"id": "1", "name": "반쪽"})
		return diskFull
	})
	assert.ErrorIs(t, err, diskFull)

	records, err := wb.Records(RestaurantSheet)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReviewStore_TreeColumns(t *testing.T) {
	store := NewReviewStore(setupSheetTest(t))

	root := &model.Review{TargetType: model.TargetRestaurant, TargetID: 1, UserID: "u0000001", User: &model.User{Name: "김철수"}, Rating: 5, Comment: "최고"}
	require.NoError(t, store.Create(root))

	reply := &model.Review{TargetType: model.TargetRestaurant, TargetID: 1, UserID: "u0000002", User: &model.User{Name: "강영희"}, Comment: "동의", ParentID: &root.ID}
	require.NoError(t, store.Create(reply))

	rows, err := store.ListByTarget(model.Target{Type: model.TargetRestaurant, ID: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsRoot())
	assert.Equal(t, "김철수", rows[0].AuthorName())
	require.NotNil(t, rows[1].ParentID)
	assert.Equal(t, root.ID, *rows[1].ParentID)
	assert.Equal(t, 0, rows[1].Rating)

	stats, err := store.RatingStats(model.TargetRestaurant, nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].ReviewCount)
	assert.InDelta(t, 5.0, stats[0].AvgRating, 1e-9)
}

func TestReviewStore_ReadsHandEditedRows(t *testing.T) {
	wb := setupSheetTest(t)
	require.NoError(t, wb.Update(ReviewSheet, func(records []Record) ([]Record, error) {
		return append(records,
			Record{"id": "1", "target_id": "3", "user": "익명", "rating": "4.0", "comment": "굿", "parent_id": "root", "timestamp": "2025-01-02 12:30"},
			Record{"id": "2", "target_id": "3", "user": "익명", "rating": "0", "comment": "ㅇㅇ", "parent_id": "1", "timestamp": "2025-01-02 12:31"},
		), nil
	}))

	rows, err := NewReviewStore(wb).ListByTarget(model.Target{Type: model.TargetRestaurant, ID: 3})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].Rating)
	assert.Nil(t, rows[0].ParentID)
	assert.Equal(t, 12, rows[0].CreatedAt.Hour())
	assert.Equal(t, uint(1), *rows[1].ParentID)
}

func TestWorkbook_ConcurrentCreates(t *testing.T) {
	store := NewRestaurantStore(setupSheetTest(t))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := &model.Restaurant{Name: string(rune('A' + i)), Category: model.CategoryEtc, Address: string(rune('a' + i))}
			assert.NoError(t, store.Create(r))
		}(i)
	}
	wg.Wait()

	all, err := store.List(model.CategoryAll)
	require.NoError(t, err)
	require.Len(t, all, 5)

	seen := map[uint]bool{}
	for _, r := range all {
		seen[r.ID] = true
	}
	assert.Len(t, seen, 5)
}
