package repository

import (
	"testing"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReviewTest(t *testing.T) (*gorm.DB, ReviewRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	require.NoError(t, testDB.Create(&model.User{ID: "u0000001", Name: "김철수", Email: "kim@example.com"}).Error)
	return testDB, NewReviewRepository(testDB)
}

func TestReviewRepository_RoundTrip(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	root := &model.Review{TargetType: model.TargetRestaurant, TargetID: 1, UserID: "u0000001", Rating: 4, Comment: "맛있어요"}
	require.NoError(t, repo.Create(root))

	reply := &model.Review{TargetType: model.TargetRestaurant, TargetID: 1, UserID: "u0000001", Rating: model.ReplyRating, Comment: "동감", ParentID: &root.ID}
	require.NoError(t, repo.Create(reply))

	found, err := repo.FindByID(reply.ID)
	require.NoError(t, err)
	assert.Equal(t, "동감", found.Comment)
	assert.Equal(t, 0, found.Rating)
	require.NotNil(t, found.ParentID)
	assert.Equal(t, root.ID, *found.ParentID)
	assert.Equal(t, "김철수", found.AuthorName())

	rows, err := repo.ListByTarget(model.Target{Type: model.TargetRestaurant, ID: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, root.ID, rows[0].ID)
	assert.Nil(t, rows[0].ParentID)

	other, err := repo.ListByTarget(model.Target{Type: model.TargetMenuItem, ID: 1})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestReviewRepository_RatingStats(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	for _, r := range []model.Review{
		{TargetType: model.TargetRestaurant, TargetID: 1, UserID: "u0000001", Rating: 5, Comment: "a"},
		{TargetType: model.TargetRestaurant, TargetID: 1, UserID: "u0000001", Rating: 2, Comment: "b"},
		{TargetType: model.TargetRestaurant, TargetID: 2, UserID: "u0000001", Rating: 3, Comment: "c"},
		{TargetType: model.TargetMenuItem, TargetID: 1, UserID: "u0000001", Rating: 1, Comment: "d"},
	} {
		r := r
		require.NoError(t, repo.Create(&r))
	}
	parent := uint(1)
	require.NoError(t, repo.Create(&model.Review{TargetType: model.TargetRestaurant, TargetID: 1, UserID: "u0000001", Comment: "reply", ParentID: &parent}))

	stats, err := repo.RatingStats(model.TargetRestaurant, nil)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byID := map[uint]model.RatingStat{}
	for _, s := range stats {
		byID[s.TargetID] = s
	}
	assert.Equal(t, int64(2), byID[1].ReviewCount)
	assert.InDelta(t, 3.5, byID[1].AvgRating, 1e-9)
	assert.InDelta(t, 3.0, byID[2].AvgRating, 1e-9)

	only, err := repo.RatingStats(model.TargetRestaurant, []uint{2})
	require.NoError(t, err)
	assert.Len(t, only, 1)

	roots, err := repo.ListRoots(model.TargetRestaurant, []uint{1})
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}
