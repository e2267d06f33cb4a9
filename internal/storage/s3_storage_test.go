package storage

import (
	"context"
	"strings"
	"testing"

	appconfig "github.com/fisa/matjip-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(baseURL string) *S3Storage {
	return NewS3Storage(appconfig.S3Config{
		Region:          "ap-northeast-2",
		Bucket:          "matjip-test",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
		BaseURL:         baseURL,
	})
}

func TestPhotoKey(t *testing.T) {
	key := photoKey(7, "Lunch.JPG")
	assert.True(t, strings.HasPrefix(key, "restaurants/7/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestPresignRestaurantPhoto(t *testing.T) {
	s := newTestStorage("https://cdn.example.com/")

	upload, err := s.PresignRestaurantPhoto(context.Background(), 3, "photo.png", "image/png")
	require.NoError(t, err)
	assert.Contains(t, upload.UploadURL, "matjip-test")
	assert.Contains(t, upload.UploadURL, "X-Amz-Signature")
	assert.Equal(t, "https://cdn.example.com/"+upload.Key, upload.FileURL)
	assert.True(t, strings.HasPrefix(upload.Key, "restaurants/3/"))
}

func TestPresignRestaurantPhoto_RejectsNonImage(t *testing.T) {
	s := newTestStorage("")

	_, err := s.PresignRestaurantPhoto(context.Background(), 3, "doc.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestFileURL_Direct(t *testing.T) {
	s := newTestStorage("")
	assert.Equal(t, "https://matjip-test.s3.ap-northeast-2.amazonaws.com/a.png", s.fileURL("a.png"))
}
