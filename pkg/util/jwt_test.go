package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateSessionToken(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		userName string
		expiry   time.Duration
	}{
		{name: "Korean name", userID: "a1b2c3d4", userName: "김철수", expiry: time.Hour},
		{name: "Short expiry", userID: "0f0f0f0f", userName: "lee", expiry: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateSessionToken(tt.userID, tt.userName, testSecret, tt.expiry)
			require.NoError(t, err)
			assert.NotEmpty(t, token.Token)
			assert.WithinDuration(t, time.Now().Add(tt.expiry), token.ExpiresAt, 2*time.Second)

			claims, err := ValidateToken(token.Token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.userName, claims.UserName)
			assert.NotEmpty(t, claims.ID)
			assert.True(t, claims.RemainingTTL() > 0)
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateSessionToken("a1b2c3d4", "kim", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token.Token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Invalid(t *testing.T) {
	token, err := GenerateSessionToken("a1b2c3d4", "kim", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "Wrong secret", token: token.Token, secret: "other-secret"},
		{name: "Garbage", token: "invalid.jwt.token", secret: testSecret},
		{name: "Empty", token: "", secret: testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
