//go:build postgres

package service

import (
	"os"
	"testing"

	"github.com/fisa/matjip-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// go test -tags postgres ./internal/app/service/ -run Postgres
// TEST_POSTGRES_DSN 의 데이터베이스는 테스트마다 비워진다
func setupPostgresPartyTest(t *testing.T) *partyFixture {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	testDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(db.Models()...))
	require.NoError(t, db.TruncateAllTables(testDB))
	t.Cleanup(func() {
		db.TruncateAllTables(testDB)
		db.CleanupTestDB(testDB)
	})

	return setupPartyServiceOn(t, testDB, HostLeaveForbid)
}

// 연결 여러 개에서 SELECT ... FOR UPDATE 가 실제로 경합한다
func TestPartyService_Join_ConcurrentPostgres(t *testing.T) {
	f := setupPostgresPartyTest(t)
	assertConcurrentJoinsRespectMax(t, f)
}
