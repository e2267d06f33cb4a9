package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/fisa/matjip-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePartyService struct {
	service.PartyService
	closeCalls  int
	revealCalls int
	closeErr    error
}

func (f *fakePartyService) CloseStale() (int64, error) {
	f.closeCalls++
	return 3, f.closeErr
}

func (f *fakePartyService) AnnounceReveal() error {
	f.revealCalls++
	return nil
}

func TestPartyScheduler_Schedule(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	s := NewPartyScheduler(&fakePartyService{}, service.RevealPolicy{Hour: 12, Minute: 30, Location: seoul})
	require.NoError(t, s.Start())
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 2)

	// 자정 작업과 12:30 공개 작업
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, seoul)
	var next []string
	for _, e := range entries {
		next = append(next, e.Schedule.Next(from).In(seoul).Format("2006-01-02 15:04"))
	}
	assert.ElementsMatch(t, []string{"2026-03-03 00:00", "2026-03-02 12:30"}, next)
}

func TestPartyScheduler_Jobs(t *testing.T) {
	svc := &fakePartyService{}
	s := NewPartyScheduler(svc, service.RevealPolicy{Hour: 12, Minute: 30})

	s.closeStale()
	s.announceReveal()
	assert.Equal(t, 1, svc.closeCalls)
	assert.Equal(t, 1, svc.revealCalls)

	// 실패해도 다음 실행에 영향 없음
	svc.closeErr = errors.New("db down")
	s.closeStale()
	assert.Equal(t, 2, svc.closeCalls)
}
