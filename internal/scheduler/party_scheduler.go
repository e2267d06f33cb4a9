package scheduler

import (
	"fmt"
	"time"

	"github.com/fisa/matjip-backend/internal/app/service"
	"github.com/fisa/matjip-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// PartyScheduler 밥약 일일 작업 스케줄러
// 자정에 지난 밥약을 마감하고, 공개 시각에 익명 해제 이벤트를 보낸다
type PartyScheduler struct {
	cron         *cron.Cron
	partyService service.PartyService
	revealHour   int
	revealMinute int
}

// NewPartyScheduler loc 기준으로 cron 표현식을 해석한다
func NewPartyScheduler(partyService service.PartyService, reveal service.RevealPolicy) *PartyScheduler {
	loc := reveal.Location
	if loc == nil {
		loc = time.Local
	}
	return &PartyScheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		partyService: partyService,
		revealHour:   reveal.Hour,
		revealMinute: reveal.Minute,
	}
}

// Start 스케줄러 시작
func (s *PartyScheduler) Start() error {
	// 매일 0시 0분
	if _, err := s.cron.AddFunc("0 0 * * *", s.closeStale); err != nil {
		logger.Error("Failed to add cron job for closing parties", err)
		return err
	}

	revealSpec := fmt.Sprintf("%d %d * * *", s.revealMinute, s.revealHour)
	if _, err := s.cron.AddFunc(revealSpec, s.announceReveal); err != nil {
		logger.Error("Failed to add cron job for party reveal", err, logger.Fields{
			"spec": revealSpec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Party scheduler started successfully", logger.Fields{
		"reveal_spec": revealSpec,
	})

	return nil
}

func (s *PartyScheduler) closeStale() {
	logger.Info("Starting scheduled party close", nil)

	closed, err := s.partyService.CloseStale()
	if err != nil {
		logger.Error("Failed to close stale parties from scheduler", err)
		return
	}

	logger.Info("Closed stale parties from scheduler", logger.Fields{
		"closed": closed,
	})
}

func (s *PartyScheduler) announceReveal() {
	if err := s.partyService.AnnounceReveal(); err != nil {
		logger.Error("Failed to announce party reveal", err)
	}
}

// Stop 실행 중인 작업이 끝날 때까지 기다린다
func (s *PartyScheduler) Stop() {
	logger.Info("Stopping party scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Party scheduler stopped", nil)
}
