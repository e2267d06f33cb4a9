package repository

import (
	"time"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/pkg/logger"
	"gorm.io/gorm"
)

// PartyRepository 밥약 조회/단순 갱신
// 참여/생성/삭제처럼 여러 행을 건드리는 작업은 서비스에서 트랜잭션으로 처리
type PartyRepository interface {
	FindByID(id uint) (*model.Party, error)
	Participants(partyID uint) ([]model.PartyParticipant, error)
	ParticipantsOf(partyIDs []uint) (map[uint][]model.PartyParticipant, error)
	ListOpenSince(since time.Time) ([]model.Party, error)
	CloseOpenBefore(before time.Time) (int64, error)
}

type partyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) FindByID(id uint) (*model.Party, error) {
	var party model.Party
	if err := r.db.Preload("Host").First(&party, id).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

// Participants 참여 순서대로 (joined_at, id)
func (r *partyRepository) Participants(partyID uint) ([]model.PartyParticipant, error) {
	var participants []model.PartyParticipant
	err := r.db.
		Preload("User").
		Where("party_id = ?", partyID).
		Order("joined_at ASC, id ASC").
		Find(&participants).Error
	if err != nil {
		logger.Error("Failed to fetch party participants", err, logger.Fields{
			"party_id": partyID,
		})
		return nil, err
	}
	return participants, nil
}

// ParticipantsOf 여러 파티의 참여자를 한 번에 (파티별 참여 순서)
func (r *partyRepository) ParticipantsOf(partyIDs []uint) (map[uint][]model.PartyParticipant, error) {
	rosters := make(map[uint][]model.PartyParticipant, len(partyIDs))
	if len(partyIDs) == 0 {
		return rosters, nil
	}

	var participants []model.PartyParticipant
	err := r.db.
		Preload("User").
		Where("party_id IN ?", partyIDs).
		Order("joined_at ASC, id ASC").
		Find(&participants).Error
	if err != nil {
		logger.Error("Failed to fetch participants for parties", err, logger.Fields{
			"party_count": len(partyIDs),
		})
		return nil, err
	}

	for _, p := range participants {
		rosters[p.PartyID] = append(rosters[p.PartyID], p)
	}
	return rosters, nil
}

// ListOpenSince since 이후 생성된 OPEN 파티 (최신순)
func (r *partyRepository) ListOpenSince(since time.Time) ([]model.Party, error) {
	logger.Debug("Listing open parties", logger.Fields{
		"since": since,
	})

	var parties []model.Party
	err := r.db.
		Preload("Host").
		Where("status = ? AND created_at >= ?", model.PartyOpen, since).
		Order("created_at DESC, id DESC").
		Find(&parties).Error
	if err != nil {
		logger.Error("Failed to list open parties", err)
		return nil, err
	}
	return parties, nil
}

// CloseOpenBefore before 이전에 생성된 OPEN 파티를 CLOSED 로
func (r *partyRepository) CloseOpenBefore(before time.Time) (int64, error) {
	result := r.db.Model(&model.Party{}).
		Where("status = ? AND created_at < ?", model.PartyOpen, before).
		Update("status", model.PartyClosed)
	if result.Error != nil {
		logger.Error("Failed to close stale parties", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
