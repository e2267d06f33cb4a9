package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	apperrors "github.com/fisa/matjip-backend/internal/errors"
	"github.com/fisa/matjip-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPartyNotFound    = errors.New("party does not exist")
	ErrPartyFull        = errors.New("party is full")
	ErrAlreadyJoined    = errors.New("already joined")
	ErrPartyClosed      = errors.New("party is closed")
	ErrNotPartyHost     = errors.New("only the host can change the party")
	ErrHostCannotLeave  = errors.New("host cannot leave the party")
	ErrInvalidMaxPeople = errors.New("max people out of range")
	ErrBelowCurrent     = errors.New("max people below current participants")
)

// HostLeavePolicy 방장이 나갈 때의 처리
type HostLeavePolicy string

const (
	HostLeaveForbid   HostLeavePolicy = "forbid"
	HostLeaveAllow    HostLeavePolicy = "allow"
	HostLeaveDelete   HostLeavePolicy = "delete"
	HostLeaveTransfer HostLeavePolicy = "transfer"
)

func ParseHostLeavePolicy(s string) (HostLeavePolicy, error) {
	switch p := HostLeavePolicy(s); p {
	case HostLeaveForbid, HostLeaveAllow, HostLeaveDelete, HostLeaveTransfer:
		return p, nil
	case "":
		return HostLeaveForbid, nil
	default:
		return "", fmt.Errorf("unknown host leave policy %q", s)
	}
}

// PartyRules 인원 범위와 정책
type PartyRules struct {
	MinPeople        int
	MaxPeople        int
	DefaultMaxPeople int
	HostLeave        HostLeavePolicy
	Reveal           RevealPolicy
}

type PartyService interface {
	Create(ctx context.Context, actor Actor, req model.CreatePartyRequest) (*model.PartyView, error)
	Join(ctx context.Context, actor Actor, partyID uint) error
	Leave(ctx context.Context, actor Actor, partyID uint) error
	Update(ctx context.Context, actor Actor, partyID uint, req model.UpdatePartyRequest) (*model.PartyView, error)
	Delete(ctx context.Context, actor Actor, partyID uint) error
	ListToday(viewerID string) ([]model.PartyView, error)
	Detail(viewerID string, partyID uint) (*model.PartyView, error)
	CloseStale() (int64, error)
	AnnounceReveal() error
}

type partyService struct {
	db             *gorm.DB
	partyRepo      repository.PartyRepository
	restaurantRepo repository.RestaurantRepository
	rules          PartyRules
	events         EventPublisher
	now            func() time.Time
}

func NewPartyService(
	db *gorm.DB,
	partyRepo repository.PartyRepository,
	restaurantRepo repository.RestaurantRepository,
	rules PartyRules,
	events EventPublisher,
	now func() time.Time,
) PartyService {
	if now == nil {
		now = time.Now
	}
	return &partyService{
		db:             db,
		partyRepo:      partyRepo,
		restaurantRepo: restaurantRepo,
		rules:          rules,
		events:         publisherOrNop(events),
		now:            now,
	}
}

// Create 파티와 방장 참여 기록을 한 트랜잭션으로 저장
func (s *partyService) Create(ctx context.Context, actor Actor, req model.CreatePartyRequest) (*model.PartyView, error) {
	maxPeople := req.MaxPeople
	if maxPeople == 0 {
		maxPeople = s.rules.DefaultMaxPeople
	}
	if maxPeople < s.rules.MinPeople || maxPeople > s.rules.MaxPeople {
		return nil, ErrInvalidMaxPeople
	}
	if err := s.ensureRestaurant(req.RestaurantID); err != nil {
		return nil, err
	}

	party := &model.Party{
		RestaurantID: req.RestaurantID,
		HostID:       actor.UserID,
		MaxPeople:    maxPeople,
		IsAnonymous:  req.IsAnonymous,
		Status:       model.PartyOpen,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(party).Error; err != nil {
			return err
		}
		return tx.Create(&model.PartyParticipant{PartyID: party.ID, UserID: actor.UserID}).Error
	})
	if err != nil {
		logger.Error("Failed to create party", err, logger.Fields{
			"host_id":       actor.UserID,
			"restaurant_id": req.RestaurantID,
		})
		return nil, err
	}

	logger.Info("Party created", logger.Fields{
		"party_id":     party.ID,
		"host_id":      actor.UserID,
		"max_people":   maxPeople,
		"is_anonymous": req.IsAnonymous,
	})
	s.events.Publish(EventPartyUpdated, map[string]interface{}{"party_id": party.ID})

	return s.Detail(actor.UserID, party.ID)
}

// Join 파티 행을 잠근 상태에서 정원과 중복 참여를 확인하고 추가
func (s *partyService) Join(ctx context.Context, actor Actor, partyID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var party model.Party
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return err
		}
		if party.Status == model.PartyClosed {
			return ErrPartyClosed
		}

		var count int64
		if err := tx.Model(&model.PartyParticipant{}).Where("party_id = ?", partyID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(party.MaxPeople) {
			return ErrPartyFull
		}

		var existing int64
		if err := tx.Model(&model.PartyParticipant{}).
			Where("party_id = ? AND user_id = ?", partyID, actor.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyJoined
		}

		if err := tx.Create(&model.PartyParticipant{PartyID: partyID, UserID: actor.UserID}).Error; err != nil {
			// 유니크 인덱스가 마지막 방어선
			if apperrors.ParseError(err, "party").Code == apperrors.PartyAlreadyJoined {
				return ErrAlreadyJoined
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Warn("Join party failed", logger.Fields{
			"party_id": partyID,
			"user_id":  actor.UserID,
			"error":    err.Error(),
		})
		return err
	}

	logger.Info("Joined party", logger.Fields{
		"party_id": partyID,
		"user_id":  actor.UserID,
	})
	s.events.Publish(EventPartyUpdated, map[string]interface{}{"party_id": partyID})
	return nil
}

// Leave 참여 기록 삭제 (없어도 성공). 방장은 HostLeavePolicy 를 따른다
func (s *partyService) Leave(ctx context.Context, actor Actor, partyID uint) error {
	party, err := s.partyRepo.FindByID(partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	db := s.db.WithContext(ctx)

	if party.HostID == actor.UserID {
		switch s.rules.HostLeave {
		case HostLeaveAllow:
			// 방장 없는 파티로 남는다
		case HostLeaveDelete:
			if err := deleteParty(db, partyID); err != nil {
				return err
			}
			logger.Info("Party deleted because host left", logger.Fields{"party_id": partyID})
			s.events.Publish(EventPartyUpdated, map[string]interface{}{"party_id": partyID, "deleted": true})
			return nil
		case HostLeaveTransfer:
			return s.leaveAndTransfer(db, party)
		default:
			return ErrHostCannotLeave
		}
	}

	result := db.Where("party_id = ? AND user_id = ?", partyID, actor.UserID).Delete(&model.PartyParticipant{})
	if result.Error != nil {
		logger.Error("Failed to leave party", result.Error, logger.Fields{
			"party_id": partyID,
			"user_id":  actor.UserID,
		})
		return result.Error
	}

	if result.RowsAffected > 0 {
		logger.Info("Left party", logger.Fields{
			"party_id": partyID,
			"user_id":  actor.UserID,
		})
		s.events.Publish(EventPartyUpdated, map[string]interface{}{"party_id": partyID})
	}
	return nil
}

// leaveAndTransfer 가장 먼저 참여한 사람에게 방장을 넘기고, 남은 사람이 없으면 삭제
func (s *partyService) leaveAndTransfer(db *gorm.DB, party *model.Party) error {
	var newHost string
	deleted := false

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model.Party{}, party.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("party_id = ? AND user_id = ?", party.ID, party.HostID).
			Delete(&model.PartyParticipant{}).Error; err != nil {
			return err
		}

		var next model.PartyParticipant
		err := tx.Where("party_id = ?", party.ID).Order("joined_at ASC, id ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			deleted = true
			return tx.Delete(&model.Party{}, party.ID).Error
		}
		if err != nil {
			return err
		}

		newHost = next.UserID
		return tx.Model(&model.Party{}).Where("id = ?", party.ID).Update("host_id", newHost).Error
	})
	if err != nil {
		logger.Error("Failed to transfer party host", err, logger.Fields{"party_id": party.ID})
		return err
	}

	logger.Info("Host left party", logger.Fields{
		"party_id": party.ID,
		"new_host": newHost,
		"deleted":  deleted,
	})
	s.events.Publish(EventPartyUpdated, map[string]interface{}{"party_id": party.ID, "deleted": deleted})
	return nil
}

// Update 방장만 가능, 최대 인원은 현재 인원보다 작을 수 없다
func (s *partyService) Update(ctx context.Context, actor Actor, partyID uint, req model.UpdatePartyRequest) (*model.PartyView, error) {
	if req.MaxPeople < s.rules.MinPeople || req.MaxPeople > s.rules.MaxPeople {
		return nil, ErrInvalidMaxPeople
	}
	if err := s.ensureRestaurant(req.RestaurantID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var party model.Party
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return err
		}
		if party.HostID != actor.UserID {
			return ErrNotPartyHost
		}

		var count int64
		if err := tx.Model(&model.PartyParticipant{}).Where("party_id = ?", partyID).Count(&count).Error; err != nil {
			return err
		}
		if int64(req.MaxPeople) < count {
			return ErrBelowCurrent
		}

		return tx.Model(&model.Party{}).Where("id = ?", partyID).Updates(map[string]interface{}{
			"restaurant_id": req.RestaurantID,
			"max_people":    req.MaxPeople,
			"is_anonymous":  req.IsAnonymous,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Party updated", logger.Fields{
		"party_id":   partyID,
		"max_people": req.MaxPeople,
	})
	s.events.Publish(EventPartyUpdated, map[string]interface{}{"party_id": partyID})
	return s.Detail(actor.UserID, partyID)
}

func (s *partyService) Delete(ctx context.Context, actor Actor, partyID uint) error {
	party, err := s.partyRepo.FindByID(partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPartyNotFound
		}
		return err
	}
	if party.HostID != actor.UserID {
		logger.Warn("Party delete rejected: not host", logger.Fields{
			"party_id": partyID,
			"user_id":  actor.UserID,
		})
		return ErrNotPartyHost
	}

	if err := deleteParty(s.db.WithContext(ctx), partyID); err != nil {
		logger.Error("Failed to delete party", err, logger.Fields{"party_id": partyID})
		return err
	}

	logger.Info("Party deleted", logger.Fields{"party_id": partyID})
	s.events.Publish(EventPartyUpdated, map[string]interface{}{"party_id": partyID, "deleted": true})
	return nil
}

// ListToday 오늘 생성된 OPEN 파티
func (s *partyService) ListToday(viewerID string) ([]model.PartyView, error) {
	now := s.now()
	// sqlite 는 시간을 문자열로 비교하므로 저장 시와 같은 로컬 오프셋으로 맞춘다
	since := s.rules.Reveal.StartOfDay(now).In(time.Local)

	parties, err := s.partyRepo.ListOpenSince(since)
	if err != nil {
		return nil, err
	}

	restaurantIDs := make([]uint, 0, len(parties))
	partyIDs := make([]uint, 0, len(parties))
	for _, p := range parties {
		restaurantIDs = append(restaurantIDs, p.RestaurantID)
		partyIDs = append(partyIDs, p.ID)
	}
	names, err := s.restaurantNames(restaurantIDs)
	if err != nil {
		return nil, err
	}
	rosters, err := s.partyRepo.ParticipantsOf(partyIDs)
	if err != nil {
		return nil, err
	}

	views := make([]model.PartyView, 0, len(parties))
	for i := range parties {
		views = append(views, s.buildView(&parties[i], rosters[parties[i].ID], names[parties[i].RestaurantID], viewerID, now))
	}
	return views, nil
}

func (s *partyService) Detail(viewerID string, partyID uint) (*model.PartyView, error) {
	party, err := s.partyRepo.FindByID(partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	roster, err := s.partyRepo.Participants(partyID)
	if err != nil {
		return nil, err
	}
	names, err := s.restaurantNames([]uint{party.RestaurantID})
	if err != nil {
		return nil, err
	}

	view := s.buildView(party, roster, names[party.RestaurantID], viewerID, s.now())
	return &view, nil
}

// CloseStale 오늘 이전에 만들어진 OPEN 파티를 닫는다 (자정 스케줄)
func (s *partyService) CloseStale() (int64, error) {
	before := s.rules.Reveal.StartOfDay(s.now()).In(time.Local)
	closed, err := s.partyRepo.CloseOpenBefore(before)
	if err != nil {
		return 0, err
	}
	logger.Info("Closed stale parties", logger.Fields{"count": closed})
	return closed, nil
}

// AnnounceReveal 공개 시각에 오늘의 익명 파티 목록을 알린다
func (s *partyService) AnnounceReveal() error {
	since := s.rules.Reveal.StartOfDay(s.now()).In(time.Local)
	parties, err := s.partyRepo.ListOpenSince(since)
	if err != nil {
		return err
	}

	ids := make([]uint, 0)
	for _, p := range parties {
		if p.IsAnonymous {
			ids = append(ids, p.ID)
		}
	}
	s.events.Publish(EventPartyRevealed, map[string]interface{}{"party_ids": ids})
	logger.Info("Party names revealed", logger.Fields{"count": len(ids)})
	return nil
}

func (s *partyService) buildView(party *model.Party, roster []model.PartyParticipant, restaurantName, viewerID string, now time.Time) model.PartyView {
	participants, hostLabel, revealed := s.rules.Reveal.Apply(party, roster, viewerID, now)

	joined := false
	for _, p := range participants {
		if p.IsMe {
			joined = true
			break
		}
	}

	return model.PartyView{
		ID:             party.ID,
		RestaurantID:   party.RestaurantID,
		RestaurantName: restaurantName,
		HostLabel:      hostLabel,
		IsHost:         viewerID != "" && viewerID == party.HostID,
		MaxPeople:      party.MaxPeople,
		CurrentPeople:  len(roster),
		IsAnonymous:    party.IsAnonymous,
		Revealed:       revealed,
		Joined:         joined,
		Status:         party.Status,
		CreatedAt:      party.CreatedAt,
		Participants:   participants,
	}
}

func (s *partyService) ensureRestaurant(id uint) error {
	if _, err := s.restaurantRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRestaurantNotFound
		}
		return err
	}
	return nil
}

func (s *partyService) restaurantNames(ids []uint) (map[uint]string, error) {
	restaurants, err := s.restaurantRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(restaurants))
	for _, r := range restaurants {
		names[r.ID] = r.Name
	}
	return names, nil
}

// deleteParty 참여 기록과 파티를 한 트랜잭션으로 삭제
func deleteParty(db *gorm.DB, partyID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("party_id = ?", partyID).Delete(&model.PartyParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Party{}, partyID).Error
	})
}
