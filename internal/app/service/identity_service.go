package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/fisa/matjip-backend/internal/cache"
	"github.com/fisa/matjip-backend/pkg/logger"
	"github.com/fisa/matjip-backend/pkg/util"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNameTaken    = errors.New("name already registered with another email")
	ErrInvalidEmail = errors.New("invalid email format")
	ErrNameRequired = errors.New("name is required")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

type IdentityService interface {
	GetOrCreateUser(name, email string) (*model.User, bool, error)
	Register(name, email string) (*model.User, *util.SessionToken, error)
	Login(userID, email string) (*model.User, *util.SessionToken, error)
	Logout(ctx context.Context, claims *util.SessionClaims) error
	GetUser(id string) (*model.User, error)
	ListUsers() ([]model.User, error)
}

type identityService struct {
	userRepo      repository.UserRepository
	blacklist     cache.TokenBlacklist
	jwtSecret     string
	sessionExpiry time.Duration
}

func NewIdentityService(
	userRepo repository.UserRepository,
	blacklist cache.TokenBlacklist,
	jwtSecret string,
	sessionExpiry time.Duration,
) IdentityService {
	return &identityService{
		userRepo:      userRepo,
		blacklist:     blacklist,
		jwtSecret:     jwtSecret,
		sessionExpiry: sessionExpiry,
	}
}

// GetOrCreateUser 이름으로 조회하고 없으면 새 ID(uuid 앞 8자리)로 생성
// 동시 생성은 users.name 유니크 인덱스에서 걸리고, 그때는 먼저 생긴 행을 돌려준다
func (s *identityService) GetOrCreateUser(name, email string) (*model.User, bool, error) {
	user, err := s.userRepo.FindByName(name)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up user by name", err, logger.Fields{"name": name})
		return nil, false, err
	}

	user = &model.User{
		ID:    uuid.NewString()[:8],
		Name:  name,
		Email: email,
	}
	if err := s.userRepo.Create(user); err != nil {
		if existing, findErr := s.userRepo.FindByName(name); findErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}

	logger.Info("User created", logger.Fields{
		"user_id": user.ID,
		"name":    user.Name,
	})
	return user, true, nil
}

func (s *identityService) Register(name, email string) (*model.User, *util.SessionToken, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, nil, ErrNameRequired
	}
	if !emailPattern.MatchString(email) {
		logger.Warn("Registration failed: invalid email", logger.Fields{"name": name})
		return nil, nil, ErrInvalidEmail
	}

	user, _, err := s.GetOrCreateUser(name, email)
	if err != nil {
		return nil, nil, err
	}
	if user.Email != email {
		logger.Warn("Registration failed: name already taken", logger.Fields{"name": name})
		return nil, nil, ErrNameTaken
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Login ID와 이메일이 모두 맞아야 함 (어느 쪽이 틀렸는지는 알려주지 않음)
func (s *identityService) Login(userID, email string) (*model.User, *util.SessionToken, error) {
	user, err := s.userRepo.FindByIDAndEmail(strings.TrimSpace(userID), strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", logger.Fields{"user_id": userID})
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in", logger.Fields{"user_id": user.ID})
	return user, token, nil
}

// Logout 토큰이 만료될 때까지 블랙리스트에 둔다
func (s *identityService) Logout(ctx context.Context, claims *util.SessionClaims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		logger.Error("Failed to revoke session", err, logger.Fields{"user_id": claims.UserID})
		return err
	}

	logger.Info("User logged out", logger.Fields{"user_id": claims.UserID})
	return nil
}

func (s *identityService) GetUser(id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *identityService) ListUsers() ([]model.User, error) {
	return s.userRepo.List()
}

func (s *identityService) issue(user *model.User) (*util.SessionToken, error) {
	token, err := util.GenerateSessionToken(user.ID, user.Name, s.jwtSecret, s.sessionExpiry)
	if err != nil {
		logger.Error("Failed to generate session token", err, logger.Fields{"user_id": user.ID})
		return nil, err
	}
	return token, nil
}
