package repository

import (
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id string) (*model.User, error)
	FindByName(name string) (*model.User, error)
	FindByIDAndEmail(id, email string) (*model.User, error)
	List() ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", logger.Fields{
		"user_id": user.ID,
		"name":    user.Name,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, logger.Fields{
			"name": user.Name,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByName(name string) (*model.User, error) {
	logger.Debug("Finding user by name in database", logger.Fields{
		"name": name,
	})

	var user model.User
	if err := r.db.Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDAndEmail 로그인용 단건 조회 (둘 다 일치해야 함)
func (r *userRepository) FindByIDAndEmail(id, email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("id = ? AND email = ?", id, email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("name ASC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return nil, err
	}
	return users, nil
}
