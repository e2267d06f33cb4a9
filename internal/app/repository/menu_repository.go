package repository

import (
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/pkg/logger"
	"gorm.io/gorm"
)

type MenuRepository interface {
	Create(item *model.MenuItem) error
	FindByID(id uint) (*model.MenuItem, error)
	ListByRestaurant(restaurantID uint) ([]model.MenuItem, error)
	WithinBudget(budget, limit int) ([]model.MenuItem, error)
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(item *model.MenuItem) error {
	logger.Debug("Creating menu item in database", logger.Fields{
		"restaurant_id": item.RestaurantID,
		"item_name":     item.ItemName,
		"price":         item.Price,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create menu item", err, logger.Fields{
			"restaurant_id": item.RestaurantID,
		})
		return err
	}
	return nil
}

func (r *menuRepository) FindByID(id uint) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) ListByRestaurant(restaurantID uint) ([]model.MenuItem, error) {
	var items []model.MenuItem
	err := r.db.
		Where("restaurant_id = ?", restaurantID).
		Order("price ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// WithinBudget 예산 이하 메뉴를 비싼 순으로 (limit <= 0 이면 전체)
func (r *menuRepository) WithinBudget(budget, limit int) ([]model.MenuItem, error) {
	query := r.db.Where("price <= ?", budget).Order("price DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []model.MenuItem
	if err := query.Find(&items).Error; err != nil {
		logger.Error("Failed to query menu within budget", err, logger.Fields{
			"budget": budget,
		})
		return nil, err
	}
	return items, nil
}
