package repository

import (
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/pkg/logger"
	"gorm.io/gorm"
)

// RestaurantRepository 맛집 저장소 (관계형 DB 또는 스프레드시트)
type RestaurantRepository interface {
	Create(restaurant *model.Restaurant) error
	// CreateWithReview 맛집과 첫 리뷰를 함께 저장, 하나라도 실패하면 둘 다 남기지 않는다
	CreateWithReview(restaurant *model.Restaurant, review *model.Review) error
	FindByID(id uint) (*model.Restaurant, error)
	FindByNameOrAddress(name, address string) (*model.Restaurant, error)
	List(category model.Category) ([]model.Restaurant, error)
	FindByIDs(ids []uint) ([]model.Restaurant, error)
	UpdateImageURL(id uint, imageURL string) error
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(restaurant *model.Restaurant) error {
	logger.Debug("Creating restaurant in database", logger.Fields{
		"name":    restaurant.Name,
		"address": restaurant.Address,
	})

	if err := r.db.Create(restaurant).Error; err != nil {
		logger.Error("Failed to create restaurant in database", err, logger.Fields{
			"name": restaurant.Name,
		})
		return err
	}
	return nil
}

func (r *restaurantRepository) CreateWithReview(restaurant *model.Restaurant, review *model.Review) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(restaurant).Error; err != nil {
			return err
		}
		review.TargetType = model.TargetRestaurant
		review.TargetID = restaurant.ID
		return tx.Omit("User").Create(review).Error
	})
	if err != nil {
		logger.Error("Failed to create restaurant with first review", err, logger.Fields{
			"name": restaurant.Name,
		})
		// 롤백된 행의 ID 가 밖으로 새지 않도록
		restaurant.ID = 0
		review.ID = 0
		return err
	}
	return nil
}

func (r *restaurantRepository) FindByID(id uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := r.db.First(&restaurant, id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindByNameOrAddress 이름 또는 주소가 정확히 같은 맛집
func (r *restaurantRepository) FindByNameOrAddress(name, address string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.
		Where("name = ? OR address = ?", name, address).
		Order("id ASC").
		First(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) List(category model.Category) ([]model.Restaurant, error) {
	logger.Debug("Listing restaurants", logger.Fields{
		"category": category,
	})

	query := r.db.Model(&model.Restaurant{})
	if !category.IsAll() {
		query = query.Where("category = ?", category)
	}

	var restaurants []model.Restaurant
	if err := query.Order("added_at DESC, id DESC").Find(&restaurants).Error; err != nil {
		logger.Error("Failed to list restaurants", err, logger.Fields{
			"category": category,
		})
		return nil, err
	}
	return restaurants, nil
}

func (r *restaurantRepository) FindByIDs(ids []uint) ([]model.Restaurant, error) {
	if len(ids) == 0 {
		return []model.Restaurant{}, nil
	}
	var restaurants []model.Restaurant
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (r *restaurantRepository) UpdateImageURL(id uint, imageURL string) error {
	result := r.db.Model(&model.Restaurant{}).Where("id = ?", id).Update("image_url", imageURL)
	if result.Error != nil {
		logger.Error("Failed to update restaurant image", result.Error, logger.Fields{
			"restaurant_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
