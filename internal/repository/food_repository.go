package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-food-scanner/pkg/models"
)

// FoodRepository is the persistent nutrition store behind the cache-aside
// resolution path
type FoodRepository interface {
	// FindByName returns the record for a normalized food name, or
	// ErrFoodNotFound when no such record exists
	FindByName(ctx context.Context, name string) (*models.Food, error)

	// Insert stores a new record. Returns ErrDuplicateFood when a record
	// with the same name already exists.
	Insert(ctx context.Context, food *models.Food) error
}

type gormFoodRepository struct {
	db *gorm.DB
}

// NewFoodRepository creates a gorm-backed food repository
func NewFoodRepository(db *gorm.DB) FoodRepository {
	return &gormFoodRepository{db: db}
}

func (r *gormFoodRepository) FindByName(ctx context.Context, name string) (*models.Food, error) {
	var food models.Food
	err := r.db.WithContext(ctx).Where("food_name = ?", name).First(&food).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("food lookup failed: %w", err)
	}
	return &food, nil
}

func (r *gormFoodRepository) Insert(ctx context.Context, food *models.Food) error {
	err := r.db.WithContext(ctx).Create(food).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateFood
		}
		return fmt.Errorf("food insert failed: %w", err)
	}
	return nil
}
