// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"propnest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PropertyRepository defines the interface for listing data operations
type PropertyRepository interface {
	// Create persists the listing together with any attached image rows
	// in a single transaction; either everything commits or nothing does.
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uint) (*models.Property, error)
	List(ctx context.Context, limit, offset int) ([]*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uint) error
}

// propertyRepository implements PropertyRepository
type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	// gorm wraps the root insert and its association inserts in one
	// transaction, which is what keeps listing+images all-or-nothing.
	return r.db.WithContext(ctx).Create(property).Error
}

func (r *propertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Preload("Images").
		First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) List(ctx context.Context, limit, offset int) ([]*models.Property, error) {
	var properties []*models.Property
	err := r.db.WithContext(ctx).
		Preload("Images").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&properties).Error
	return properties, err
}

func (r *propertyRepository) Update(ctx context.Context, property *models.Property) error {
	// Save without touching associations; images are managed by Create/Delete.
	return r.db.WithContext(ctx).Omit("Images", "CreatedAt").Save(property).Error
}

func (r *propertyRepository) Delete(ctx context.Context, id uint) error {
	// Wishlist entries reference the listing from their own table, so they
	// must go first or Postgres rejects the delete with an FK violation.
	// Select(Associations) then removes the image rows in the same
	// transaction, so no orphan rows survive on any driver.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.WishlistEntry{}).Error; err != nil {
			return err
		}
		return tx.Select(clause.Associations).Delete(&models.Property{ID: id}).Error
	})
}
