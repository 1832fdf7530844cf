package repository

import (
	"context"

	"propnest/internal/models"

	"gorm.io/gorm"
)

// WishlistRepository defines the interface for wishlist data operations.
// Every read and write carries the owning uid predicate; scoping to the
// caller is enforced here, at the persistence boundary, not only in
// request handling.
type WishlistRepository interface {
	Create(ctx context.Context, entry *models.WishlistEntry) error
	ListByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.WishlistEntry, error)
	GetByIDForUser(ctx context.Context, id uint, userUID string) (*models.WishlistEntry, error)
	// DeleteByIDForUser removes the entry only when it belongs to userUID
	// and reports how many rows matched, so callers can answer 404 for
	// another user's ids without leaking their existence.
	DeleteByIDForUser(ctx context.Context, id uint, userUID string) (int64, error)
}

// wishlistRepository implements WishlistRepository
type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository creates a new wishlist repository
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Create(ctx context.Context, entry *models.WishlistEntry) error {
	// The unique index on (user_uid, property_id) surfaces duplicates as
	// gorm.ErrDuplicatedKey via TranslateError.
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.WishlistEntry, error) {
	var entries []*models.WishlistEntry
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Property.Images").
		Where("user_uid = ?", userUID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *wishlistRepository) GetByIDForUser(ctx context.Context, id uint, userUID string) (*models.WishlistEntry, error) {
	var entry models.WishlistEntry
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Property.Images").
		Where("id = ? AND user_uid = ?", id, userUID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *wishlistRepository) DeleteByIDForUser(ctx context.Context, id uint, userUID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_uid = ?", id, userUID).
		Delete(&models.WishlistEntry{})
	return result.RowsAffected, result.Error
}
