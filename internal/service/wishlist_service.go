package service

import (
	"context"
	"errors"

	"propnest/internal/models"
	"propnest/internal/observability"
	"propnest/internal/repository"

	"gorm.io/gorm"
)

// WishlistService manages per-user saved listings. The owning uid always
// comes from the verified caller, never from the request body.
type WishlistService struct {
	repo       repository.WishlistRepository
	properties repository.PropertyRepository
}

func NewWishlistService(repo repository.WishlistRepository, properties repository.PropertyRepository) *WishlistService {
	return &WishlistService{repo: repo, properties: properties}
}

// Add saves a listing to the caller's wishlist. Saving the same listing
// twice is a conflict, and the listing must exist.
func (s *WishlistService) Add(ctx context.Context, userUID string, propertyID uint) (*models.WishlistEntry, error) {
	if propertyID == 0 {
		return nil, models.NewValidationError("property_id is required")
	}
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Property", propertyID)
		}
		return nil, models.NewInternalError(err)
	}

	entry := &models.WishlistEntry{UserUID: userUID, PropertyID: propertyID}
	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.WishlistConflicts.Inc()
			return nil, models.NewConflictError("Property is already in your wishlist")
		}
		return nil, models.NewInternalError(err)
	}

	created, err := s.repo.GetByIDForUser(ctx, entry.ID, userUID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

func (s *WishlistService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.WishlistEntry, error) {
	if limit <= 0 {
		limit = DefaultListingPageSize
	}
	if limit > MaxListingPageSize {
		limit = MaxListingPageSize
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.repo.ListByUser(ctx, userUID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

// Remove deletes the caller's entry. Ids belonging to other users look
// exactly like missing ones.
func (s *WishlistService) Remove(ctx context.Context, userUID string, entryID uint) error {
	affected, err := s.repo.DeleteByIDForUser(ctx, entryID, userUID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if affected == 0 {
		return models.NewNotFoundError("Wishlist entry", entryID)
	}
	return nil
}
