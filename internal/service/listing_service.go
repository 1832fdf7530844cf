// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propnest/internal/models"
	"propnest/internal/observability"
	"propnest/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const (
	DefaultListingPageSize = 20
	MaxListingPageSize     = 100
	MaxImagesPerListing    = 10
)

// CreateListingInput carries a new listing and its uploaded images.
type CreateListingInput struct {
	Title        string
	Description  string
	Location     string
	PropertyType string
	Price        string
	Bedrooms     int
	Bathrooms    int
	Images       []ImageUpload
}

// UpdateListingInput applies a partial update; nil fields are left as-is.
type UpdateListingInput struct {
	Title        *string
	Description  *string
	Location     *string
	PropertyType *string
	Price        *string
	Bedrooms     *int
	Bathrooms    *int
}

// ListingService manages property listings and their image attachments.
type ListingService struct {
	repo   repository.PropertyRepository
	images *ImageStore
}

func NewListingService(repo repository.PropertyRepository, images *ImageStore) *ListingService {
	return &ListingService{repo: repo, images: images}
}

// Create validates input, stores image files, then persists the listing
// with its image rows in one transaction. Stored files are unlinked if
// the insert fails, so a listing never half-exists.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*models.Property, error) {
	span, ctx := observability.NewSpan(ctx, "ListingService.Create")
	defer span.End()
	span.AddAttributes(attribute.Int("listing.image_count", len(in.Images)))

	property, err := s.create(ctx, in)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return property, nil
}

func (s *ListingService) create(ctx context.Context, in CreateListingInput) (*models.Property, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	if err := validateCounts(in.Bedrooms, in.Bathrooms); err != nil {
		return nil, err
	}
	if len(in.Images) > MaxImagesPerListing {
		return nil, models.NewValidationError(fmt.Sprintf("Too many images (max %d)", MaxImagesPerListing))
	}

	property := &models.Property{
		Title:        title,
		Description:  in.Description,
		Location:     strings.TrimSpace(in.Location),
		PropertyType: strings.TrimSpace(in.PropertyType),
		Price:        price,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
	}

	var writtenPaths []string
	for _, upload := range in.Images {
		stored, saveErr := s.images.Save(upload)
		if saveErr != nil {
			s.images.Remove(writtenPaths...)
			return nil, saveErr
		}
		writtenPaths = append(writtenPaths, stored.StoredPath, stored.ThumbnailPath)
		property.Images = append(property.Images, models.PropertyImage{
			StoredPath:       stored.StoredPath,
			ThumbnailPath:    stored.ThumbnailPath,
			URL:              stored.URL,
			ThumbnailURL:     stored.ThumbnailURL,
			OriginalFilename: upload.Filename,
			ContentType:      stored.ContentType,
			SizeBytes:        stored.SizeBytes,
			Width:            stored.Width,
			Height:           stored.Height,
		})
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.images.Remove(writtenPaths...)
		return nil, models.NewInternalError(err)
	}

	observability.ListingsCreated.Inc()
	observability.ImagesStored.Add(float64(len(property.Images)))
	return property, nil
}

func (s *ListingService) Get(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Property", id)
		}
		return nil, models.NewInternalError(err)
	}
	return property, nil
}

// List returns listings newest first.
func (s *ListingService) List(ctx context.Context, limit, offset int) ([]*models.Property, error) {
	if limit <= 0 {
		limit = DefaultListingPageSize
	}
	if limit > MaxListingPageSize {
		limit = MaxListingPageSize
	}
	if offset < 0 {
		offset = 0
	}
	properties, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return properties, nil
}

// Update applies the non-nil fields of in to an existing listing.
// Images are not touched by updates.
func (s *ListingService) Update(ctx context.Context, id uint, in UpdateListingInput) (*models.Property, error) {
	property, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		property.Title = title
	}
	if in.Description != nil {
		property.Description = *in.Description
	}
	if in.Location != nil {
		property.Location = strings.TrimSpace(*in.Location)
	}
	if in.PropertyType != nil {
		property.PropertyType = strings.TrimSpace(*in.PropertyType)
	}
	if in.Price != nil {
		price, perr := parsePrice(*in.Price)
		if perr != nil {
			return nil, perr
		}
		property.Price = price
	}
	if in.Bedrooms != nil {
		property.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		property.Bathrooms = *in.Bathrooms
	}
	if err := validateCounts(property.Bedrooms, property.Bathrooms); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, models.NewInternalError(err)
	}
	return property, nil
}

// Delete removes the listing, its image rows and their files.
func (s *ListingService) Delete(ctx context.Context, id uint) error {
	property, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	// Files go last; a leftover file is recoverable, a dangling row is not.
	for _, img := range property.Images {
		s.images.Remove(img.StoredPath, img.ThumbnailPath)
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, models.NewValidationError("Price is required")
	}
	price, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, models.NewValidationError("Price must be a decimal number")
	}
	if price.IsNegative() {
		return decimal.Zero, models.NewValidationError("Price cannot be negative")
	}
	return price, nil
}

func validateCounts(bedrooms, bathrooms int) error {
	if bedrooms < 0 {
		return models.NewValidationError("Bedrooms cannot be negative")
	}
	if bathrooms < 0 {
		return models.NewValidationError("Bathrooms cannot be negative")
	}
	return nil
}
