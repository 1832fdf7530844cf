// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property represents a real-estate listing.
type Property struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Title        string          `gorm:"not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Location     string          `json:"location"`
	PropertyType string          `json:"property_type"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	// CreatedAt is server-set at insert and never updated afterwards.
	CreatedAt time.Time       `gorm:"<-:create;index" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Images    []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images"`
}

// PropertyImage is a stored image attached to a listing. The binary
// lives on disk under the media dir; rows carry the serving URLs.
type PropertyImage struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	PropertyID uint `gorm:"not null;index" json:"property_id"`
	// StoredPath is relative to the media dir, e.g. "<uuid>/original.jpg".
	StoredPath       string    `gorm:"not null" json:"-"`
	ThumbnailPath    string    `json:"-"`
	URL              string    `gorm:"not null" json:"url"`
	ThumbnailURL     string    `json:"thumbnail_url"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	CreatedAt        time.Time `json:"created_at"`
}
