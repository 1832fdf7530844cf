// Package seed provides helpers to create demo listings for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"propnest/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var propertyTypes = []string{"apartment", "house", "studio", "townhouse", "villa"}

// Seeder creates demo data in the database.
type Seeder struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded rows. Order respects foreign keys.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.WishlistEntry{},
		&models.PropertyImage{},
		&models.Property{},
		&models.UserProfile{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	log.Println("Cleared existing data")
	return nil
}

// BuildProperty constructs one fake listing without persisting it.
func (s *Seeder) BuildProperty(overrides ...func(*models.Property)) *models.Property {
	bedrooms := s.r.Intn(5) + 1
	property := &models.Property{
		Title:        fmt.Sprintf("%s in %s", gofakeit.AdjectiveDescriptive(), gofakeit.City()),
		Description:  gofakeit.Paragraph(1, 3, 12, "\n"),
		Location:     fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
		PropertyType: propertyTypes[s.r.Intn(len(propertyTypes))],
		Price:        decimal.NewFromInt(int64(gofakeit.Number(60, 1500) * 1000)),
		Bedrooms:     bedrooms,
		Bathrooms:    s.r.Intn(bedrooms) + 1,
	}

	// realistic created_at spread over the last 90 days
	daysBack := s.r.Intn(90)
	hoursBack := s.r.Intn(24)
	property.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	// external demo photos; uploaded images get local /media URLs instead
	for i := 0; i < s.r.Intn(4); i++ {
		seedKey := gofakeit.UUID()
		property.Images = append(property.Images, models.PropertyImage{
			URL:              fmt.Sprintf("https://picsum.photos/seed/%s/1200/800", seedKey),
			ThumbnailURL:     fmt.Sprintf("https://picsum.photos/seed/%s/480/320", seedKey),
			OriginalFilename: fmt.Sprintf("demo-%d.jpg", i+1),
			ContentType:      "image/jpeg",
		})
	}

	for _, override := range overrides {
		override(property)
	}
	return property
}

// SeedListings persists count fake listings in batches.
func (s *Seeder) SeedListings(count int) ([]*models.Property, error) {
	properties := make([]*models.Property, 0, count)
	for i := 0; i < count; i++ {
		properties = append(properties, s.BuildProperty())
	}
	if err := s.db.CreateInBatches(&properties, 50).Error; err != nil {
		return nil, err
	}
	log.Printf("Seeded %d listings", len(properties))
	return properties, nil
}

// SeedWishlists creates demo profiles and spreads wishlist entries over
// the given listings.
func (s *Seeder) SeedWishlists(userCount int, properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	for i := 0; i < userCount; i++ {
		profile := &models.UserProfile{
			UID:         fmt.Sprintf("demo-%s", gofakeit.UUID()),
			DisplayName: gofakeit.Name(),
			Email:       gofakeit.Email(),
			Phone:       gofakeit.Phone(),
		}
		if err := s.db.Create(profile).Error; err != nil {
			return err
		}

		// each demo user wishes for a few distinct listings
		picks := s.r.Perm(len(properties))
		wishes := s.r.Intn(4) + 1
		if wishes > len(picks) {
			wishes = len(picks)
		}
		for _, idx := range picks[:wishes] {
			entry := &models.WishlistEntry{UserUID: profile.UID, PropertyID: properties[idx].ID}
			if err := s.db.Create(entry).Error; err != nil {
				return err
			}
		}
	}
	log.Printf("Seeded %d demo users with wishlists", userCount)
	return nil
}
