package repository

import (
	"context"

	"propnest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user profile data operations
type UserRepository interface {
	// GetOrCreate provisions a profile for a verified external identity.
	// The insert is an atomic upsert guarded by the uid primary key
	// (ON CONFLICT DO NOTHING), so concurrent first logins for the same
	// subject cannot create two rows, and an existing row is returned
	// unmodified; provider claims are defaults at creation only.
	GetOrCreate(ctx context.Context, defaults *models.UserProfile) (*models.UserProfile, error)
	GetByUID(ctx context.Context, uid string) (*models.UserProfile, error)
	Update(ctx context.Context, profile *models.UserProfile) error
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetOrCreate(ctx context.Context, defaults *models.UserProfile) (*models.UserProfile, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoNothing: true,
		}).
		Create(defaults).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUID(ctx, defaults.UID)
}

func (r *userRepository) GetByUID(ctx context.Context, uid string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).First(&profile, "uid = ?", uid).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
