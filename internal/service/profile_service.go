package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"propnest/internal/identity"
	"propnest/internal/models"
	"propnest/internal/observability"
	"propnest/internal/repository"

	"gorm.io/gorm"
)

// verifyTimeout bounds a single round trip to the identity provider.
const verifyTimeout = 10 * time.Second

// UpdateProfileInput applies a partial self-update; nil fields are left as-is.
type UpdateProfileInput struct {
	DisplayName *string
	Email       *string
	Phone       *string
	PhotoURL    *string
}

// ProfileService verifies bearer credentials and manages user profiles.
// Profiles are provisioned just in time: the first authenticated request
// for an unknown uid creates the row from the token claims.
type ProfileService struct {
	verifier identity.Verifier
	repo     repository.UserRepository
}

func NewProfileService(verifier identity.Verifier, repo repository.UserRepository) *ProfileService {
	return &ProfileService{verifier: verifier, repo: repo}
}

// Authenticate verifies the token and returns the stored profile,
// creating it from the claims when the subject is new. Rejected
// credentials and provider outages come back as distinct error codes so
// the transport layer can answer 401 versus 503.
func (s *ProfileService) Authenticate(ctx context.Context, token string) (*models.UserProfile, error) {
	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	claims, err := s.verifier.Verify(vctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			observability.TokenVerifications.WithLabelValues("unavailable").Inc()
			return nil, models.NewAuthUnavailableError(err)
		}
		observability.TokenVerifications.WithLabelValues("invalid").Inc()
		// One fixed message for every rejected credential; the reason
		// stays out of the response.
		return nil, models.NewUnauthorizedError("Invalid authentication token")
	}
	observability.TokenVerifications.WithLabelValues("ok").Inc()

	profile, err := s.repo.GetOrCreate(ctx, &models.UserProfile{
		UID:         claims.UID,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		PhotoURL:    claims.PhotoURL,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profile, nil
}

func (s *ProfileService) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", uid)
		}
		return nil, models.NewInternalError(err)
	}
	return profile, nil
}

// Update applies the non-nil fields of in to the caller's own profile.
func (s *ProfileService) Update(ctx context.Context, uid string, in UpdateProfileInput) (*models.UserProfile, error) {
	profile, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !strings.Contains(email, "@") {
			return nil, models.NewValidationError("Invalid email address")
		}
		profile.Email = email
	}
	if in.Phone != nil {
		profile.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.PhotoURL != nil {
		profile.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, models.NewInternalError(err)
	}
	return profile, nil
}
