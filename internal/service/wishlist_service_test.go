package service

import (
	"context"
	"testing"

	"propnest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type wishlistRepoStub struct {
	createFn         func(ctx context.Context, entry *models.WishlistEntry) error
	listByUserFn     func(ctx context.Context, userUID string, limit, offset int) ([]*models.WishlistEntry, error)
	getByIDForUserFn func(ctx context.Context, id uint, userUID string) (*models.WishlistEntry, error)
	deleteFn         func(ctx context.Context, id uint, userUID string) (int64, error)
}

func noopWishlistRepo() *wishlistRepoStub {
	return &wishlistRepoStub{
		createFn: func(_ context.Context, e *models.WishlistEntry) error {
			e.ID = 1
			return nil
		},
		listByUserFn: func(_ context.Context, _ string, _, _ int) ([]*models.WishlistEntry, error) {
			return nil, nil
		},
		getByIDForUserFn: func(_ context.Context, id uint, userUID string) (*models.WishlistEntry, error) {
			return &models.WishlistEntry{ID: id, UserUID: userUID}, nil
		},
		deleteFn: func(_ context.Context, _ uint, _ string) (int64, error) { return 1, nil },
	}
}

func (s *wishlistRepoStub) Create(ctx context.Context, e *models.WishlistEntry) error {
	return s.createFn(ctx, e)
}

func (s *wishlistRepoStub) ListByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.WishlistEntry, error) {
	return s.listByUserFn(ctx, userUID, limit, offset)
}

func (s *wishlistRepoStub) GetByIDForUser(ctx context.Context, id uint, userUID string) (*models.WishlistEntry, error) {
	return s.getByIDForUserFn(ctx, id, userUID)
}

func (s *wishlistRepoStub) DeleteByIDForUser(ctx context.Context, id uint, userUID string) (int64, error) {
	return s.deleteFn(ctx, id, userUID)
}

func TestWishlistService_Add(t *testing.T) {
	t.Parallel()

	t.Run("owner comes from the caller", func(t *testing.T) {
		t.Parallel()
		var created *models.WishlistEntry
		repo := noopWishlistRepo()
		repo.createFn = func(_ context.Context, e *models.WishlistEntry) error {
			e.ID = 9
			created = e
			return nil
		}
		svc := NewWishlistService(repo, noopPropertyRepo())

		entry, err := svc.Add(context.Background(), "uid-owner", 5)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "uid-owner", created.UserUID)
		assert.EqualValues(t, 5, created.PropertyID)
		assert.EqualValues(t, 9, entry.ID)
	})

	t.Run("missing property is not found", func(t *testing.T) {
		t.Parallel()
		props := noopPropertyRepo()
		props.getByIDFn = func(_ context.Context, _ uint) (*models.Property, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewWishlistService(noopWishlistRepo(), props)

		_, err := svc.Add(context.Background(), "uid-owner", 404)
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("zero property id is invalid", func(t *testing.T) {
		t.Parallel()
		svc := NewWishlistService(noopWishlistRepo(), noopPropertyRepo())
		_, err := svc.Add(context.Background(), "uid-owner", 0)
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("duplicate save is a conflict", func(t *testing.T) {
		t.Parallel()
		repo := noopWishlistRepo()
		repo.createFn = func(_ context.Context, _ *models.WishlistEntry) error {
			return gorm.ErrDuplicatedKey
		}
		svc := NewWishlistService(repo, noopPropertyRepo())

		_, err := svc.Add(context.Background(), "uid-owner", 5)
		assertAppErrorCode(t, err, "CONFLICT")
	})
}

func TestWishlistService_Remove(t *testing.T) {
	t.Parallel()

	t.Run("zero rows means not found", func(t *testing.T) {
		t.Parallel()
		repo := noopWishlistRepo()
		repo.deleteFn = func(_ context.Context, _ uint, _ string) (int64, error) { return 0, nil }
		svc := NewWishlistService(repo, noopPropertyRepo())

		err := svc.Remove(context.Background(), "uid-other", 3)
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		t.Parallel()
		svc := NewWishlistService(noopWishlistRepo(), noopPropertyRepo())
		require.NoError(t, svc.Remove(context.Background(), "uid-owner", 3))
	})
}
