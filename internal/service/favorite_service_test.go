package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
)

type fakeProfileRepo struct {
	byID     map[uuid.UUID]*domain.Profile
	searched []domain.ProfileListItem
	photos   map[uuid.UUID][]domain.ProfilePhoto
}

func newFakeProfileRepo(profiles ...*domain.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{
		byID:   make(map[uuid.UUID]*domain.Profile),
		photos: make(map[uuid.UUID][]domain.ProfilePhoto),
	}
	for _, profile := range profiles {
		repo.byID[profile.ID] = profile
	}
	return repo
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	for _, existing := range f.byID {
		if existing.AccountID == profile.AccountID {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	stored := *profile
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.byID[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	existing, ok := f.byID[profile.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	updated := *profile
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	f.byID[profile.ID] = &updated
	return &updated, nil
}

func (f *fakeProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func (f *fakeProfileRepo) FindByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	for _, profile := range f.byID {
		if profile.AccountID == accountID {
			return profile, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProfileRepo) Search(ctx context.Context, filter domain.ProfileSearchFilter, limit, offset int) ([]domain.ProfileListItem, error) {
	return f.searched, nil
}

func (f *fakeProfileRepo) CountSearch(ctx context.Context, filter domain.ProfileSearchFilter) (int64, error) {
	return int64(len(f.searched)), nil
}

func (f *fakeProfileRepo) AddPhoto(ctx context.Context, profileID uuid.UUID, url string, caption *string, isPrimary bool) (*domain.ProfilePhoto, error) {
	photo := domain.ProfilePhoto{
		ID:        uuid.New(),
		ProfileID: profileID,
		URL:       url,
		Caption:   caption,
		IsPrimary: isPrimary,
		CreatedAt: time.Now(),
	}
	f.photos[profileID] = append(f.photos[profileID], photo)
	return &photo, nil
}

func (f *fakeProfileRepo) ListPhotos(ctx context.Context, profileID uuid.UUID) ([]domain.ProfilePhoto, error) {
	return f.photos[profileID], nil
}

func (f *fakeProfileRepo) RemovePhoto(ctx context.Context, profileID, photoID uuid.UUID) error {
	photos := f.photos[profileID]
	for i, photo := range photos {
		if photo.ID == photoID {
			f.photos[profileID] = append(photos[:i], photos[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeFavoriteRepo struct {
	saved map[[2]uuid.UUID]*domain.Favorite
	items []domain.FavoriteListItem
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{saved: make(map[[2]uuid.UUID]*domain.Favorite)}
}

func (f *fakeFavoriteRepo) Add(ctx context.Context, accountID, profileID uuid.UUID) (*domain.Favorite, error) {
	key := [2]uuid.UUID{accountID, profileID}
	if _, exists := f.saved[key]; exists {
		return nil, sql.ErrNoRows
	}
	favorite := &domain.Favorite{
		ID:        int64(len(f.saved) + 1),
		AccountID: accountID,
		ProfileID: profileID,
		CreatedAt: time.Now(),
	}
	f.saved[key] = favorite
	return favorite, nil
}

func (f *fakeFavoriteRepo) Remove(ctx context.Context, accountID, profileID uuid.UUID) error {
	key := [2]uuid.UUID{accountID, profileID}
	if _, exists := f.saved[key]; !exists {
		return sql.ErrNoRows
	}
	delete(f.saved, key)
	return nil
}

func (f *fakeFavoriteRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.FavoriteListItem, error) {
	return f.items, nil
}

func (f *fakeFavoriteRepo) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return int64(len(f.saved)), nil
}

func newTestProfile(accountID uuid.UUID) *domain.Profile {
	return &domain.Profile{
		ID:          uuid.New(),
		AccountID:   accountID,
		Gender:      "female",
		DateOfBirth: time.Now().AddDate(-25, 0, 0),
	}
}

func TestFavoriteSave(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	other := newTestProfile(uuid.New())

	t.Run("success", func(t *testing.T) {
		svc := NewFavoriteService(newFakeFavoriteRepo(), newFakeProfileRepo(other))
		favorite, err := svc.Save(ctx, accountID, other.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if favorite.ProfileID != other.ID {
			t.Fatalf("expected favorite for %s, got %s", other.ID, favorite.ProfileID)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		svc := NewFavoriteService(newFakeFavoriteRepo(), newFakeProfileRepo())
		if _, err := svc.Save(ctx, accountID, uuid.New()); !errors.Is(err, ErrProfileNotFound) {
			t.Fatalf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("own profile rejected", func(t *testing.T) {
		own := newTestProfile(accountID)
		svc := NewFavoriteService(newFakeFavoriteRepo(), newFakeProfileRepo(own))
		if _, err := svc.Save(ctx, accountID, own.ID); !errors.Is(err, ErrFavoriteSelf) {
			t.Fatalf("expected ErrFavoriteSelf, got %v", err)
		}
	})

	t.Run("duplicate save conflicts", func(t *testing.T) {
		svc := NewFavoriteService(newFakeFavoriteRepo(), newFakeProfileRepo(other))
		if _, err := svc.Save(ctx, accountID, other.ID); err != nil {
			t.Fatalf("first save: %v", err)
		}
		if _, err := svc.Save(ctx, accountID, other.ID); !errors.Is(err, ErrFavoriteAlreadyExists) {
			t.Fatalf("expected ErrFavoriteAlreadyExists, got %v", err)
		}
	})
}

func TestFavoriteRemove(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	other := newTestProfile(uuid.New())

	favorites := newFakeFavoriteRepo()
	svc := NewFavoriteService(favorites, newFakeProfileRepo(other))

	if _, err := svc.Save(ctx, accountID, other.ID); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Remove(ctx, accountID, other.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Remove(ctx, accountID, other.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound on second removal, got %v", err)
	}
}

func TestFavoriteListPagination(t *testing.T) {
	ctx := context.Background()
	favorites := newFakeFavoriteRepo()
	svc := NewFavoriteService(favorites, newFakeProfileRepo())

	result, err := svc.List(ctx, uuid.New(), -5, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Limit != 20 || result.Offset != 0 {
		t.Fatalf("expected defaults 20/0, got %d/%d", result.Limit, result.Offset)
	}
}
