package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
)

var (
	ErrFavoriteAlreadyExists = errors.New("profile already saved to favorites")
	ErrFavoriteNotFound      = errors.New("favorite not found")
	ErrFavoriteSelf          = errors.New("cannot favorite your own profile")
)

type FavoriteService struct {
	favorites ports.FavoriteRepository
	profiles  ports.ProfileRepository
}

type FavoriteListResult struct {
	Items  []domain.FavoriteListItem
	Total  int64
	Limit  int
	Offset int
}

func NewFavoriteService(favoriteRepo ports.FavoriteRepository, profileRepo ports.ProfileRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favoriteRepo,
		profiles:  profileRepo,
	}
}

func (s *FavoriteService) Save(ctx context.Context, accountID, profileID uuid.UUID) (*domain.Favorite, error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if profile.AccountID == accountID {
		return nil, ErrFavoriteSelf
	}

	favorite, err := s.favorites.Add(ctx, accountID, profileID)
	if err != nil {
		switch {
		case isNotFound(err), isUniqueViolation(err):
			return nil, ErrFavoriteAlreadyExists
		default:
			return nil, err
		}
	}
	return favorite, nil
}

func (s *FavoriteService) Remove(ctx context.Context, accountID, profileID uuid.UUID) error {
	if err := s.favorites.Remove(ctx, accountID, profileID); err != nil {
		if isNotFound(err) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, accountID uuid.UUID, limit, offset int) (*FavoriteListResult, error) {
	nLimit, nOffset := normalizePagination(limit, offset)

	items, err := s.favorites.ListByAccount(ctx, accountID, nLimit, nOffset)
	if err != nil {
		return nil, err
	}
	total, err := s.favorites.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &FavoriteListResult{Items: items, Total: total, Limit: nLimit, Offset: nOffset}, nil
}
