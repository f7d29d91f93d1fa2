package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/media"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("account already has a profile")
	ErrProfileInvalid       = errors.New("profile data invalid")
	ErrPhotoNotFound        = errors.New("photo not found")
)

type ProfileService struct {
	profiles  ports.ProfileRepository
	storage   ports.ObjectStorage
	validator *media.Validator
	bucket    string
}

type ProfileSearchResult struct {
	Items  []domain.ProfileListItem
	Total  int64
	Limit  int
	Offset int
}

func NewProfileService(profiles ports.ProfileRepository, storage ports.ObjectStorage, validator *media.Validator, bucket string) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		storage:   storage,
		validator: validator,
		bucket:    bucket,
	}
}

func (s *ProfileService) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	stored, err := s.profiles.Create(ctx, profile)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProfileAlreadyExists
		}
		return nil, err
	}
	return stored, nil
}

func (s *ProfileService) Update(ctx context.Context, accountID uuid.UUID, updates *domain.Profile) (*domain.Profile, error) {
	existing, err := s.profiles.FindByAccount(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	updates.ID = existing.ID
	stored, err := s.profiles.Update(ctx, updates)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return stored, nil
}

func (s *ProfileService) GetByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profiles.FindByAccount(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Search(ctx context.Context, filter domain.ProfileSearchFilter, limit, offset int) (*ProfileSearchResult, error) {
	nLimit, nOffset := normalizePagination(limit, offset)

	items, err := s.profiles.Search(ctx, filter, nLimit, nOffset)
	if err != nil {
		return nil, err
	}
	total, err := s.profiles.CountSearch(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ProfileSearchResult{Items: items, Total: total, Limit: nLimit, Offset: nOffset}, nil
}

// UploadPhoto validates the upload, stores it, and records the photo row.
func (s *ProfileService) UploadPhoto(ctx context.Context, accountID uuid.UUID, upload media.Upload, caption *string, isPrimary bool) (*domain.ProfilePhoto, error) {
	profile, err := s.profiles.FindByAccount(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	photo, err := s.validator.Validate(upload)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("profiles/%s/%d%s", profile.ID, time.Now().UnixNano(), photo.Extension)
	url, err := s.storage.Upload(ctx, s.bucket, objectName, photo.ContentType, bytes.NewReader(photo.Bytes), int64(len(photo.Bytes)))
	if err != nil {
		return nil, err
	}

	return s.profiles.AddPhoto(ctx, profile.ID, url, caption, isPrimary)
}

func (s *ProfileService) ListPhotos(ctx context.Context, accountID uuid.UUID) ([]domain.ProfilePhoto, error) {
	profile, err := s.profiles.FindByAccount(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return s.profiles.ListPhotos(ctx, profile.ID)
}

func (s *ProfileService) RemovePhoto(ctx context.Context, accountID, photoID uuid.UUID) error {
	profile, err := s.profiles.FindByAccount(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return ErrProfileNotFound
		}
		return err
	}
	if err := s.profiles.RemovePhoto(ctx, profile.ID, photoID); err != nil {
		if isNotFound(err) {
			return ErrPhotoNotFound
		}
		return err
	}
	return nil
}

func validateProfile(profile *domain.Profile) error {
	if profile == nil {
		return ErrProfileInvalid
	}
	if profile.Gender != "male" && profile.Gender != "female" && profile.Gender != "other" {
		return fmt.Errorf("%w: gender must be male, female, or other", ErrProfileInvalid)
	}
	if profile.DateOfBirth.IsZero() || profile.DateOfBirth.After(time.Now().AddDate(-18, 0, 0)) {
		return fmt.Errorf("%w: member must be at least 18", ErrProfileInvalid)
	}
	return nil
}

func normalizePagination(limit, offset int) (int, int) {
	const (
		defaultLimit = 20
		maxLimit     = 100
	)

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
