package service

import (
	"context"
	"errors"
	"strings"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
)

var ErrLookupCategoryUnknown = errors.New("unknown lookup category")

type MetadataService struct {
	metadata ports.MetadataRepository
}

func NewMetadataService(metadataRepo ports.MetadataRepository) *MetadataService {
	return &MetadataService{metadata: metadataRepo}
}

func (s *MetadataService) Lookup(ctx context.Context, category string) ([]domain.LookupValue, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return nil, ErrLookupCategoryUnknown
	}
	values, err := s.metadata.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrLookupCategoryUnknown
	}
	return values, nil
}

func (s *MetadataService) Categories(ctx context.Context) ([]string, error) {
	return s.metadata.ListCategories(ctx)
}
