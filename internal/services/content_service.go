package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/repositories"
)

// ErrPageNotFound is returned when no published page matches the slug.
var ErrPageNotFound = errors.New("content: page not found")

// ContentServiceDeps bundles constructor inputs for the content service.
type ContentServiceDeps struct {
	Content repositories.ContentRepository
}

type contentService struct {
	content repositories.ContentRepository
}

// NewContentService constructs a ContentService.
func NewContentService(deps ContentServiceDeps) (ContentService, error) {
	if deps.Content == nil {
		return nil, errors.New("content service requires content repository")
	}
	return &contentService{content: deps.Content}, nil
}

func (s *contentService) PageBySlug(ctx context.Context, slug string) (ContentPage, error) {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if normalized == "" {
		return ContentPage{}, ErrPageNotFound
	}
	page, err := s.content.FindBySlug(ctx, normalized)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return ContentPage{}, ErrPageNotFound
		}
		return ContentPage{}, fmt.Errorf("content: find %s: %w", normalized, err)
	}
	return page, nil
}

func (s *contentService) ListPages(ctx context.Context, pager Pagination) (domain.CursorPage[ContentPage], error) {
	page, err := s.content.ListPublished(ctx, pager)
	if err != nil {
		return domain.CursorPage[ContentPage]{}, fmt.Errorf("content: list: %w", err)
	}
	return page, nil
}
