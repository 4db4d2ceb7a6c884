package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/lumenweb/api/internal/domain"
	pfirestore "github.com/lumenweb/api/internal/platform/firestore"
)

const contentCollection = "contentPages"

type contentDocument struct {
	Slug        string     `firestore:"slug"`
	Title       string     `firestore:"title"`
	Summary     string     `firestore:"summary,omitempty"`
	BodyHTML    string     `firestore:"bodyHtml"`
	Published   bool       `firestore:"published"`
	PublishedAt *time.Time `firestore:"publishedAt,omitempty"`
	UpdatedAt   time.Time  `firestore:"updatedAt"`
}

// ContentRepository serves published marketing pages from Firestore.
type ContentRepository struct {
	base *pfirestore.BaseRepository[contentDocument]
}

// NewContentRepository constructs a Firestore-backed content repository.
func NewContentRepository(provider *pfirestore.Provider) (*ContentRepository, error) {
	if provider == nil {
		return nil, errors.New("content repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[contentDocument](provider, contentCollection)
	return &ContentRepository{base: base}, nil
}

// FindBySlug loads a published page by slug. Unpublished pages behave as missing.
func (r *ContentRepository) FindBySlug(ctx context.Context, slug string) (domain.ContentPage, error) {
	if r == nil || r.base == nil {
		return domain.ContentPage{}, errors.New("content repository not initialised")
	}
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if normalized == "" {
		return domain.ContentPage{}, errors.New("slug is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", normalized).
			Where("published", "==", true).
			Limit(1)
	})
	if err != nil {
		return domain.ContentPage{}, err
	}
	if len(docs) == 0 {
		return domain.ContentPage{}, pfirestore.WrapError("contentPages.findBySlug",
			status.Errorf(codes.NotFound, "content page %s not found", normalized))
	}

	page := toDomainContentPage(docs[0].Data)
	page.ID = docs[0].ID
	return page, nil
}

// ListPublished returns published pages ordered by most recent publication.
func (r *ContentRepository) ListPublished(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.ContentPage], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.ContentPage]{}, errors.New("content repository not initialised")
	}

	limit := clampPageSize(pager.PageSize)
	after, err := decodePageToken(pager.PageToken)
	if err != nil {
		return domain.CursorPage[domain.ContentPage]{}, err
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("published", "==", true).
			OrderBy("publishedAt", firestore.Desc)
		if !after.IsZero() {
			q = q.StartAfter(after)
		}
		return q.Limit(limit + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.ContentPage]{}, err
	}

	pages := make([]domain.ContentPage, 0, len(docs))
	for _, doc := range docs {
		page := toDomainContentPage(doc.Data)
		page.ID = doc.ID
		pages = append(pages, page)
	}
	return pageOf(pages, limit, func(p domain.ContentPage) time.Time {
		if p.PublishedAt != nil {
			return *p.PublishedAt
		}
		return p.UpdatedAt
	}), nil
}

func toDomainContentPage(doc contentDocument) domain.ContentPage {
	return domain.ContentPage{
		Slug:        doc.Slug,
		Title:       doc.Title,
		Summary:     doc.Summary,
		BodyHTML:    doc.BodyHTML,
		Published:   doc.Published,
		PublishedAt: doc.PublishedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
