package firestore

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampPageSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

// Page tokens encode the createdAt timestamp of the last item so listings can
// resume with a StartAfter cursor without exposing raw timestamps to clients.
func encodePageToken(createdAt time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(createdAt.UTC().Format(time.RFC3339Nano)))
}

func decodePageToken(token string) (time.Time, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return time.Time{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("firestore: invalid page token: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("firestore: invalid page token: %w", err)
	}
	return parsed, nil
}

func pageOf[T any](items []T, limit int, lastCreated func(T) time.Time) domain.CursorPage[T] {
	page := domain.CursorPage[T]{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextPageToken = encodePageToken(lastCreated(page.Items[limit-1]))
	}
	return page
}
