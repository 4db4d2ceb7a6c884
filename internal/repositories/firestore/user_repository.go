package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
	pfirestore "github.com/lumenweb/api/internal/platform/firestore"
)

const userCollection = "users"

type userDocument struct {
	UID               string    `firestore:"uid"`
	Email             string    `firestore:"email"`
	DisplayName       string    `firestore:"displayName"`
	Company           string    `firestore:"company,omitempty"`
	Phone             string    `firestore:"phone,omitempty"`
	PreferredCurrency string    `firestore:"preferredCurrency,omitempty"`
	CreatedAt         time.Time `firestore:"createdAt"`
	UpdatedAt         time.Time `firestore:"updatedAt"`
}

// UserRepository persists portal account profiles keyed by the Firebase UID.
type UserRepository struct {
	base *pfirestore.BaseRepository[userDocument]
}

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[userDocument](provider, userCollection)
	return &UserRepository{base: base}, nil
}

// FindByUID loads the profile for the given Firebase UID.
func (r *UserRepository) FindByUID(ctx context.Context, uid string) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return domain.UserProfile{}, errors.New("user id is required")
	}

	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.UserProfile{}, err
	}
	profile := toDomainUserProfile(doc.Data)
	profile.UID = doc.ID
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = doc.CreateTime
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = doc.UpdateTime
	}
	return profile, nil
}

// Upsert stores the profile under its UID.
func (r *UserRepository) Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	id := strings.TrimSpace(profile.UID)
	if id == "" {
		return domain.UserProfile{}, errors.New("user id is required")
	}

	now := time.Now().UTC()
	doc := fromDomainUserProfile(profile, now)
	if err := r.base.Set(ctx, id, doc); err != nil {
		return domain.UserProfile{}, err
	}
	saved := toDomainUserProfile(doc)
	saved.UID = id
	return saved, nil
}

func toDomainUserProfile(doc userDocument) domain.UserProfile {
	return domain.UserProfile{
		UID:               doc.UID,
		Email:             strings.TrimSpace(doc.Email),
		DisplayName:       strings.TrimSpace(doc.DisplayName),
		Company:           strings.TrimSpace(doc.Company),
		Phone:             strings.TrimSpace(doc.Phone),
		PreferredCurrency: strings.ToUpper(strings.TrimSpace(doc.PreferredCurrency)),
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}

func fromDomainUserProfile(profile domain.UserProfile, now time.Time) userDocument {
	doc := userDocument{
		UID:               strings.TrimSpace(profile.UID),
		Email:             strings.ToLower(strings.TrimSpace(profile.Email)),
		DisplayName:       strings.TrimSpace(profile.DisplayName),
		Company:           strings.TrimSpace(profile.Company),
		Phone:             strings.TrimSpace(profile.Phone),
		PreferredCurrency: strings.ToUpper(strings.TrimSpace(profile.PreferredCurrency)),
		CreatedAt:         profile.CreatedAt,
		UpdatedAt:         now,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	return doc
}
