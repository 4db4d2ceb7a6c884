package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/platform/money"
	"github.com/lumenweb/api/internal/repositories"
)

var (
	// ErrProfileInvalidInput is returned when a command carries invalid fields.
	ErrProfileInvalidInput = errors.New("profile: invalid input")
	// ErrProfileNotFound is returned when updating a profile that was never provisioned.
	ErrProfileNotFound = errors.New("profile: not found")
)

// UserServiceDeps bundles constructor inputs for the user service.
type UserServiceDeps struct {
	Users  repositories.UserRepository
	Clock  func() time.Time
	Logger func(context.Context, string, map[string]any)
}

type userService struct {
	users  repositories.UserRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewUserService constructs a UserService.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Users == nil {
		return nil, errors.New("user service requires user repository")
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &userService{
		users:  deps.Users,
		now:    func() time.Time { return now().UTC() },
		logger: logger,
	}, nil
}

// GetOrProvision returns the stored profile, creating it from the verified
// identity on first portal access.
func (s *userService) GetOrProvision(ctx context.Context, cmd ProvisionProfileCommand) (UserProfile, error) {
	uid := strings.TrimSpace(cmd.UID)
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrProfileInvalidInput)
	}

	profile, err := s.users.FindByUID(ctx, uid)
	if err == nil {
		return profile, nil
	}
	var repoErr repositories.RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		return UserProfile{}, fmt.Errorf("profile: find %s: %w", uid, err)
	}

	now := s.now()
	created, err := s.users.Upsert(ctx, domain.UserProfile{
		UID:         uid,
		Email:       strings.TrimSpace(cmd.Email),
		DisplayName: strings.TrimSpace(cmd.DisplayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return UserProfile{}, fmt.Errorf("profile: provision %s: %w", uid, err)
	}
	s.logger(ctx, "profile_provisioned", map[string]any{"uid": uid})
	return created, nil
}

// UpdateProfile applies partial updates to the stored profile.
func (s *userService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error) {
	uid := strings.TrimSpace(cmd.UID)
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrProfileInvalidInput)
	}

	profile, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return UserProfile{}, ErrProfileNotFound
		}
		return UserProfile{}, fmt.Errorf("profile: find %s: %w", uid, err)
	}

	if cmd.DisplayName != nil {
		name := strings.TrimSpace(*cmd.DisplayName)
		if name == "" {
			return UserProfile{}, fmt.Errorf("%w: display name cannot be empty", ErrProfileInvalidInput)
		}
		profile.DisplayName = name
	}
	if cmd.Company != nil {
		profile.Company = strings.TrimSpace(*cmd.Company)
	}
	if cmd.Phone != nil {
		profile.Phone = strings.TrimSpace(*cmd.Phone)
	}
	if cmd.PreferredCurrency != nil {
		raw := strings.TrimSpace(*cmd.PreferredCurrency)
		if raw == "" {
			profile.PreferredCurrency = ""
		} else {
			code, err := money.NormalizeCode(raw)
			if err != nil {
				return UserProfile{}, fmt.Errorf("%w: %q is not a valid currency code", ErrProfileInvalidInput, raw)
			}
			profile.PreferredCurrency = code
		}
	}

	saved, err := s.users.Upsert(ctx, profile)
	if err != nil {
		return UserProfile{}, fmt.Errorf("profile: update %s: %w", uid, err)
	}
	return saved, nil
}
