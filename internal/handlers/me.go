package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/lumenweb/api/internal/domain"
	"github.com/lumenweb/api/internal/platform/auth"
	"github.com/lumenweb/api/internal/platform/httpx"
	"github.com/lumenweb/api/internal/services"
)

var errNoEditableFields = errors.New("no editable fields provided")

// MeHandlers exposes authenticated profile endpoints for the current user.
type MeHandlers struct {
	authn *auth.Authenticator
	users services.UserService
}

// NewMeHandlers constructs handlers enforcing Firebase authentication before
// invoking the user service.
func NewMeHandlers(authn *auth.Authenticator, users services.UserService) *MeHandlers {
	return &MeHandlers{authn: authn, users: users}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.getProfile)
	r.Patch("/", h.updateProfile)
}

func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.users != nil, "profile")
	if !ok {
		return
	}

	profile, err := h.users.GetOrProvision(ctx, services.ProvisionProfileCommand{
		UID:   identity.UID,
		Email: identity.Email,
	})
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, profilePayloadFrom(profile))
}

func (h *MeHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w, h.users != nil, "profile")
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxRequestBodySize)
	if err != nil {
		writeBodyError(w, r, err)
		return
	}

	cmd, err := parseUpdateProfileRequest(body)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	cmd.UID = identity.UID

	updated, err := h.users.UpdateProfile(ctx, cmd)
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, profilePayloadFrom(updated))
}

// parseUpdateProfileRequest accepts only the editable profile fields. Unknown
// keys are rejected so typos surface instead of silently doing nothing.
func parseUpdateProfileRequest(data []byte) (services.UpdateProfileCommand, error) {
	var cmd services.UpdateProfileCommand

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return cmd, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if len(raw) == 0 {
		return cmd, errNoEditableFields
	}

	assign := func(key string, value json.RawMessage, dst **string) error {
		var parsed string
		if err := json.Unmarshal(value, &parsed); err != nil {
			return fmt.Errorf("%s must be a string", key)
		}
		*dst = &parsed
		return nil
	}

	for key, value := range raw {
		var err error
		switch key {
		case "displayName":
			err = assign(key, value, &cmd.DisplayName)
		case "company":
			err = assign(key, value, &cmd.Company)
		case "phone":
			err = assign(key, value, &cmd.Phone)
		case "preferredCurrency":
			err = assign(key, value, &cmd.PreferredCurrency)
		default:
			err = fmt.Errorf("field %q is not editable", key)
		}
		if err != nil {
			return services.UpdateProfileCommand{}, err
		}
	}
	return cmd, nil
}

func requireIdentity(ctx context.Context, w http.ResponseWriter, serviceReady bool, name string) (*auth.Identity, bool) {
	if !serviceReady {
		httpx.WriteError(ctx, w, httpx.NewError(name+"_service_unavailable", name+" service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

type profilePayload struct {
	UID               string `json:"uid"`
	Email             string `json:"email"`
	DisplayName       string `json:"displayName,omitempty"`
	Company           string `json:"company,omitempty"`
	Phone             string `json:"phone,omitempty"`
	PreferredCurrency string `json:"preferredCurrency,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
}

func profilePayloadFrom(profile domain.UserProfile) profilePayload {
	return profilePayload{
		UID:               profile.UID,
		Email:             profile.Email,
		DisplayName:       profile.DisplayName,
		Company:           profile.Company,
		Phone:             profile.Phone,
		PreferredCurrency: profile.PreferredCurrency,
		CreatedAt:         formatTime(profile.CreatedAt),
		UpdatedAt:         formatTime(profile.UpdatedAt),
	}
}

func writeProfileError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProfileInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_profile_field", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProfileNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("profile_not_found", "profile not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("profile_error", "profile operation failed", http.StatusInternalServerError))
	}
}
