package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// CursorPage wraps a page of results together with the token for the next page.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}

// PackageTier identifies one of the three fixed website packages sold by the studio.
type PackageTier string

const (
	// PackageStatic is the entry tier: a static brochure site.
	PackageStatic PackageTier = "static"
	// PackageDynamic adds CMS-backed dynamic content.
	PackageDynamic PackageTier = "dynamic"
	// PackageEcommerce adds a storefront with product management.
	PackageEcommerce PackageTier = "ecommerce"
)

// ErrUnknownPackageTier is returned when a package name does not match a sold tier.
var ErrUnknownPackageTier = errors.New("domain: unknown package tier")

// ParsePackageTier validates a raw package name against the sold tiers.
func ParsePackageTier(raw string) (PackageTier, error) {
	switch PackageTier(strings.ToLower(strings.TrimSpace(raw))) {
	case PackageStatic:
		return PackageStatic, nil
	case PackageDynamic:
		return PackageDynamic, nil
	case PackageEcommerce:
		return PackageEcommerce, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPackageTier, raw)
}

// DurationKey identifies a billing period for recurring charges.
type DurationKey string

const (
	// DurationMonthly bills month to month with no discount.
	DurationMonthly DurationKey = "monthly"
	// DurationYearly bills one year upfront.
	DurationYearly DurationKey = "yearly"
	// DurationTwoYear bills two years upfront.
	DurationTwoYear DurationKey = "twoYear"
	// DurationThreeYear bills three years upfront.
	DurationThreeYear DurationKey = "threeYear"
)

// ErrUnknownDuration is returned when a duration name is not a supported billing period.
var ErrUnknownDuration = errors.New("domain: unknown billing duration")

// ParseDuration validates a raw duration name against the supported billing periods.
func ParseDuration(raw string) (DurationKey, error) {
	switch DurationKey(strings.TrimSpace(raw)) {
	case DurationMonthly:
		return DurationMonthly, nil
	case DurationYearly:
		return DurationYearly, nil
	case DurationTwoYear:
		return DurationTwoYear, nil
	case DurationThreeYear:
		return DurationThreeYear, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDuration, raw)
}

// AddonKey identifies an optional feature sold atop a package. The set is closed:
// selections are validated at construction time so a typo surfaces as an error
// instead of silently pricing at zero.
type AddonKey string

const (
	AddonExtraPage            AddonKey = "extraPage"
	AddonExtraProduct         AddonKey = "extraProduct"
	AddonExtraPaymentGateway  AddonKey = "extraPaymentGateway"
	AddonEmailAccount         AddonKey = "emailAccount"
	AddonLogoDesign           AddonKey = "logoDesign"
	AddonContactForms         AddonKey = "contactForms"
	AddonLiveChat             AddonKey = "liveChat"
	AddonMultiLanguageSupport AddonKey = "multiLanguageSupport"
	AddonSearchFunctionality  AddonKey = "searchFunctionality"
	AddonImageGallery         AddonKey = "imageGallery"
	AddonVideoIntegration     AddonKey = "videoIntegration"
	AddonBookingSystem        AddonKey = "bookingAppointmentSystem"
	AddonSocialMedia          AddonKey = "socialMediaIntegration"
	AddonGoogleMaps           AddonKey = "googleMapsIntegration"
)

// ErrUnknownAddon is returned when an add-on name does not match the catalogued set.
var ErrUnknownAddon = errors.New("domain: unknown add-on")

var knownAddons = map[AddonKey]struct{}{
	AddonExtraPage:            {},
	AddonExtraProduct:         {},
	AddonExtraPaymentGateway:  {},
	AddonEmailAccount:         {},
	AddonLogoDesign:           {},
	AddonContactForms:         {},
	AddonLiveChat:             {},
	AddonMultiLanguageSupport: {},
	AddonSearchFunctionality:  {},
	AddonImageGallery:         {},
	AddonVideoIntegration:     {},
	AddonBookingSystem:        {},
	AddonSocialMedia:          {},
	AddonGoogleMaps:           {},
}

// ParseAddonKey validates a raw add-on name against the catalogued set.
func ParseAddonKey(raw string) (AddonKey, error) {
	key := AddonKey(strings.TrimSpace(raw))
	if _, ok := knownAddons[key]; ok {
		return key, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAddon, raw)
}

// PackagePrice holds the one-time setup and base monthly price for a package tier.
type PackagePrice struct {
	Setup   float64
	Monthly float64
}

// PriceCatalog is the per-currency table of base prices and discount percentages.
// Any field may be absent; consumers fall back to documented defaults rather than
// treating missing entries as zero.
type PriceCatalog struct {
	Currency  string
	Packages  map[PackageTier]PackagePrice
	Addons    map[AddonKey]float64
	Discounts map[DurationKey]float64
	UpdatedAt time.Time
}

// Selection is the cart-like state produced by the pricing configurator.
type Selection struct {
	Package         PackageTier
	HostingDuration DurationKey
	EmailDuration   DurationKey
	EmailAccounts   int
	ProductCount    int
	SelectedPages   []string
	CustomPages     []string
	Addons          []AddonKey
}

// ProjectStatus enumerates lifecycle states for client projects.
type ProjectStatus string

const (
	// ProjectStatusPending indicates the project was submitted and awaits kickoff.
	ProjectStatusPending ProjectStatus = "pending"
	// ProjectStatusActive indicates work is in progress.
	ProjectStatusActive ProjectStatus = "active"
	// ProjectStatusCompleted indicates the site has been delivered.
	ProjectStatusCompleted ProjectStatus = "completed"
	// ProjectStatusCancelled indicates the project was cancelled before delivery.
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// Project captures a submitted website project together with the quoted fees.
type Project struct {
	ID         string
	UserID     string
	Name       string
	Status     ProjectStatus
	Currency   string
	Selection  Selection
	SetupFee   float64
	MonthlyFee float64
	InvoiceID  string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvoiceStatus enumerates billing states for invoices.
type InvoiceStatus string

const (
	// InvoiceStatusPending indicates payment has not been received.
	InvoiceStatusPending InvoiceStatus = "pending"
	// InvoiceStatusPaid indicates payment has been recorded.
	InvoiceStatusPaid InvoiceStatus = "paid"
	// InvoiceStatusCancelled indicates the invoice was voided.
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceLineItem is a single display row on an invoice.
type InvoiceLineItem struct {
	Label           string
	Amount          float64
	Recurring       bool
	BilledAsOneTime bool
}

// Invoice records the amounts billed when a project is created.
type Invoice struct {
	ID         string
	Number     string
	UserID     string
	ProjectID  string
	Currency   string
	SetupFee   float64
	MonthlyFee float64
	Lines      []InvoiceLineItem
	Status     InvoiceStatus
	DueDate    time.Time
	PaidAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TicketStatus enumerates support ticket lifecycle states.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketMessage is a single message on a support ticket thread.
type TicketMessage struct {
	ID        string
	AuthorID  string
	FromStaff bool
	Body      string
	CreatedAt time.Time
}

// SupportTicket captures a client support request and its message thread.
type SupportTicket struct {
	ID        string
	UserID    string
	ProjectID string
	Subject   string
	Status    TicketStatus
	Messages  []TicketMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserProfile stores portal account details keyed by the Firebase UID.
type UserProfile struct {
	UID               string
	Email             string
	DisplayName       string
	Company           string
	Phone             string
	PreferredCurrency string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ContentPage is a published marketing or blog page served on the public site.
type ContentPage struct {
	ID          string
	Slug        string
	Title       string
	Summary     string
	BodyHTML    string
	Published   bool
	PublishedAt *time.Time
	UpdatedAt   time.Time
}
