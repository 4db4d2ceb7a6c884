package services

import (
	"context"
	"fmt"

	domain "github.com/lumenweb/api/internal/domain"
)

// QuoteEngine derives a deterministic monetary quote from a price catalog and a
// configurator selection. It performs no I/O, holds no mutable state, and never
// fails: malformed or missing catalog entries degrade to documented fallbacks and
// derived quantities are clamped at zero. It is safe for concurrent use.
type QuoteEngine struct {
	logger func(context.Context, string, map[string]any)
}

// QuoteEngineDeps bundles constructor inputs for the quote engine.
type QuoteEngineDeps struct {
	// Logger receives structured notes when the engine applies a defensive
	// fallback (unknown tier, out-of-range discount). Optional.
	Logger func(context.Context, string, map[string]any)
}

// NewQuoteEngine constructs a quote engine.
func NewQuoteEngine(deps QuoteEngineDeps) *QuoteEngine {
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &QuoteEngine{logger: logger}
}

// ResolveAddonPrice returns the catalog unit price for the add-on, falling back to
// the rate-card default when the catalog has no entry. Unknown keys price at zero.
func ResolveAddonPrice(catalog domain.PriceCatalog, key domain.AddonKey) float64 {
	if price, ok := catalog.Addons[key]; ok && price >= 0 {
		return price
	}
	if price, ok := defaultAddonPrices[key]; ok {
		return price
	}
	return 0
}

// DurationTermsFor returns the billing multiplier and percent discount for the
// duration. Unknown durations behave as monthly: multiplier 1, discount 0.
func DurationTermsFor(catalog domain.PriceCatalog, key domain.DurationKey) domain.DurationTerms {
	multiplier, ok := durationMultipliers[key]
	if !ok {
		return domain.DurationTerms{Multiplier: 1, DiscountPercent: 0}
	}
	if key == domain.DurationMonthly {
		return domain.DurationTerms{Multiplier: 1, DiscountPercent: 0}
	}
	percent, ok := catalog.Discounts[key]
	if !ok {
		percent = defaultDiscountPercents[key]
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return domain.DurationTerms{Multiplier: multiplier, DiscountPercent: percent}
}

// RecurringCost applies the duration multiplier and discount to a base monthly
// amount. No rounding happens here; formatting is a display concern.
func RecurringCost(baseMonthly float64, key domain.DurationKey, catalog domain.PriceCatalog) float64 {
	terms := DurationTermsFor(catalog, key)
	return baseMonthly * terms.Multiplier * (1 - terms.DiscountPercent/100)
}

// ComputeEmailCost prices email hosting for the given account count and duration.
// A zero quantity always costs zero regardless of duration.
func ComputeEmailCost(catalog domain.PriceCatalog, quantity int, key domain.DurationKey) domain.EmailCost {
	perAccount := ResolveAddonPrice(catalog, domain.AddonEmailAccount)
	terms := DurationTermsFor(catalog, key)
	if quantity < 0 {
		quantity = 0
	}
	cost := domain.EmailCost{
		PerAccount:      perAccount,
		Quantity:        quantity,
		Duration:        key,
		DiscountPercent: terms.DiscountPercent,
	}
	if quantity > 0 {
		cost.TotalCost = RecurringCost(perAccount*float64(quantity), key, catalog)
	}
	return cost
}

// ComputePagesCost counts billable pages beyond the package's free allowance.
// Selected and custom page lists are counted additively; duplicates across the
// two lists are not collapsed.
func ComputePagesCost(tier domain.PackageTier, selectedPages, customPages []string, catalog domain.PriceCatalog) domain.PagesCost {
	total := len(selectedPages) + len(customPages)
	free := freePageAllowance(tier)
	extra := total - free
	if extra < 0 {
		extra = 0
	}
	return domain.PagesCost{
		TotalPages:     total,
		FreePages:      free,
		ExtraPages:     extra,
		ExtraPagesCost: float64(extra) * ResolveAddonPrice(catalog, domain.AddonExtraPage),
	}
}

// ComputeProductsCost prices product overage for the e-commerce tier. The second
// return value is false for every other tier: product logic does not apply there
// and the result must be ignored, not merely zeroed.
func ComputeProductsCost(tier domain.PackageTier, productCount int, catalog domain.PriceCatalog) (domain.ProductsCost, bool) {
	if tier != domain.PackageEcommerce {
		return domain.ProductsCost{}, false
	}
	if productCount < 0 {
		productCount = 0
	}
	extra := productCount - freeProducts
	if extra < 0 {
		extra = 0
	}
	return domain.ProductsCost{
		TotalProducts:     productCount,
		FreeProducts:      freeProducts,
		ExtraProducts:     extra,
		ExtraProductsCost: float64(extra) * ResolveAddonPrice(catalog, domain.AddonExtraProduct),
	}, true
}

// ComputeAddonsCost sums the unit prices of the selected add-ons. Names outside
// the catalogued set contribute zero; selection construction is expected to have
// rejected them already.
func ComputeAddonsCost(addons []domain.AddonKey, catalog domain.PriceCatalog) float64 {
	var total float64
	for _, key := range addons {
		total += ResolveAddonPrice(catalog, key)
	}
	return total
}

// ComputeQuote prices the full selection against the catalog. Calling it twice
// with identical inputs yields identical output.
func (e *QuoteEngine) ComputeQuote(ctx context.Context, catalog domain.PriceCatalog, sel domain.Selection) domain.Quote {
	tier := sel.Package
	if _, known := defaultPackagePrices[tier]; !known {
		// An unset or unknown package prices at the static tier. The UI is
		// expected to block submission until a package is chosen.
		e.logger(ctx, "quote_package_fallback", map[string]any{"package": string(sel.Package)})
		tier = domain.PackageStatic
	}

	pkg := packagePrice(catalog, tier)
	pages := ComputePagesCost(tier, sel.SelectedPages, sel.CustomPages, catalog)
	email := ComputeEmailCost(catalog, sel.EmailAccounts, sel.EmailDuration)
	addons := ComputeAddonsCost(sel.Addons, catalog)

	hostingTerms := DurationTermsFor(catalog, sel.HostingDuration)
	hostingTotal := RecurringCost(pkg.Monthly, sel.HostingDuration, catalog)

	setupFee := pkg.Setup + pages.ExtraPagesCost + addons + email.TotalCost

	quote := domain.Quote{
		Currency:        catalog.Currency,
		MonthlyFee:      pkg.Monthly,
		HostingTotal:    hostingTotal,
		HostingDiscount: hostingTerms.DiscountPercent,
		EmailDiscount:   email.DiscountPercent,
		Pages:           pages,
		Email:           email,
		Addons:          addons,
	}

	breakdown := make([]domain.QuoteLineItem, 0, len(sel.Addons)+5)
	breakdown = append(breakdown, domain.QuoteLineItem{
		Label:  fmt.Sprintf("%s package setup", tierLabel(tier)),
		Amount: pkg.Setup,
	})
	if pages.ExtraPages > 0 {
		breakdown = append(breakdown, domain.QuoteLineItem{
			Label:  fmt.Sprintf("Extra pages (%d)", pages.ExtraPages),
			Amount: pages.ExtraPagesCost,
		})
	}

	if products, ok := ComputeProductsCost(tier, sel.ProductCount, catalog); ok {
		setupFee += products.ExtraProductsCost
		quote.Products = &products
		if products.ExtraProducts > 0 {
			breakdown = append(breakdown, domain.QuoteLineItem{
				Label:  fmt.Sprintf("Extra products (%d)", products.ExtraProducts),
				Amount: products.ExtraProductsCost,
			})
		}
	}

	for _, key := range sel.Addons {
		price := ResolveAddonPrice(catalog, key)
		if price <= 0 {
			continue
		}
		breakdown = append(breakdown, domain.QuoteLineItem{
			Label:  addonLabel(key),
			Amount: price,
		})
	}

	if email.TotalCost > 0 {
		// Email hosting is recurring but is invoiced inside the one-time setup
		// total at project creation. The flag keeps that visible downstream.
		breakdown = append(breakdown, domain.QuoteLineItem{
			Label:           fmt.Sprintf("Email hosting (%d accounts, %s)", email.Quantity, durationLabel(email.Duration)),
			Amount:          email.TotalCost,
			Recurring:       true,
			BilledAsOneTime: true,
		})
	}

	breakdown = append(breakdown, domain.QuoteLineItem{
		Label:     fmt.Sprintf("Hosting (%s)", durationLabel(sel.HostingDuration)),
		Amount:    hostingTotal,
		Recurring: true,
	})

	quote.SetupFee = setupFee
	quote.Breakdown = breakdown
	return quote
}

func packagePrice(catalog domain.PriceCatalog, tier domain.PackageTier) domain.PackagePrice {
	if price, ok := catalog.Packages[tier]; ok {
		return price
	}
	return defaultPackagePrices[tier]
}

func freePageAllowance(tier domain.PackageTier) int {
	switch tier {
	case domain.PackageDynamic:
		return freePagesDynamic
	case domain.PackageEcommerce:
		return freePagesEcommerce
	default:
		return freePagesStatic
	}
}

func tierLabel(tier domain.PackageTier) string {
	switch tier {
	case domain.PackageDynamic:
		return "Dynamic"
	case domain.PackageEcommerce:
		return "E-commerce"
	default:
		return "Static"
	}
}

func durationLabel(key domain.DurationKey) string {
	switch key {
	case domain.DurationYearly:
		return "yearly"
	case domain.DurationTwoYear:
		return "2 years"
	case domain.DurationThreeYear:
		return "3 years"
	default:
		return "monthly"
	}
}

var addonDisplayNames = map[domain.AddonKey]string{
	domain.AddonExtraPage:            "Extra page",
	domain.AddonExtraProduct:         "Extra product",
	domain.AddonExtraPaymentGateway:  "Extra payment gateway",
	domain.AddonEmailAccount:         "Email account",
	domain.AddonLogoDesign:           "Logo design",
	domain.AddonContactForms:         "Contact forms",
	domain.AddonLiveChat:             "Live chat",
	domain.AddonMultiLanguageSupport: "Multi-language support",
	domain.AddonSearchFunctionality:  "Search functionality",
	domain.AddonImageGallery:         "Image gallery",
	domain.AddonVideoIntegration:     "Video integration",
	domain.AddonBookingSystem:        "Booking & appointment system",
	domain.AddonSocialMedia:          "Social media integration",
	domain.AddonGoogleMaps:           "Google Maps integration",
}

func addonLabel(key domain.AddonKey) string {
	if name, ok := addonDisplayNames[key]; ok {
		return name
	}
	return string(key)
}
