package services

import domain "github.com/lumenweb/api/internal/domain"

// Fallback price points used whenever a catalog entry is absent. These mirror the
// published USD rate card; a missing field is priced at its fallback, never at zero.
var defaultPackagePrices = map[domain.PackageTier]domain.PackagePrice{
	domain.PackageStatic:    {Setup: 59, Monthly: 5},
	domain.PackageDynamic:   {Setup: 119, Monthly: 8},
	domain.PackageEcommerce: {Setup: 199, Monthly: 12},
}

var defaultAddonPrices = map[domain.AddonKey]float64{
	domain.AddonExtraPage:            3,
	domain.AddonExtraProduct:         0.2,
	domain.AddonExtraPaymentGateway:  5,
	domain.AddonEmailAccount:         2.4,
	domain.AddonLogoDesign:           15,
	domain.AddonContactForms:         2,
	domain.AddonLiveChat:             5,
	domain.AddonMultiLanguageSupport: 8,
	domain.AddonSearchFunctionality:  2.5,
	domain.AddonImageGallery:         2,
	domain.AddonVideoIntegration:     4,
	domain.AddonBookingSystem:        10,
	domain.AddonSocialMedia:          4,
	domain.AddonGoogleMaps:           3,
}

var defaultDiscountPercents = map[domain.DurationKey]float64{
	domain.DurationYearly:    10,
	domain.DurationTwoYear:   15,
	domain.DurationThreeYear: 20,
}

// Billing multipliers: yearly charges ten months for twelve, two years charge
// eighteen, three years charge twenty-five. The percent discount layers on top.
var durationMultipliers = map[domain.DurationKey]float64{
	domain.DurationMonthly:   1,
	domain.DurationYearly:    10,
	domain.DurationTwoYear:   18,
	domain.DurationThreeYear: 25,
}

// Free allowances included in each package tier.
const (
	freePagesStatic    = 5
	freePagesDynamic   = 7
	freePagesEcommerce = 10
	freeProducts       = 30
)

// DefaultCatalog returns a fully populated catalog for the given currency built
// from the fallback rate card. The catalog provider serves it when the stored
// catalog cannot be fetched.
func DefaultCatalog(currency string) domain.PriceCatalog {
	packages := make(map[domain.PackageTier]domain.PackagePrice, len(defaultPackagePrices))
	for tier, price := range defaultPackagePrices {
		packages[tier] = price
	}
	addons := make(map[domain.AddonKey]float64, len(defaultAddonPrices))
	for key, price := range defaultAddonPrices {
		addons[key] = price
	}
	discounts := make(map[domain.DurationKey]float64, len(defaultDiscountPercents))
	for key, percent := range defaultDiscountPercents {
		discounts[key] = percent
	}
	return domain.PriceCatalog{
		Currency:  currency,
		Packages:  packages,
		Addons:    addons,
		Discounts: discounts,
	}
}
