package domain

// QuoteLineItem is one display row in a quote breakdown. BilledAsOneTime marks
// conceptually recurring charges that are nevertheless folded into the one-time
// setup total at project creation (email hosting).
type QuoteLineItem struct {
	Label           string
	Amount          float64
	Recurring       bool
	BilledAsOneTime bool
}

// PagesCost reports how the page selection maps onto the package's free allowance.
type PagesCost struct {
	TotalPages     int
	FreePages      int
	ExtraPages     int
	ExtraPagesCost float64
}

// ProductsCost reports product overage charges for the e-commerce tier.
type ProductsCost struct {
	TotalProducts     int
	FreeProducts      int
	ExtraProducts     int
	ExtraProductsCost float64
}

// EmailCost reports the duration-discounted email hosting charge.
type EmailCost struct {
	TotalCost       float64
	PerAccount      float64
	Quantity        int
	Duration        DurationKey
	DiscountPercent float64
}

// DurationTerms pairs the billing multiplier with the percent discount for a duration.
type DurationTerms struct {
	Multiplier      float64
	DiscountPercent float64
}

// Quote is the deterministic monetary output of pricing a selection against a catalog.
type Quote struct {
	Currency string

	// SetupFee is the one-time total invoiced at project creation: package setup,
	// page and product overages, add-ons, and the email hosting charge.
	SetupFee float64
	// MonthlyFee is the undiscounted base recurring package price.
	MonthlyFee float64
	// HostingTotal is the duration-adjusted recurring hosting figure shown during
	// configuration. It is reported separately from SetupFee and never persisted.
	HostingTotal float64

	HostingDiscount float64
	EmailDiscount   float64

	Pages    PagesCost
	Products *ProductsCost
	Email    EmailCost
	Addons   float64

	Breakdown []QuoteLineItem
}
