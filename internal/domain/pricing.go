package domain

import "math"

// PricingConfig holds the threshold/rate table for checkout pricing.
type PricingConfig struct {
	// FreeShippingThreshold is the subtotal that must be strictly exceeded
	// for shipping to be free.
	FreeShippingThreshold float64
	// FlatShippingFee is charged on any non-empty cart at or below the
	// threshold.
	FlatShippingFee float64
	// TaxRate is a flat fraction of the subtotal.
	TaxRate float64
}

// DefaultPricingConfig returns the storefront's observed pricing table:
// free shipping above $1000, $50 flat fee, 8% tax.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		FreeShippingThreshold: 1000,
		FlatShippingFee:       50,
		TaxRate:               0.08,
	}
}

// Breakdown is the subtotal/shipping/tax/total computation for a cart or
// order. Values are kept at full precision; rounding happens only at display
// and persist boundaries via Rounded.
type Breakdown struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeBreakdown derives the full price breakdown from a subtotal. It is a
// pure function: the cart view, the checkout view and order persistence all
// call it and must agree exactly.
//
// An empty (zero-subtotal) cart never incurs shipping; free shipping requires
// the subtotal to strictly exceed the threshold.
func ComputeBreakdown(subtotal float64, cfg PricingConfig) Breakdown {
	var shipping float64
	if subtotal > 0 && subtotal <= cfg.FreeShippingThreshold {
		shipping = cfg.FlatShippingFee
	}

	tax := subtotal * cfg.TaxRate

	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}

// Round2 rounds a monetary value to two decimals. Used only where values
// leave the computation: display and persistence.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Rounded returns a copy with every field rounded to currency precision.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		Subtotal: Round2(b.Subtotal),
		Shipping: Round2(b.Shipping),
		Tax:      Round2(b.Tax),
		Total:    Round2(b.Total),
	}
}
