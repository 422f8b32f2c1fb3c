// Package discounts personalises the recommended price for a customer.
package discounts

import (
	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/pricing"
)

const (
	// MaxDiscountPercent caps the combined discount.
	MaxDiscountPercent = 25
	// MinHealthyMargin is the margin below which non-price incentives are offered.
	MinHealthyMargin = 0.20
	// SurplusQuantity is the on-hand level above which a material counts as surplus.
	SurplusQuantity = 50

	goldLoyaltyPercent   = 10
	silverLoyaltyPercent = 5
	surplusPercent       = 5
	offSeasonPercent     = 5
	paymentPenalty       = -2
)

const (
	ReasonGoldLoyalty    = "Gold Loyalty Reward (10%)"
	ReasonSilverLoyalty  = "Silver Loyalty Reward (5%)"
	ReasonSurplus        = "Inventory Surplus Clearance (5%)"
	ReasonOffSeason      = "Off-season promotion (5%)"
	ReasonPaymentPenalty = "Payment Reliability adjustment (-2%)"
)

// Alternatives are the non-price incentives attached when margin runs thin.
var Alternatives = []string{"Free Greeting Card", "Premium Gift Wrapping", "Priority Delivery"}

// Recommendation is the personalised offer for one product and customer.
type Recommendation struct {
	DiscountPercentage  int      `json:"discountPercentage"`
	Reasons             []string `json:"reasons"`
	Alternatives        []string `json:"alternatives"`
	OptimizedPrice      float64  `json:"optimizedPrice"`
	OriginalPrice       float64  `json:"originalPrice"`
	MarginAfterDiscount string   `json:"marginAfterDiscount"`
}

// Recommend applies the discount ladder to the recommended tier of quote.
// Rules fire in order: loyalty, surplus, off-season, payment reliability.
func Recommend(product masterdata.Product, customer masterdata.Customer, materials []masterdata.Material, quote pricing.Recommendation) Recommendation {
	var (
		pct     int
		reasons = make([]string, 0, 4)
	)

	switch customer.LoyaltyLevel {
	case masterdata.LoyaltyGold:
		pct += goldLoyaltyPercent
		reasons = append(reasons, ReasonGoldLoyalty)
	case masterdata.LoyaltySilver:
		pct += silverLoyaltyPercent
		reasons = append(reasons, ReasonSilverLoyalty)
	}

	if hasSurplus(materials) {
		pct += surplusPercent
		reasons = append(reasons, ReasonSurplus)
	}

	if pricing.IsOffSeason(quote.Factors.SeasonalFactor) {
		pct += offSeasonPercent
		reasons = append(reasons, ReasonOffSeason)
	}

	if customer.PaymentBehavior == masterdata.PaymentAverage {
		pct += paymentPenalty
		reasons = append(reasons, ReasonPaymentPenalty)
	}

	pct = clamp(pct, 0, MaxDiscountPercent)

	original := quote.Recommended.Price
	final := original * (1 - float64(pct)/100)
	margin := 0.0
	if final > 0 {
		margin = (final - quote.ProductionCost) / final
	}

	alternatives := []string{}
	if margin < MinHealthyMargin {
		alternatives = append(alternatives, Alternatives...)
	}

	return Recommendation{
		DiscountPercentage:  pct,
		Reasons:             reasons,
		Alternatives:        alternatives,
		OptimizedPrice:      pricing.Round2(final),
		OriginalPrice:       original,
		MarginAfterDiscount: pricing.PercentString(margin),
	}
}

func hasSurplus(materials []masterdata.Material) bool {
	for _, m := range materials {
		if m.Quantity > SurplusQuantity {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
