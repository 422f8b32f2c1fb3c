// Package health rolls orders, catalog and customers into a business health score.
package health

import (
	"math"
	"sort"

	"github.com/ordelix/ordelix/internal/fulfillment"
	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/pricing"
	"github.com/ordelix/ordelix/internal/settings"
)

const (
	baselineScore = 50.0

	maxMarginBonus    = 20.0
	marginWeight      = 40.0
	maxPreOrderDrag   = 20.0
	preOrderWeight    = 50.0
	maxLoyaltyBonus   = 15.0
	loyaltyWeight     = 30.0
	maxLowStockDrag   = 15.0
	lowStockPerItem   = 3.0
	topProductsLimit  = 3
	suggestionsLimit  = 3
	unknownProduct    = "Unknown"
	lowMarginLimit    = 0.25
	preOrderRateLimit = 0.20
	loyaltyRateLimit  = 0.20
	lowStockItemLimit = 3
)

// SuggestionType classifies a suggestion.
type SuggestionType string

const (
	SuggestionProfit    SuggestionType = "profit"
	SuggestionStock     SuggestionType = "stock"
	SuggestionGrowth    SuggestionType = "growth"
	SuggestionInventory SuggestionType = "inventory"
	SuggestionPositive  SuggestionType = "positive"
)

var suggestionText = map[SuggestionType]string{
	SuggestionProfit:    "Low Profit Margins detected. Review your labor hours or material providers to reduce production costs.",
	SuggestionStock:     "High Pre-order Rate. Increase safety stock levels for your most popular items to prevent delivery delays.",
	SuggestionGrowth:    "Low Customer Retention. Consider a loyalty program or follow-up discount for first-time buyers.",
	SuggestionInventory: "Multiple items are low in stock. Restock soon to avoid missing out on potential sales.",
	SuggestionPositive:  "Your business health is looking great! Maintain current efficiency levels.",
}

// Pricer is the cost oracle used to re-price fulfilled orders.
type Pricer interface {
	Recommend(product masterdata.Product, materials masterdata.MaterialIndex) pricing.Recommendation
}

// Input is the snapshot the score is computed from.
type Input struct {
	Orders    []fulfillment.Order
	Products  []masterdata.Product
	Materials []masterdata.Material
	Customers []masterdata.Customer
	Settings  settings.Settings
}

// Metrics bundles the headline figures.
type Metrics struct {
	Revenue        float64 `json:"revenue"`
	Profit         float64 `json:"profit"`
	AvgMarginPct   int     `json:"avgMarginPct"`
	OrderCount     int     `json:"orderCount"`
	PreOrderCount  int     `json:"preOrderCount"`
	LowStockCount  int     `json:"lowStockCount"`
	LoyaltyRatePct int     `json:"loyaltyRatePct"`
}

// TopProduct is one entry of the best-seller ranking.
type TopProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
}

// Suggestion is an actionable recommendation.
type Suggestion struct {
	Type SuggestionType `json:"type"`
	Text string         `json:"text"`
}

// Flags are derived display toggles.
type Flags struct {
	ActiveBanners int `json:"activeBanners"`
}

// Report is the computed health picture.
type Report struct {
	Score       int          `json:"score"`
	Metrics     Metrics      `json:"metrics"`
	TopProducts []TopProduct `json:"topProducts"`
	Suggestions []Suggestion `json:"suggestions"`
	Flags       Flags        `json:"flags"`
}

// Compute scores the snapshot. Fulfilled orders are re-priced at current material costs.
func Compute(in Input, pricer Pricer) Report {
	products := masterdata.IndexProducts(in.Products)
	materials := masterdata.IndexMaterials(in.Materials)

	var revenue, profit float64
	preOrders := 0
	for _, o := range in.Orders {
		if o.IsPreOrder && o.Status != fulfillment.StatusCancelled {
			preOrders++
		}
		if !o.Status.Fulfilled() {
			continue
		}
		revenue += o.FinalPrice
		product, ok := products[o.ProductID]
		if !ok {
			continue
		}
		profit += o.FinalPrice - pricer.Recommend(product, materials).ProductionCost
	}

	avgMargin := ratio(profit, revenue)
	preOrderRatio := ratio(float64(preOrders), float64(len(in.Orders)))

	lowStock := 0
	for _, m := range in.Materials {
		if m.IsLowStock() {
			lowStock++
		}
	}

	repeat := 0
	for _, c := range in.Customers {
		if c.IsRepeat() {
			repeat++
		}
	}
	loyaltyRate := ratio(float64(repeat), float64(len(in.Customers)))

	report := Report{
		Score: Score(avgMargin, preOrderRatio, loyaltyRate, lowStock),
		Metrics: Metrics{
			Revenue:        pricing.Round2(revenue),
			Profit:         pricing.Round2(profit),
			AvgMarginPct:   roundHalfUp(avgMargin * 100),
			OrderCount:     len(in.Orders),
			PreOrderCount:  preOrders,
			LowStockCount:  lowStock,
			LoyaltyRatePct: roundHalfUp(loyaltyRate * 100),
		},
		TopProducts: topProducts(in.Orders, products),
		Suggestions: suggestions(avgMargin, preOrderRatio, loyaltyRate, lowStock),
	}
	if in.Settings.HasBanner() {
		report.Flags.ActiveBanners = 1
	}
	return report
}

// Score blends the four signals into a 0-100 integer.
func Score(avgMargin, preOrderRatio, loyaltyRate float64, lowStock int) int {
	score := baselineScore
	score += math.Min(maxMarginBonus, avgMargin*marginWeight)
	score -= math.Min(maxPreOrderDrag, preOrderRatio*preOrderWeight)
	score += math.Min(maxLoyaltyBonus, loyaltyRate*loyaltyWeight)
	score -= math.Min(maxLowStockDrag, float64(lowStock)*lowStockPerItem)

	rounded := roundHalfUp(score)
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func topProducts(orders []fulfillment.Order, products masterdata.ProductIndex) []TopProduct {
	var ranking []TopProduct
	position := make(map[string]int)
	for _, o := range orders {
		if idx, ok := position[o.ProductID]; ok {
			ranking[idx].Qty += o.Quantity
			continue
		}
		position[o.ProductID] = len(ranking)
		name := unknownProduct
		if p, ok := products[o.ProductID]; ok {
			name = p.Name
		}
		ranking = append(ranking, TopProduct{ProductID: o.ProductID, Name: name, Qty: o.Quantity})
	}
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Qty > ranking[j].Qty })
	if len(ranking) > topProductsLimit {
		ranking = ranking[:topProductsLimit]
	}
	if ranking == nil {
		ranking = []TopProduct{}
	}
	return ranking
}

func suggestions(avgMargin, preOrderRatio, loyaltyRate float64, lowStock int) []Suggestion {
	var fired []SuggestionType
	if avgMargin < lowMarginLimit {
		fired = append(fired, SuggestionProfit)
	}
	if preOrderRatio > preOrderRateLimit {
		fired = append(fired, SuggestionStock)
	}
	if loyaltyRate < loyaltyRateLimit {
		fired = append(fired, SuggestionGrowth)
	}
	if lowStock > lowStockItemLimit {
		fired = append(fired, SuggestionInventory)
	}
	if len(fired) == 0 {
		fired = append(fired, SuggestionPositive)
	}
	if len(fired) > suggestionsLimit {
		fired = fired[:suggestionsLimit]
	}

	out := make([]Suggestion, 0, len(fired))
	for _, t := range fired {
		out = append(out, Suggestion{Type: t, Text: suggestionText[t]})
	}
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
