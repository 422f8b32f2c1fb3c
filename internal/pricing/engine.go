// Package pricing derives production cost and tiered price recommendations for products.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordelix/ordelix/internal/masterdata"
)

// DefaultHourlyRate is the labor rate in currency units per hour.
const DefaultHourlyRate = 20.0

const (
	complexityStep = 0.1
	peakSeasonal   = 1.2
	offSeasonal    = 1.0

	// BaseMargin, RecommendedMargin and PremiumMargin are the target margins of the three tiers.
	BaseMargin        = 0.20
	RecommendedMargin = 0.50
	PremiumMargin     = 0.75
)

// Tier is one price point at a target margin.
type Tier struct {
	Price  float64 `json:"price"`
	Profit float64 `json:"profit"`
	Margin string  `json:"margin"`
}

// Factors lists the inputs that produced the production cost.
type Factors struct {
	MaterialCost         float64 `json:"materialCost"`
	LaborCost            float64 `json:"laborCost"`
	ComplexityMultiplier float64 `json:"complexityMultiplier"`
	SeasonalFactor       float64 `json:"seasonalFactor"`
}

// Recommendation is the pricing result for one product.
type Recommendation struct {
	ProductionCost float64 `json:"productionCost"`
	Base           Tier    `json:"base"`
	Recommended    Tier    `json:"recommended"`
	Premium        Tier    `json:"premium"`
	Factors        Factors `json:"factors"`
}

// Engine computes recommendations against an injectable clock.
type Engine struct {
	hourlyRate float64
	now        func() time.Time
}

// Option customises Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used for the seasonal factor.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithHourlyRate overrides DefaultHourlyRate. Non-positive values are ignored.
func WithHourlyRate(rate float64) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.hourlyRate = rate
		}
	}
}

// NewEngine builds an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{hourlyRate: DefaultHourlyRate, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HourlyRate reports the configured labor rate.
func (e *Engine) HourlyRate() float64 {
	return e.hourlyRate
}

// Recommend prices product against the materials snapshot at the current clock reading.
func (e *Engine) Recommend(product masterdata.Product, materials masterdata.MaterialIndex) Recommendation {
	return Compute(product, materials, e.hourlyRate, e.now())
}

// ProductionCost returns the unrounded production cost at the current clock reading.
func (e *Engine) ProductionCost(product masterdata.Product, materials masterdata.MaterialIndex) float64 {
	return productionCost(product, materials, e.hourlyRate, e.now())
}

// Compute is the pure pricing function. Materials missing from the snapshot cost nothing.
func Compute(product masterdata.Product, materials masterdata.MaterialIndex, hourlyRate float64, at time.Time) Recommendation {
	f := factors(product, materials, hourlyRate, at)
	cost := (f.MaterialCost + f.LaborCost) * f.ComplexityMultiplier * f.SeasonalFactor

	return Recommendation{
		ProductionCost: Round2(cost),
		Base:           tier(cost, BaseMargin),
		Recommended:    tier(cost, RecommendedMargin),
		Premium:        tier(cost, PremiumMargin),
		Factors: Factors{
			MaterialCost:         Round2(f.MaterialCost),
			LaborCost:            Round2(f.LaborCost),
			ComplexityMultiplier: f.ComplexityMultiplier,
			SeasonalFactor:       f.SeasonalFactor,
		},
	}
}

// SeasonalFactor is 1.2 during November and December.
func SeasonalFactor(at time.Time) float64 {
	switch at.Month() {
	case time.November, time.December:
		return peakSeasonal
	default:
		return offSeasonal
	}
}

// IsOffSeason reports whether f is the neutral seasonal factor.
func IsOffSeason(f float64) bool {
	return f == offSeasonal
}

// ComplexityMultiplier scales cost by product complexity.
func ComplexityMultiplier(complexity int) float64 {
	return decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(complexity)).Mul(decimal.NewFromFloat(complexityStep))).InexactFloat64()
}

// PercentString renders a ratio as a whole percent, e.g. 0.5 -> "50%". Ties round away from zero.
func PercentString(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).Round(0).String() + "%"
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func productionCost(product masterdata.Product, materials masterdata.MaterialIndex, hourlyRate float64, at time.Time) float64 {
	f := factors(product, materials, hourlyRate, at)
	return (f.MaterialCost + f.LaborCost) * f.ComplexityMultiplier * f.SeasonalFactor
}

func factors(product masterdata.Product, materials masterdata.MaterialIndex, hourlyRate float64, at time.Time) Factors {
	var materialCost float64
	for _, line := range product.Materials {
		m, ok := materials[line.MaterialID]
		if !ok {
			continue
		}
		materialCost += m.UnitPrice * float64(line.QuantityRequired)
	}
	return Factors{
		MaterialCost:         materialCost,
		LaborCost:            product.LaborHours * hourlyRate,
		ComplexityMultiplier: ComplexityMultiplier(product.Complexity),
		SeasonalFactor:       SeasonalFactor(at),
	}
}

func tier(cost, margin float64) Tier {
	price := cost / (1 - margin)
	return Tier{
		Price:  Round2(price),
		Profit: Round2(price - cost),
		Margin: PercentString(margin),
	}
}
