package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ordelix/ordelix/internal/masterdata"
)

var (
	june     = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	november = time.Date(2024, time.November, 3, 9, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecommendLaborOnlyExample(t *testing.T) {
	engine := NewEngine(WithClock(fixedClock(june)))
	product := masterdata.Product{ID: "p1", LaborHours: 2, Complexity: 3}

	rec := engine.Recommend(product, nil)
	require.InDelta(t, 1.3, rec.Factors.ComplexityMultiplier, 1e-9)
	require.Equal(t, 1.0, rec.Factors.SeasonalFactor)
	require.InDelta(t, 52.0, rec.ProductionCost, 0.001)
	require.InDelta(t, 104.0, rec.Recommended.Price, 0.001)
	require.InDelta(t, 52.0, rec.Recommended.Profit, 0.001)
	require.Equal(t, "50%", rec.Recommended.Margin)
	require.Equal(t, "20%", rec.Base.Margin)
	require.Equal(t, "75%", rec.Premium.Margin)
	require.InDelta(t, 65.0, rec.Base.Price, 0.001)
	require.InDelta(t, 208.0, rec.Premium.Price, 0.001)
}

func TestRecommendMaterialCostSkipsMissing(t *testing.T) {
	materials := masterdata.IndexMaterials([]masterdata.Material{
		{ID: "wax", UnitPrice: 1.5},
		{ID: "wick", UnitPrice: 0.25},
	})
	product := masterdata.Product{
		LaborHours: 1,
		Complexity: 1,
		Materials: []masterdata.MaterialRequirement{
			{MaterialID: "wax", QuantityRequired: 4},
			{MaterialID: "wick", QuantityRequired: 2},
			{MaterialID: "ghost", QuantityRequired: 100},
		},
	}

	rec := Compute(product, materials, DefaultHourlyRate, june)
	require.InDelta(t, 6.5, rec.Factors.MaterialCost, 0.001)
	require.InDelta(t, 20.0, rec.Factors.LaborCost, 0.001)
	require.InDelta(t, 29.15, rec.ProductionCost, 0.001)
}

func TestSeasonalFactor(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		at := time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC)
		want := 1.0
		if month == time.November || month == time.December {
			want = 1.2
		}
		require.Equal(t, want, SeasonalFactor(at), month.String())
	}
}

func TestPeakSeasonRaisesCost(t *testing.T) {
	product := masterdata.Product{LaborHours: 2, Complexity: 3}
	off := NewEngine(WithClock(fixedClock(june))).Recommend(product, nil)
	peak := NewEngine(WithClock(fixedClock(november))).Recommend(product, nil)
	require.InDelta(t, off.ProductionCost*1.2, peak.ProductionCost, 0.01)
	require.False(t, IsOffSeason(peak.Factors.SeasonalFactor))
	require.True(t, IsOffSeason(off.Factors.SeasonalFactor))
}

func TestEmptyBOMCostIsLaborTimesMultipliers(t *testing.T) {
	for complexity := masterdata.MinComplexity; complexity <= masterdata.MaxComplexity; complexity++ {
		for _, hours := range []float64{0, 0.5, 1, 3.25, 12} {
			product := masterdata.Product{LaborHours: hours, Complexity: complexity}
			for _, at := range []time.Time{june, november} {
				rec := Compute(product, nil, DefaultHourlyRate, at)
				want := hours * DefaultHourlyRate * ComplexityMultiplier(complexity) * SeasonalFactor(at)
				require.InDelta(t, want, rec.ProductionCost, 0.005)
			}
		}
	}
}

func TestTierRoundTrip(t *testing.T) {
	engine := NewEngine(WithClock(fixedClock(june)))
	product := masterdata.Product{LaborHours: 3.7, Complexity: 4}
	rec := engine.Recommend(product, nil)
	cost := engine.ProductionCost(product, nil)

	cases := []struct {
		tier   Tier
		margin float64
	}{
		{rec.Base, BaseMargin},
		{rec.Recommended, RecommendedMargin},
		{rec.Premium, PremiumMargin},
	}
	for _, tc := range cases {
		require.InDelta(t, cost, tc.tier.Price*(1-tc.margin), 0.01)
		require.InDelta(t, tc.tier.Price-cost, tc.tier.Profit, 0.01)
	}
}

func TestWithHourlyRate(t *testing.T) {
	engine := NewEngine(WithHourlyRate(30), WithClock(fixedClock(june)))
	require.Equal(t, 30.0, engine.HourlyRate())
	rec := engine.Recommend(masterdata.Product{LaborHours: 1, Complexity: 1}, nil)
	require.InDelta(t, 33.0, rec.ProductionCost, 0.001)

	require.Equal(t, DefaultHourlyRate, NewEngine(WithHourlyRate(-1)).HourlyRate())
}

func TestRound2(t *testing.T) {
	require.Equal(t, 1.01, Round2(1.005))
	require.Equal(t, -1.01, Round2(-1.005))
	require.Equal(t, 2.0, Round2(1.999))
}

func TestPercentStringRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[float64]string{
		0.5:    "50%",
		0.125:  "13%",
		-0.125: "-13%",
		-0.124: "-12%",
		0:      "0%",
	}
	for ratio, want := range cases {
		require.Equal(t, want, PercentString(ratio), "ratio %v", ratio)
	}
}
