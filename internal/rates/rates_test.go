package rates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeableWeight(t *testing.T) {
	// Heavy but small: actual weight wins.
	assert.InDelta(t, 5.0, ChargeableWeightKG(Package{WeightKG: 5, LengthCM: 10, WidthCM: 10, HeightCM: 10}), 1e-9)
	// Light but bulky: volumetric weight wins (40*40*40/5000 = 12.8).
	assert.InDelta(t, 12.8, ChargeableWeightKG(Package{WeightKG: 2, LengthCM: 40, WidthCM: 40, HeightCM: 40}), 1e-9)
}

func TestQuoteAll(t *testing.T) {
	quotes, err := QuoteAll(Package{WeightKG: 2})
	require.NoError(t, err)
	require.Len(t, quotes, 5)

	// Cheapest first.
	for i := 1; i < len(quotes); i++ {
		assert.True(t, quotes[i-1].Amount.LessThanOrEqual(quotes[i].Amount),
			"quotes not sorted: %s before %s", quotes[i-1].Amount, quotes[i].Amount)
	}

	// Spot-check the math: DTDC Economy = 45 + 31.25*2 = 107.50.
	var found bool
	for _, q := range quotes {
		if q.Courier == "DTDC" {
			found = true
			assert.True(t, q.Amount.Equal(decimal.RequireFromString("107.50")), "DTDC amount = %s", q.Amount)
			assert.Equal(t, "INR", q.Currency)
			assert.Equal(t, 8, q.EstimatedDays)
		}
	}
	assert.True(t, found, "DTDC quote missing")
}

func TestQuoteAllRejectsEmptyPackage(t *testing.T) {
	_, err := QuoteAll(Package{})
	assert.Error(t, err)
}
