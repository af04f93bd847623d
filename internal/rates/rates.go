// Package rates implements the shipping calculator: a quote per courier
// service for a package of given weight and dimensions.
package rates

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// Volumetric divisor used by major couriers for cm-based dimensions.
const volumetricDivisor = 5000.0

// Package describes the parcel being quoted. Dimensions are centimeters,
// weight kilograms.
type Package struct {
	WeightKG float64 `json:"weight_kg"`
	LengthCM float64 `json:"length_cm"`
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`
}

// Quote is one courier's offer for shipping a package.
type Quote struct {
	Courier       string          `json:"courier"`
	Service       string          `json:"service"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	EstimatedDays int             `json:"estimated_days"`
}

// tariff is a courier service's pricing line: base fee plus per-kg rate on
// the chargeable weight.
type tariff struct {
	courier       string
	service       string
	baseFee       decimal.Decimal
	perKG         decimal.Decimal
	estimatedDays int
}

var tariffs = []tariff{
	{"BlueDart", "Surface", decimal.NewFromInt(60), decimal.RequireFromString("38.50"), 6},
	{"BlueDart", "Air Express", decimal.NewFromInt(110), decimal.RequireFromString("72.00"), 2},
	{"Delhivery", "Standard", decimal.NewFromInt(50), decimal.RequireFromString("35.00"), 5},
	{"DTDC", "Economy", decimal.NewFromInt(45), decimal.RequireFromString("31.25"), 8},
	{"FedEx", "Priority", decimal.NewFromInt(150), decimal.RequireFromString("95.00"), 1},
}

// ChargeableWeightKG returns the greater of actual and volumetric weight.
func ChargeableWeightKG(p Package) float64 {
	vol := p.LengthCM * p.WidthCM * p.HeightCM / volumetricDivisor
	if vol > p.WeightKG {
		return vol
	}
	return p.WeightKG
}

// QuoteAll prices the package against every courier tariff, cheapest first.
func QuoteAll(p Package) ([]Quote, error) {
	if p.WeightKG <= 0 && (p.LengthCM <= 0 || p.WidthCM <= 0 || p.HeightCM <= 0) {
		return nil, errors.New("package needs a positive weight or full dimensions")
	}
	w := decimal.NewFromFloat(ChargeableWeightKG(p))
	out := make([]Quote, 0, len(tariffs))
	for _, t := range tariffs {
		amount := t.baseFee.Add(t.perKG.Mul(w)).Round(2)
		out = append(out, Quote{
			Courier:       t.courier,
			Service:       t.service,
			Amount:        amount,
			Currency:      "INR",
			EstimatedDays: t.estimatedDays,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount.LessThan(out[j].Amount) })
	return out, nil
}
