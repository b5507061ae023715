package calculator

import "github.com/m3rciful/vedbot/internal/rates"

// MinChargeableVolume is the smallest volume billed, in m³.
const MinChargeableVolume = 1.0

// Cost is the two-leg price of a Quote in USD.
type Cost struct {
	// EffectiveVolume is the billed volume: the larger of the real and the
	// volumetric-weight volume, but never below MinChargeableVolume.
	EffectiveVolume float64
	ToManzhouli     float64
	FromManzhouli   float64
	Total           float64
}

// Compute prices q with t. t must satisfy rates.Tariffs.Validate.
func Compute(q Quote, t rates.Tariffs) Cost {
	eff := max(q.Volume, q.Weight/t.KgPerCubicMeter, MinChargeableVolume)
	c := Cost{
		EffectiveVolume: eff,
		ToManzhouli:     eff * t.RateTo,
		FromManzhouli:   eff * t.RateFrom,
	}
	c.Total = c.ToManzhouli + c.FromManzhouli
	return c
}
