package forecast

import (
	"context"
	"math"
	"time"

	"github.com/restockd/restock/internal/domain/models"
)

// ConversionTable resolves a capacity unit symbol to a numeric conversion
// factor used to normalize capacities across units. Implementations default
// to 1 for unknown symbols.
type ConversionTable interface {
	Factor(ctx context.Context, symbol string) float64
}

// daysBetween returns the number of whole days from one instant to another,
// flooring toward negative infinity so a prediction twelve hours in the past
// counts as -1 days, not 0.
func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// validityDays is the span between purchase and expiry, zero when either
// date is unknown.
func validityDays(item models.ItemRecord) int {
	if item.PurchaseDate.IsZero() || item.ExpiryDate.IsZero() {
		return 0
	}
	return daysBetween(item.PurchaseDate, item.ExpiryDate)
}

func capacityOrZero(item models.ItemRecord) float64 {
	if item.Capacity == nil {
		return 0
	}
	return *item.Capacity
}

// durationFeatures builds the 5-feature vector for the consumption-duration
// regressor: quantity, capacity, price, conversion factor, validity days.
func (f *Forecaster) durationFeatures(ctx context.Context, item models.ItemRecord) []float64 {
	return []float64{
		float64(item.Quantity),
		capacityOrZero(item),
		item.Price,
		f.units.Factor(ctx, item.CapacityUnit),
		float64(validityDays(item)),
	}
}

// RepurchaseFeatures builds the 6-feature vector for the repurchase
// classifier: the duration features plus days since the item was opened
// (zero when it never was).
func (f *Forecaster) RepurchaseFeatures(ctx context.Context, item models.ItemRecord, now time.Time) []float64 {
	daysSinceUsage := 0
	if item.StartDate != nil {
		daysSinceUsage = daysBetween(*item.StartDate, now)
	}
	return append(f.durationFeatures(ctx, item), float64(daysSinceUsage))
}
