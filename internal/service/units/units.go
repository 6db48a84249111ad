package units

import (
	"context"

	"go.uber.org/zap"

	"github.com/restockd/restock/internal/domain/models"
)

// Store is the slice of persistence the conversion table needs.
type Store interface {
	FindCapacityUnit(ctx context.Context, symbol string) (*models.CapacityUnit, error)
}

// Table resolves capacity-unit symbols to numeric conversion factors against
// the static reference collection.
type Table struct {
	store  Store
	logger *zap.Logger
}

// NewTable wires a conversion table instance.
func NewTable(store Store, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{store: store, logger: logger}
}

// Factor returns the conversion factor for the given symbol, defaulting to 1
// for unknown or empty symbols. Lookup failures also degrade to 1 so feature
// computation never stalls on reference data.
func (t *Table) Factor(ctx context.Context, symbol string) float64 {
	if symbol == "" {
		return 1.0
	}

	unit, err := t.store.FindCapacityUnit(ctx, symbol)
	if err != nil {
		t.logger.Warn("capacity unit lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return 1.0
	}
	if unit == nil || unit.ConversionFactor == 0 {
		return 1.0
	}

	return unit.ConversionFactor
}
