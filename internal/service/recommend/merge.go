package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/restockd/restock/internal/domain/models"
)

// maxRecommendedQuantity caps how many units of one item the system will
// ever recommend.
const maxRecommendedQuantity = 4

// Defaults applied when neither recent consumption nor the catalog can
// resolve an item's packaging.
const (
	defaultCapacity = 1
	defaultQuantity = 2
)

// mergeRecommendedItems deduplicates the recommendation batch by normalized
// singular name (summing quantities), then reconciles each group's quantity
// and packaging against the user's recent consumption, falling back to the
// most recently purchased catalog record and finally to fixed defaults.
// First-seen order is preserved.
func (s *Service) mergeRecommendedItems(ctx context.Context, username string, items []models.ShoppingListItem) ([]models.ShoppingListItem, error) {
	groups := make(map[string]models.ShoppingListItem, len(items))
	var order []string

	for _, item := range items {
		key := s.normalizeName(item.ItemName)
		if existing, ok := groups[key]; ok {
			existing.Quantity += item.Quantity
			groups[key] = existing
			continue
		}
		groups[key] = item
		order = append(order, key)
	}

	merged := make([]models.ShoppingListItem, 0, len(order))
	for _, key := range order {
		item := groups[key]

		summary, err := s.RecentConsumption(ctx, username, key)
		if err != nil {
			return nil, err
		}

		quantity := item.Quantity
		if summary.TotalQuantity > 0 {
			quantity = summary.TotalQuantity
		}
		capacity := summary.Capacity
		unit := summary.CapacityUnit

		if unit == "" {
			fallback, err := s.store.FindLatestCatalogItem(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("catalog fallback for %s: %w", key, err)
			}
			if fallback != nil {
				unit = fallback.CapacityUnit
				if fallback.Capacity != nil {
					capacity = *fallback.Capacity
				}
				quantity = fallback.Quantity
			} else {
				unit = defaultCapacityUnit
				capacity = defaultCapacity
				quantity = defaultQuantity
			}
		}

		if quantity > maxRecommendedQuantity {
			quantity = maxRecommendedQuantity
		}
		if capacity < 1 {
			capacity = 1
		}

		item.ItemName = key
		item.Quantity = quantity
		item.Capacity = capacity
		item.CapacityUnit = unit
		item.TotalPrice = round2(float64(quantity) * item.Price)
		item.Source = models.SourceAI

		s.logger.Debug("merged recommendation",
			zap.String("item", key),
			zap.Int("quantity", quantity),
			zap.String("unit", unit),
			zap.Int("recent_quantity", summary.TotalQuantity))

		merged = append(merged, item)
	}

	return merged, nil
}
