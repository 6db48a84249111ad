package recommend

import (
	"context"
	"fmt"
	"sort"
)

// consumptionWindowDays is the trailing window considered when aggregating
// actual consumption.
const consumptionWindowDays = 14

// ConsumptionSummary aggregates a user's recently consumed records of one
// item type. Capacity is the largest single-unit capacity observed, not a
// total; CapacityUnit is empty when no record carried one.
type ConsumptionSummary struct {
	TotalQuantity    int     `json:"total_quantity"`
	TotalConsumption float64 `json:"total_consumption"`
	CapacityUnit     string  `json:"capacity_unit,omitempty"`
	Capacity         float64 `json:"capacity,omitempty"`
}

// RecentConsumption scans items consumed within the trailing window whose
// name matches case-insensitively. Records are ordered most recently
// consumed first, so the unit of the latest consumption wins the pick; the
// underlying query order is otherwise unspecified. A user with no matching
// records yields a zero-valued summary, never an error.
func (s *Service) RecentConsumption(ctx context.Context, username, itemName string) (ConsumptionSummary, error) {
	since := s.now().AddDate(0, 0, -consumptionWindowDays)

	items, err := s.store.FindConsumedItemsSince(ctx, username, itemName, since)
	if err != nil {
		return ConsumptionSummary{}, fmt.Errorf("load consumed %s records: %w", itemName, err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].EndDate == nil || items[j].EndDate == nil {
			return items[j].EndDate == nil
		}
		return items[i].EndDate.After(*items[j].EndDate)
	})

	var summary ConsumptionSummary
	for _, it := range items {
		summary.TotalQuantity += it.Quantity

		if it.Capacity != nil {
			summary.TotalConsumption += float64(it.Quantity) * *it.Capacity
			if *it.Capacity > summary.Capacity {
				summary.Capacity = *it.Capacity
			}
		} else {
			summary.TotalConsumption += float64(it.Quantity)
		}

		if summary.CapacityUnit == "" && it.CapacityUnit != "" {
			summary.CapacityUnit = it.CapacityUnit
		}
	}

	return summary, nil
}
