package forecast

import (
	"context"
	"time"

	"github.com/restockd/restock/internal/domain/models"
)

// noPredictionSentinelDays stands in for "far in the future" when an item
// has no predicted consumption date in the fallback policy.
const noPredictionSentinelDays = 999

// TrainRepurchaseModel fits a classification forest over all of a user's
// items predicting whether each needs repurchasing within thresholdDays.
// Items lacking a predicted consumption date are forecast first, which
// writes the prediction through to storage.
func (f *Forecaster) TrainRepurchaseModel(ctx context.Context, items []models.ItemRecord, thresholdDays int) (*Forest, error) {
	now := f.now()

	var rows [][]float64
	var labels []float64

	for i := range items {
		it := &items[i]
		if it.PredictedConsumedDate == nil {
			if _, err := f.ForecastConsumedDate(ctx, it, items); err != nil {
				return nil, err
			}
		}

		label := 0.0
		if daysBetween(now, *it.PredictedConsumedDate) <= thresholdDays {
			label = 1.0
		}

		rows = append(rows, f.RepurchaseFeatures(ctx, *it, now))
		labels = append(labels, label)
	}

	if len(rows) < 2 {
		return nil, ErrInsufficientData
	}

	return trainForest(rows, labels, true), nil
}

// FallbackRepurchase is the no-model policy: an item needs repurchasing when
// its predicted consumption date falls within the threshold window. Items
// without a prediction are treated as consumed far in the future.
func FallbackRepurchase(item models.ItemRecord, now time.Time, thresholdDays int) bool {
	days := noPredictionSentinelDays
	if item.PredictedConsumedDate != nil {
		days = daysBetween(now, *item.PredictedConsumedDate)
	}
	return days <= thresholdDays
}
