package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/restockd/restock/internal/domain/models"
)

// ErrInsufficientData signals that fewer than two qualifying records exist,
// which is too little to fit a model meaningfully. Callers recover with a
// fallback policy; this never reaches an API response.
var ErrInsufficientData = errors.New("not enough history to train a model")

const fieldPredictedConsumedDate = "predicted_consumed_date"

// ItemWriter is the slice of the persistence collaborator the forecaster
// needs for write-through of predicted consumption dates.
type ItemWriter interface {
	UpdateItemField(ctx context.Context, id primitive.ObjectID, field string, value interface{}) error
}

// Forecaster trains per-request consumption models and fills in predicted
// consumption dates. Models are never cached; each call retrains from the
// rows it is given.
type Forecaster struct {
	store       ItemWriter
	units       ConversionTable
	defaultDays int
	logger      *zap.Logger
	now         func() time.Time
}

// NewForecaster wires a forecaster. defaultDays is the horizon used when a
// duration model cannot be trained; values below 1 fall back to 7.
func NewForecaster(store ItemWriter, units ConversionTable, defaultDays int, logger *zap.Logger) *Forecaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDays < 1 {
		defaultDays = 7
	}
	return &Forecaster{
		store:       store,
		units:       units,
		defaultDays: defaultDays,
		logger:      logger,
		now:         time.Now,
	}
}

// TrainDurationModel fits a regression forest predicting how many days an
// item type takes to be consumed once opened, using the user's records of
// the same type that have both start and end dates. Records violating the
// start<=end invariant are excluded per-record rather than aborting.
func (f *Forecaster) TrainDurationModel(ctx context.Context, items []models.ItemRecord, itemName string) (*Forest, error) {
	var rows [][]float64
	var labels []float64

	for _, it := range items {
		if !strings.EqualFold(it.Name, itemName) || it.StartDate == nil || it.EndDate == nil {
			continue
		}

		duration := daysBetween(*it.StartDate, *it.EndDate)
		if duration < 0 {
			f.logger.Warn("skipping record with end date before start date",
				zap.String("item", it.Name),
				zap.Time("start_date", *it.StartDate),
				zap.Time("end_date", *it.EndDate))
			continue
		}

		rows = append(rows, f.durationFeatures(ctx, it))
		labels = append(labels, float64(duration))
	}

	if len(rows) < 2 {
		return nil, ErrInsufficientData
	}

	return trainForest(rows, labels, false), nil
}

// ForecastConsumedDate predicts when the given item will be fully consumed
// and writes the prediction through to storage and onto the record itself.
// The start anchor is the item's start date, failing that the purchase date
// plus one day, failing that now.
func (f *Forecaster) ForecastConsumedDate(ctx context.Context, item *models.ItemRecord, userItems []models.ItemRecord) (time.Time, error) {
	start := f.now()
	switch {
	case item.StartDate != nil:
		start = *item.StartDate
	case !item.PurchaseDate.IsZero():
		start = item.PurchaseDate.AddDate(0, 0, 1)
	}

	durationDays := f.defaultDays
	model, err := f.TrainDurationModel(ctx, userItems, item.Name)
	switch {
	case err == nil:
		predicted := model.Predict(f.durationFeatures(ctx, *item))
		durationDays = int(math.Round(predicted))
		if durationDays < 1 {
			durationDays = 1
		}
	case errors.Is(err, ErrInsufficientData):
		f.logger.Debug("using default consumption horizon",
			zap.String("item", item.Name),
			zap.Int("default_days", f.defaultDays))
	default:
		return time.Time{}, err
	}

	predictedDate := start.AddDate(0, 0, durationDays)

	if !item.ID.IsZero() {
		if err := f.store.UpdateItemField(ctx, item.ID, fieldPredictedConsumedDate, predictedDate); err != nil {
			return time.Time{}, fmt.Errorf("persist predicted date for %s: %w", item.Name, err)
		}
	}
	item.PredictedConsumedDate = &predictedDate

	return predictedDate, nil
}
