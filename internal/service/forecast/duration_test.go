package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/restockd/restock/internal/domain/models"
)

type fieldUpdate struct {
	id    primitive.ObjectID
	field string
	value interface{}
}

type recordingWriter struct {
	updates []fieldUpdate
	err     error
}

func (w *recordingWriter) UpdateItemField(_ context.Context, id primitive.ObjectID, field string, value interface{}) error {
	if w.err != nil {
		return w.err
	}
	w.updates = append(w.updates, fieldUpdate{id: id, field: field, value: value})
	return nil
}

type constantFactor float64

func (c constantFactor) Factor(context.Context, string) float64 { return float64(c) }

func newTestForecaster(writer *recordingWriter, now time.Time) *Forecaster {
	f := NewForecaster(writer, constantFactor(1), 7, nil)
	f.now = func() time.Time { return now }
	return f
}

func datePtr(t time.Time) *time.Time { return &t }

func milkRecord(start, end time.Time) models.ItemRecord {
	return models.ItemRecord{
		Name:      "Milk",
		Quantity:  1,
		Price:     2.5,
		StartDate: datePtr(start),
		EndDate:   datePtr(end),
	}
}

func TestTrainDurationModel(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newTestForecaster(&recordingWriter{}, now)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fewer than two qualifying records", func(t *testing.T) {
		items := []models.ItemRecord{
			milkRecord(base, base.AddDate(0, 0, 4)),
			{Name: "Milk", StartDate: datePtr(base)}, // never finished
			milkRecord(base, base.AddDate(0, 0, 3)),  // wrong type below
		}
		items[2].Name = "Bread"

		if _, err := f.TrainDurationModel(ctx, items, "Milk"); !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("err = %v, want ErrInsufficientData", err)
		}
	})

	t.Run("constant history predicts the constant", func(t *testing.T) {
		items := []models.ItemRecord{
			milkRecord(base, base.AddDate(0, 0, 4)),
			milkRecord(base.AddDate(0, 0, 10), base.AddDate(0, 0, 14)),
			milkRecord(base.AddDate(0, 0, 20), base.AddDate(0, 0, 24)),
		}

		model, err := f.TrainDurationModel(ctx, items, "milk")
		if err != nil {
			t.Fatalf("TrainDurationModel: %v", err)
		}
		if got := model.Predict(f.durationFeatures(ctx, items[0])); got != 4 {
			t.Errorf("Predict = %v, want 4", got)
		}
	})

	t.Run("records with end before start are excluded", func(t *testing.T) {
		items := []models.ItemRecord{
			milkRecord(base, base.AddDate(0, 0, 4)),
			milkRecord(base.AddDate(0, 0, 10), base.AddDate(0, 0, 8)),
		}

		if _, err := f.TrainDurationModel(ctx, items, "Milk"); !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("err = %v, want ErrInsufficientData after exclusion", err)
		}
	})
}

func TestForecastConsumedDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	history := []models.ItemRecord{
		milkRecord(base, base.AddDate(0, 0, 4)),
		milkRecord(base.AddDate(0, 0, 10), base.AddDate(0, 0, 14)),
	}

	t.Run("model prediction anchored at start date", func(t *testing.T) {
		f := newTestForecaster(&recordingWriter{}, now)
		start := base.AddDate(0, 0, 20)
		item := models.ItemRecord{Name: "Milk", Quantity: 1, Price: 2.5, StartDate: datePtr(start)}

		got, err := f.ForecastConsumedDate(ctx, &item, history)
		if err != nil {
			t.Fatalf("ForecastConsumedDate: %v", err)
		}
		want := start.AddDate(0, 0, 4)
		if !got.Equal(want) {
			t.Errorf("predicted = %v, want %v", got, want)
		}
		if item.PredictedConsumedDate == nil || !item.PredictedConsumedDate.Equal(want) {
			t.Errorf("record prediction = %v, want %v", item.PredictedConsumedDate, want)
		}
	})

	t.Run("default horizon from purchase date", func(t *testing.T) {
		f := newTestForecaster(&recordingWriter{}, now)
		item := models.ItemRecord{Name: "Bread", PurchaseDate: base}

		got, err := f.ForecastConsumedDate(ctx, &item, history)
		if err != nil {
			t.Fatalf("ForecastConsumedDate: %v", err)
		}
		want := base.AddDate(0, 0, 8) // purchase + 1 + default 7
		if !got.Equal(want) {
			t.Errorf("predicted = %v, want %v", got, want)
		}
	})

	t.Run("no dates at all anchors at now", func(t *testing.T) {
		f := newTestForecaster(&recordingWriter{}, now)
		item := models.ItemRecord{Name: "Bread"}

		got, err := f.ForecastConsumedDate(ctx, &item, nil)
		if err != nil {
			t.Fatalf("ForecastConsumedDate: %v", err)
		}
		want := now.AddDate(0, 0, 7)
		if !got.Equal(want) {
			t.Errorf("predicted = %v, want %v", got, want)
		}
	})

	t.Run("persisted records write through", func(t *testing.T) {
		writer := &recordingWriter{}
		f := newTestForecaster(writer, now)
		item := models.ItemRecord{ID: primitive.NewObjectID(), Name: "Bread", PurchaseDate: base}

		if _, err := f.ForecastConsumedDate(ctx, &item, nil); err != nil {
			t.Fatalf("ForecastConsumedDate: %v", err)
		}
		if len(writer.updates) != 1 {
			t.Fatalf("updates = %d, want 1", len(writer.updates))
		}
		if writer.updates[0].field != fieldPredictedConsumedDate {
			t.Errorf("updated field = %q, want %q", writer.updates[0].field, fieldPredictedConsumedDate)
		}
		if writer.updates[0].id != item.ID {
			t.Errorf("updated id = %v, want %v", writer.updates[0].id, item.ID)
		}
	})

	t.Run("unsaved records skip the write", func(t *testing.T) {
		writer := &recordingWriter{err: errors.New("should not be called")}
		f := newTestForecaster(writer, now)
		item := models.ItemRecord{Name: "Bread", PurchaseDate: base}

		if _, err := f.ForecastConsumedDate(ctx, &item, nil); err != nil {
			t.Fatalf("ForecastConsumedDate: %v", err)
		}
	})
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", base, 0},
		{"one day ahead", base.AddDate(0, 0, 1), 1},
		{"twelve hours ahead floors to zero", base.Add(12 * time.Hour), 0},
		{"twelve hours behind floors to minus one", base.Add(-12 * time.Hour), -1},
		{"three days behind", base.AddDate(0, 0, -3), -3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := daysBetween(base, tc.to); got != tc.want {
				t.Errorf("daysBetween = %d, want %d", got, tc.want)
			}
		})
	}
}
