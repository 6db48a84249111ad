package seeding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/restockd/restock/internal/domain/models"
)

const (
	expiryFallbackDays  = 15
	endDateProbability  = 0.7
	defaultItemLocation = "Fridge"
)

// SimulateUsageDates fills in missing lifecycle dates on a receipt in place:
// a missing receipt expiry becomes purchase + 15 days; a missing item start
// date lands one to two days after purchase; a missing end date is assigned
// three to seven days after start with probability 0.7 (otherwise the item
// is still being consumed); a missing predicted consumption date becomes the
// midpoint between start and expiry when start precedes expiry.
func (g *Generator) SimulateUsageDates(receipt *models.Receipt) {
	if receipt.ExpiryDate == nil {
		expiry := receipt.PurchaseDate.AddDate(0, 0, expiryFallbackDays)
		receipt.ExpiryDate = &expiry
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]

		if item.StartDate == nil {
			start := receipt.PurchaseDate.AddDate(0, 0, 1+g.rng.Intn(2))
			item.StartDate = &start
		}

		if item.EndDate == nil && g.rng.Float64() < endDateProbability {
			end := item.StartDate.AddDate(0, 0, 3+g.rng.Intn(5))
			item.EndDate = &end
		}

		if item.PredictedConsumedDate == nil && item.StartDate.Before(*receipt.ExpiryDate) {
			mid := item.StartDate.Add(receipt.ExpiryDate.Sub(*item.StartDate) / 2)
			item.PredictedConsumedDate = &mid
		}
	}
}

// DeriveStatus labels an item's lifecycle state relative to now. The table
// is exhaustive: unopened items are "not opened" until expiry, opened ones
// are "consuming" until their end date or expiry passes.
func DeriveStatus(now time.Time, start, end *time.Time, expiry time.Time) models.ItemStatus {
	if start == nil {
		if expiry.After(now) {
			return models.StatusNotOpened
		}
		return models.StatusExpired
	}

	if end == nil {
		switch {
		case !start.After(now) && expiry.After(now):
			return models.StatusConsuming
		case !expiry.After(now):
			return models.StatusExpired
		default:
			return models.StatusConsuming
		}
	}

	if !end.After(now) {
		return models.StatusConsumed
	}
	return models.StatusConsuming
}

// BuildItemRecord assembles an item document from a receipt line. The item
// price is the line total, matching how receipts are ingested.
func (g *Generator) BuildItemRecord(receipt models.Receipt, item models.ReceiptItem) models.ItemRecord {
	capacity := item.Capacity

	return models.ItemRecord{
		UserName:              receipt.UserName,
		Name:                  item.Name,
		CategoryName:          item.Category,
		ReceiptNumber:         receipt.ReceiptNumber,
		Status:                DeriveStatus(g.now(), item.StartDate, item.EndDate, *receipt.ExpiryDate),
		Location:              defaultItemLocation,
		PurchaseDate:          receipt.PurchaseDate,
		ExpiryDate:            *receipt.ExpiryDate,
		Price:                 item.TotalPrice,
		Quantity:              item.Quantity,
		Capacity:              &capacity,
		CapacityUnit:          item.CapacityUnit,
		StartDate:             item.StartDate,
		EndDate:               item.EndDate,
		PredictedConsumedDate: item.PredictedConsumedDate,
	}
}

// ProcessReceiptsToItems loads up to numReceipts of the user's receipts,
// simulates any missing usage dates, materializes item records and persists
// them. The simulated records are returned for inspection.
func (g *Generator) ProcessReceiptsToItems(ctx context.Context, username string, numReceipts int) ([]models.ItemRecord, error) {
	receipts, err := g.store.FindReceiptsByUser(ctx, username, numReceipts)
	if err != nil {
		return nil, fmt.Errorf("load receipts for %s: %w", username, err)
	}

	var records []models.ItemRecord
	for i := range receipts {
		g.SimulateUsageDates(&receipts[i])
		for _, item := range receipts[i].Items {
			records = append(records, g.BuildItemRecord(receipts[i], item))
		}
	}

	if len(records) == 0 {
		g.logger.Info("no receipts to materialize", zap.String("username", username))
		return nil, nil
	}

	if err := g.store.InsertItems(ctx, records); err != nil {
		return nil, fmt.Errorf("insert items for %s: %w", username, err)
	}

	g.logger.Info("items materialized from receipts",
		zap.String("username", username),
		zap.Int("receipts", len(receipts)),
		zap.Int("items", len(records)))

	return records, nil
}
