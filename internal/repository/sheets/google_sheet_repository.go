package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/restockd/restock/internal/config"
	"github.com/restockd/restock/internal/domain/models"
)

const exportRange = "ShoppingLists!A:J"

const timestampLayout = "2006-01-02 15:04"

// Exporter pushes computed shopping lists to an external spreadsheet.
type Exporter interface {
	ExportShoppingList(ctx context.Context, list models.ShoppingList) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ExportShoppingList appends one row per list item to the export range.
func (e *GoogleSheetExporter) ExportShoppingList(ctx context.Context, list models.ShoppingList) error {
	if len(list.Items) == 0 {
		e.logger.Debug("skipping export of empty shopping list", zap.String("username", list.UserName))
		return nil
	}

	rows := make([][]interface{}, 0, len(list.Items))
	for _, item := range list.Items {
		rows = append(rows, []interface{}{
			list.UserName,
			list.UpdatedAt.Format(timestampLayout),
			item.ItemName,
			item.Quantity,
			item.Capacity,
			item.CapacityUnit,
			item.Price,
			item.TotalPrice,
			item.Source,
			item.Status,
		})
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, exportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append shopping list rows for %s: %w", list.UserName, err)
	}

	e.logger.Debug("shopping list exported",
		zap.String("username", list.UserName),
		zap.Int("rows", len(rows)))
	return nil
}
