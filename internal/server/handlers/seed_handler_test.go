package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"testing"

	"github.com/restockd/restock/internal/domain/models"
	"github.com/restockd/restock/internal/service/seeding"
)

// seedStore backs a real Generator so the handler tests exercise the actual
// seeding flow end to end.
type seedStore struct {
	receipts []models.Receipt
	items    []models.ItemRecord
}

func (s *seedStore) InsertReceipt(_ context.Context, receipt models.Receipt) error {
	s.receipts = append(s.receipts, receipt)
	return nil
}

func (s *seedStore) FindReceiptsByUser(_ context.Context, _ string, limit int) ([]models.Receipt, error) {
	if limit < len(s.receipts) {
		return s.receipts[:limit], nil
	}
	return s.receipts, nil
}

func (s *seedStore) InsertItems(_ context.Context, items []models.ItemRecord) error {
	s.items = append(s.items, items...)
	return nil
}

func newSeedHandler(store *seedStore) *SeedHandler {
	g := seeding.NewGenerator(store, rand.New(rand.NewSource(1)), nil)
	return NewSeedHandler(g, nil)
}

func TestInsertReceiptsHandler(t *testing.T) {
	t.Run("defaults applied when omitted", func(t *testing.T) {
		store := &seedStore{}
		h := newSeedHandler(store)

		w := postJSON(t, h.InsertReceipts, `{"username":"lucy"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
		if len(store.receipts) != 5 {
			t.Errorf("receipts inserted = %d, want default 5", len(store.receipts))
		}
	})

	t.Run("missing username is rejected", func(t *testing.T) {
		h := newSeedHandler(&seedStore{})

		w := postJSON(t, h.InsertReceipts, `{"num":3}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestSimulateItemsHandler(t *testing.T) {
	store := &seedStore{}
	g := seeding.NewGenerator(store, rand.New(rand.NewSource(1)), nil)
	h := NewSeedHandler(g, nil)

	// Seed receipts first so simulation has material to work with.
	if _, err := g.InsertReceipts(context.Background(), "lucy", seeding.WindowExpired, 2); err != nil {
		t.Fatalf("seed receipts: %v", err)
	}

	w := postJSON(t, h.SimulateItems, `{"username":"lucy"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if len(store.items) == 0 {
		t.Error("no item records materialized")
	}
}
