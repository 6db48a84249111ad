package seeding

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/restockd/restock/internal/domain/models"
)

// Purchase windows steering how old generated receipts are.
const (
	WindowRecent  = "recent"
	WindowExpired = "expired"
	WindowToday   = "today"
)

const (
	storeName     = "SuperMart"
	storeLocation = "123 Queen Street, Auckland"
	paymentMethod = "Credit Card"
	taxRate       = 0.15

	mandatoryPerReceipt = 3
	optionalPerReceipt  = 7
)

type catalogEntry struct {
	Name         string
	PricePerUnit float64
	Capacity     float64
	CapacityUnit string
	Category     string
}

// Every generated receipt carries these staples plus a random selection of
// optional items.
var mandatoryCatalog = []catalogEntry{
	{Name: "Whole Milk", PricePerUnit: 2.5, Capacity: 1, CapacityUnit: "L", Category: "Dairy"},
	{Name: "Chicken", PricePerUnit: 7.0, Capacity: 1, CapacityUnit: "kg", Category: "Meat"},
	{Name: "Water", PricePerUnit: 1.0, Capacity: 1, CapacityUnit: "L", Category: "Beverage"},
}

var optionalCatalog = []catalogEntry{
	{Name: "Carrots", PricePerUnit: 1.0, Capacity: 0.5, CapacityUnit: "kg", Category: "Vegetables"},
	{Name: "Apples", PricePerUnit: 0.5, Capacity: 4, CapacityUnit: "pcs", Category: "Fruits"},
	{Name: "Bananas", PricePerUnit: 0.3, Capacity: 6, CapacityUnit: "pcs", Category: "Fruits"},
	{Name: "Fish", PricePerUnit: 9.0, Capacity: 1, CapacityUnit: "kg", Category: "Seafood"},
	{Name: "Beef", PricePerUnit: 12.0, Capacity: 1, CapacityUnit: "kg", Category: "Meat"},
	{Name: "Cheese", PricePerUnit: 3.0, Capacity: 0.25, CapacityUnit: "kg", Category: "Dairy"},
	{Name: "Tomato", PricePerUnit: 0.8, Capacity: 0.5, CapacityUnit: "kg", Category: "Vegetables"},
	{Name: "Onion", PricePerUnit: 0.5, Capacity: 0.5, CapacityUnit: "kg", Category: "Vegetables"},
	{Name: "Butter", PricePerUnit: 2.5, Capacity: 0.25, CapacityUnit: "kg", Category: "Dairy"},
	{Name: "Yogurt", PricePerUnit: 1.5, Capacity: 0.5, CapacityUnit: "L", Category: "Dairy"},
	{Name: "Cereal", PricePerUnit: 3.0, Capacity: 1, CapacityUnit: "box", Category: "Grocery"},
	{Name: "Rice", PricePerUnit: 2.0, Capacity: 1, CapacityUnit: "kg", Category: "Grains"},
}

// Store is the persistence surface the seeder needs.
type Store interface {
	InsertReceipt(ctx context.Context, receipt models.Receipt) error
	FindReceiptsByUser(ctx context.Context, username string, limit int) ([]models.Receipt, error)
	InsertItems(ctx context.Context, items []models.ItemRecord) error
}

// Generator produces synthetic receipts and materializes item records from
// them. All randomness flows through the injected source so seeding runs
// are reproducible under a fixed seed.
type Generator struct {
	store  Store
	rng    *rand.Rand
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator wires a seeding generator. A nil rng gets a clock-seeded one.
func NewGenerator(store Store, rng *rand.Rand, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		store:  store,
		rng:    rng,
		logger: logger,
		now:    time.Now,
	}
}

// BuildReceipt assembles one synthetic receipt for the user. Each line item
// gets a start date the day after purchase and, half the time, an end date
// three to seven days later; end dates landing in the future are dropped to
// simulate ongoing consumption.
func (g *Generator) BuildReceipt(username, window string) models.Receipt {
	purchaseDate := g.purchaseDateFor(window)
	items := g.buildItems()

	var subtotal float64
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	tax := round2(subtotal * taxRate)

	now := g.now()
	for i := range items {
		start := purchaseDate.AddDate(0, 0, 1)
		items[i].StartDate = &start

		if g.rng.Float64() < 0.5 {
			continue
		}
		end := start.AddDate(0, 0, 3+g.rng.Intn(5))
		if end.After(now) {
			continue
		}
		items[i].EndDate = &end
	}

	return models.Receipt{
		StoreName:     storeName,
		StoreLocation: storeLocation,
		PurchaseDate:  purchaseDate,
		Items:         items,
		Subtotal:      round2(subtotal),
		Tax:           tax,
		Total:         round2(subtotal + tax),
		PaymentMethod: paymentMethod,
		ReceiptNumber: fmt.Sprintf("SM-%s-%04d", purchaseDate.Format("20060102-1504"), 1+g.rng.Intn(9999)),
		UserName:      username,
	}
}

// InsertReceipts generates and persists num receipts, returning how many
// were stored.
func (g *Generator) InsertReceipts(ctx context.Context, username, window string, num int) (int, error) {
	inserted := 0
	for i := 0; i < num; i++ {
		receipt := g.BuildReceipt(username, window)
		if err := g.store.InsertReceipt(ctx, receipt); err != nil {
			return inserted, fmt.Errorf("insert receipt %s: %w", receipt.ReceiptNumber, err)
		}
		inserted++
	}

	g.logger.Info("receipts seeded",
		zap.String("username", username),
		zap.String("window", window),
		zap.Int("count", inserted))

	return inserted, nil
}

func (g *Generator) buildItems() []models.ReceiptItem {
	items := make([]models.ReceiptItem, 0, mandatoryPerReceipt+optionalPerReceipt)
	for _, entry := range mandatoryCatalog {
		items = append(items, g.buildItem(entry))
	}

	picks := g.rng.Perm(len(optionalCatalog))
	for _, idx := range picks[:optionalPerReceipt] {
		items = append(items, g.buildItem(optionalCatalog[idx]))
	}
	return items
}

func (g *Generator) buildItem(entry catalogEntry) models.ReceiptItem {
	quantity := 1 + g.rng.Intn(3)
	return models.ReceiptItem{
		Name:         entry.Name,
		Quantity:     quantity,
		PricePerUnit: entry.PricePerUnit,
		TotalPrice:   round2(float64(quantity) * entry.PricePerUnit),
		Capacity:     entry.Capacity,
		CapacityUnit: entry.CapacityUnit,
		Category:     entry.Category,
	}
}

// purchaseDateFor picks a purchase timestamp inside the requested window:
// the last seven days for "recent", thirty to ninety days ago for
// "expired", sometime today for "today", and anywhere in the trailing 120
// days otherwise.
func (g *Generator) purchaseDateFor(window string) time.Time {
	now := g.now()
	switch window {
	case WindowRecent:
		return now.AddDate(0, 0, -7).Add(time.Duration(g.rng.Intn(7*24*3600)) * time.Second)
	case WindowExpired:
		daysAgo := 30 + g.rng.Intn(61)
		return now.AddDate(0, 0, -daysAgo).Add(-time.Duration(g.rng.Intn(24*3600)) * time.Second)
	case WindowToday:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return dayStart.Add(time.Duration(g.rng.Intn(24*3600)) * time.Second)
	default:
		return now.AddDate(0, 0, -g.rng.Intn(120)).Add(time.Duration(g.rng.Intn(24*3600)) * time.Second)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
