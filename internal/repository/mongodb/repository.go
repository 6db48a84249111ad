package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/restockd/restock/internal/domain/models"
)

const (
	itemsCollection         = "items"
	receiptsCollection      = "receipts"
	shoppingListsCollection = "shoppinglists"
	capacityUnitsCollection = "capacityunit"
)

// activeListWindowDays is the freshness window for an in-progress shopping
// list; older lists are considered stale and a new one is created.
const activeListWindowDays = 14

// Repository is the MongoDB-backed persistence collaborator for items,
// receipts, shopping lists and the capacity-unit reference table.
type Repository struct {
	client *mongo.Client
	dbName string
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{client: client, dbName: dbName}, nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *Repository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// nameFilter builds an anchored case-insensitive match for an item name.
// Anchoring keeps "milk" from matching "milkshake".
func nameFilter(name string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
}

// FindItemsByUser retrieves every item record belonging to the user.
func (r *Repository) FindItemsByUser(ctx context.Context, username string) ([]models.ItemRecord, error) {
	cursor, err := r.collection(itemsCollection).Find(ctx, bson.M{"user_name": username})
	if err != nil {
		return nil, fmt.Errorf("find items for %s: %w", username, err)
	}

	var items []models.ItemRecord
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", username, err)
	}
	return items, nil
}

// FindConsumedItemsSince retrieves the user's consumed records of one item
// type whose end date falls on or after since.
func (r *Repository) FindConsumedItemsSince(ctx context.Context, username, itemName string, since time.Time) ([]models.ItemRecord, error) {
	filter := bson.M{
		"user_name": username,
		"name":      nameFilter(itemName),
		"status":    models.StatusConsumed,
		"end_date":  bson.M{"$gte": since},
	}

	cursor, err := r.collection(itemsCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find consumed %s items: %w", itemName, err)
	}

	var items []models.ItemRecord
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode consumed %s items: %w", itemName, err)
	}
	return items, nil
}

// UpdateItemField sets a single field on an item document.
func (r *Repository) UpdateItemField(ctx context.Context, id primitive.ObjectID, field string, value interface{}) error {
	_, err := r.collection(itemsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("update item field %s: %w", field, err)
	}
	return nil
}

// FindLatestCatalogItem returns the most recently purchased record matching
// the item name that carries a non-empty capacity unit, or nil when none
// exists.
func (r *Repository) FindLatestCatalogItem(ctx context.Context, itemName string) (*models.ItemRecord, error) {
	filter := bson.M{
		"name":          nameFilter(itemName),
		"capacity_unit": bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "purchase_date", Value: -1}})

	var item models.ItemRecord
	err := r.collection(itemsCollection).FindOne(ctx, filter, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find catalog item %s: %w", itemName, err)
	}
	return &item, nil
}

// FindOrCreateActiveShoppingList returns the user's in-progress shopping
// list from the freshness window, creating an empty one when none exists.
func (r *Repository) FindOrCreateActiveShoppingList(ctx context.Context, username string) (models.ShoppingList, error) {
	now := time.Now()
	filter := bson.M{
		"userName":       username,
		"trolley_status": models.TrolleyInProgress,
		"createdAt":      bson.M{"$gte": now.AddDate(0, 0, -activeListWindowDays)},
	}

	var list models.ShoppingList
	err := r.collection(shoppingListsCollection).FindOne(ctx, filter).Decode(&list)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.ShoppingList{}, fmt.Errorf("find shopping list for %s: %w", username, err)
	}

	list = models.ShoppingList{
		UserName:      username,
		Items:         []models.ShoppingListItem{},
		TrolleyStatus: models.TrolleyInProgress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := r.collection(shoppingListsCollection).InsertOne(ctx, list)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("create shopping list for %s: %w", username, err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		list.ID = id
	}
	return list, nil
}

// SaveShoppingList writes the computed shopping list back. Concurrent saves
// for the same user are last-write-wins.
func (r *Repository) SaveShoppingList(ctx context.Context, list models.ShoppingList) error {
	if list.ID.IsZero() {
		if _, err := r.collection(shoppingListsCollection).InsertOne(ctx, list); err != nil {
			return fmt.Errorf("insert shopping list for %s: %w", list.UserName, err)
		}
		return nil
	}

	_, err := r.collection(shoppingListsCollection).ReplaceOne(ctx, bson.M{"_id": list.ID}, list)
	if err != nil {
		return fmt.Errorf("replace shopping list for %s: %w", list.UserName, err)
	}
	return nil
}

// FindCapacityUnit looks up one row of the capacity-unit reference table,
// returning nil when the symbol is unknown.
func (r *Repository) FindCapacityUnit(ctx context.Context, symbol string) (*models.CapacityUnit, error) {
	var unit models.CapacityUnit
	err := r.collection(capacityUnitsCollection).FindOne(ctx, bson.M{"symbol": symbol}).Decode(&unit)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find capacity unit %s: %w", symbol, err)
	}
	return &unit, nil
}

// InsertReceipt stores one receipt document.
func (r *Repository) InsertReceipt(ctx context.Context, receipt models.Receipt) error {
	if _, err := r.collection(receiptsCollection).InsertOne(ctx, receipt); err != nil {
		return fmt.Errorf("insert receipt %s: %w", receipt.ReceiptNumber, err)
	}
	return nil
}

// FindReceiptsByUser retrieves up to limit receipts for the user.
func (r *Repository) FindReceiptsByUser(ctx context.Context, username string, limit int) ([]models.Receipt, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection(receiptsCollection).Find(ctx, bson.M{"user_name": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("find receipts for %s: %w", username, err)
	}

	var receipts []models.Receipt
	if err := cursor.All(ctx, &receipts); err != nil {
		return nil, fmt.Errorf("decode receipts for %s: %w", username, err)
	}
	return receipts, nil
}

// InsertItems bulk-inserts materialized item records.
func (r *Repository) InsertItems(ctx context.Context, items []models.ItemRecord) error {
	if len(items) == 0 {
		return nil
	}

	docs := make([]interface{}, len(items))
	for i, item := range items {
		docs[i] = item
	}

	if _, err := r.collection(itemsCollection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert %d items: %w", len(items), err)
	}
	return nil
}

// DistinctUsernames lists every user with at least one item record.
func (r *Repository) DistinctUsernames(ctx context.Context) ([]string, error) {
	values, err := r.collection(itemsCollection).Distinct(ctx, "user_name", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list distinct usernames: %w", err)
	}

	usernames := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok && name != "" {
			usernames = append(usernames, name)
		}
	}
	return usernames, nil
}
