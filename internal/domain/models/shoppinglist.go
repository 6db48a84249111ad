package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trolley lifecycle states for a shopping list.
const (
	TrolleyInProgress = "inProgress"
	TrolleyDone       = "done"
)

// Sources for shopping list items.
const (
	SourceAI     = "ai"
	SourceManual = "manual"
)

// ListItemStatusPending is the initial status of a freshly recommended item.
const ListItemStatusPending = "pending"

// ShoppingList is a user's active cart of items pending purchase. The service
// only ever computes a new value for it; closing or archiving a list is
// someone else's job.
type ShoppingList struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserName       string             `bson:"userName" json:"userName"`
	Items          []ShoppingListItem `bson:"items" json:"items"`
	TotalItems     int                `bson:"totalItems" json:"totalItems"`
	EstimatedTotal float64            `bson:"estimatedTotal" json:"estimatedTotal"`
	TrolleyStatus  string             `bson:"trolley_status" json:"trolley_status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ShoppingListItem is one line of a shopping list. Price is the unit price;
// TotalPrice is recomputed by the merge step.
type ShoppingListItem struct {
	ItemName              string  `bson:"itemName" json:"itemName"`
	Quantity              int     `bson:"quantity" json:"quantity"`
	Capacity              float64 `bson:"capacity,omitempty" json:"capacity,omitempty"`
	CapacityUnit          string  `bson:"capacity_unit" json:"capacity_unit"`
	Price                 float64 `bson:"price" json:"price"`
	TotalPrice            float64 `bson:"total_price,omitempty" json:"total_price,omitempty"`
	PredictedConsumedDate string  `bson:"predicted_consumed_date,omitempty" json:"predicted_consumed_date,omitempty"`
	Suggestion            string  `bson:"suggestion,omitempty" json:"suggestion,omitempty"`
	Source                string  `bson:"source" json:"source"`
	Status                string  `bson:"status" json:"status"`
}

// RecommendationResult is the outcome of one recommendation run for a user.
type RecommendationResult struct {
	Username        string             `json:"username"`
	ModelTrained    bool               `json:"model_trained"`
	Recommendations []ShoppingListItem `json:"recommendations"`
	ShoppingList    ShoppingList       `json:"shopping_list"`
}
