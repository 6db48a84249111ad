package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Receipt is a store receipt as ingested or synthesized for seeding. The
// expiry date is optional on the wire; ingestion defaults it to the purchase
// date plus fifteen days.
type Receipt struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StoreName     string             `bson:"store_name" json:"store_name"`
	StoreLocation string             `bson:"store_location" json:"store_location"`
	PurchaseDate  time.Time          `bson:"purchase_date" json:"purchase_date"`
	ExpiryDate    *time.Time         `bson:"expiry_date,omitempty" json:"expiry_date,omitempty"`
	Items         []ReceiptItem      `bson:"items" json:"items"`
	Subtotal      float64            `bson:"subtotal" json:"subtotal"`
	Tax           float64            `bson:"tax" json:"tax"`
	Total         float64            `bson:"total" json:"total"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	ReceiptNumber string             `bson:"receipt_number" json:"receipt_number"`
	UserName      string             `bson:"user_name" json:"user_name"`
	ImageURL      string             `bson:"image_url" json:"image_url"`
}

// ReceiptItem is a single line on a receipt. Lifecycle dates start out nil
// and are filled in by the usage simulator.
type ReceiptItem struct {
	Name                  string     `bson:"name" json:"name"`
	Quantity              int        `bson:"quantity" json:"quantity"`
	PricePerUnit          float64    `bson:"price_per_unit" json:"price_per_unit"`
	TotalPrice            float64    `bson:"total_price" json:"total_price"`
	Capacity              float64    `bson:"capacity" json:"capacity"`
	CapacityUnit          string     `bson:"capacity_unit" json:"capacity_unit"`
	Category              string     `bson:"category" json:"category"`
	StartDate             *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate               *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	PredictedConsumedDate *time.Time `bson:"predicted_consumed_date,omitempty" json:"predicted_consumed_date,omitempty"`
}
