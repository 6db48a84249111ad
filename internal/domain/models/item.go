package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemStatus describes where a purchased item sits in its consumption lifecycle.
type ItemStatus string

const (
	StatusNotOpened ItemStatus = "not opened"
	StatusConsuming ItemStatus = "consuming"
	StatusConsumed  ItemStatus = "consumed"
	StatusExpired   ItemStatus = "expired"
)

// ItemRecord is one tracked unit of a purchased grocery product together with
// its lifecycle timestamps. StartDate, EndDate and PredictedConsumedDate are
// pointers because an item may never have been opened, may still be in use,
// or may not have been forecast yet.
type ItemRecord struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserName              string             `bson:"user_name" json:"user_name"`
	Name                  string             `bson:"name" json:"name"`
	CategoryName          string             `bson:"category_name" json:"category_name"`
	ReceiptNumber         string             `bson:"receipt_number" json:"receipt_number"`
	Status                ItemStatus         `bson:"status" json:"status"`
	Location              string             `bson:"location,omitempty" json:"location,omitempty"`
	PurchaseDate          time.Time          `bson:"purchase_date" json:"purchase_date"`
	ExpiryDate            time.Time          `bson:"expiry_date" json:"expiry_date"`
	Price                 float64            `bson:"price" json:"price"`
	Quantity              int                `bson:"quantity" json:"quantity"`
	Capacity              *float64           `bson:"capacity,omitempty" json:"capacity,omitempty"`
	CapacityUnit          string             `bson:"capacity_unit,omitempty" json:"capacity_unit,omitempty"`
	StartDate             *time.Time         `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate               *time.Time         `bson:"end_date,omitempty" json:"end_date,omitempty"`
	PredictedConsumedDate *time.Time         `bson:"predicted_consumed_date,omitempty" json:"predicted_consumed_date,omitempty"`
}

// CapacityUnit is one row of the static capacity-unit reference table.
type CapacityUnit struct {
	Symbol           string  `bson:"symbol" json:"symbol"`
	ConversionFactor float64 `bson:"conversion_factor" json:"conversion_factor"`
}
