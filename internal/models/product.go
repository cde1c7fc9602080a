package models

import (
	"time"

	"github.com/google/uuid"
)

// Product publication status values.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusArchived  = "archived"
)

// Product is a farmer's sellable listing. Prices are stored in the smallest
// currency unit (e.g. kobo) to avoid floating point issues.
type Product struct {
	BaseModel
	FarmerID          uuid.UUID  `gorm:"type:uuid;index" json:"farmer_id"`
	FarmID            *uuid.UUID `gorm:"type:uuid" json:"farm_id,omitempty"`
	Name              string     `json:"name"`
	Slug              string     `gorm:"uniqueIndex" json:"slug"`
	Description       *string    `json:"description,omitempty"`
	Category          string     `json:"category"`
	Unit              string     `json:"unit"`
	Tags              StringList `json:"tags"`
	PriceCents        int64      `json:"price_cents"`
	CurrencyCode      string     `json:"currency_code"` // ISO-4217, e.g. "NGN"
	MinOrderQty       int        `json:"min_order_qty"`
	QuantityAvailable int        `json:"quantity_available"`
	Organic           bool       `json:"organic"`
	Perishable        bool       `json:"perishable"`
	HarvestDate       *time.Time `json:"expected_harvest_date,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	Status            string     `json:"status"`     // draft|published|archived
	Visibility        string     `json:"visibility"` // local_only|public|both
	Images            StringList `json:"images"`
}
