package models

import (
	"time"

	"github.com/google/uuid"
)

// Farm is the optional land record created together with its owning farmer.
type Farm struct {
	BaseModel
	FarmerID         uuid.UUID  `gorm:"type:uuid;index" json:"farmer_id"`
	FarmName         string     `json:"farm_name"`
	Location         *string    `json:"location,omitempty"` // WKT point, e.g. "POINT(3.3792 6.5244)"
	AddressText      string     `json:"address_text"`
	FarmSizeHectares *float64   `json:"farm_size_hectares,omitempty"`
	FarmType         string     `json:"farm_type"`
	PrimaryCrops     StringList `json:"primary_crops"`
}

// FarmActivity records work performed on a farm: planting, fertilizing,
// harvesting and the like.
type FarmActivity struct {
	BaseModel
	FarmerID            uuid.UUID  `gorm:"type:uuid;index" json:"farmer_id"`
	FarmID              *uuid.UUID `gorm:"type:uuid" json:"farm_id,omitempty"`
	ActivityType        string     `json:"activity_type"`
	Description         string     `json:"description"`
	ActivityDate        time.Time  `json:"activity_date"`
	Status              string     `gorm:"default:planned" json:"status"`
	CropName            *string    `json:"crop_name,omitempty"`
	FieldPlot           *string    `json:"field_plot,omitempty"`
	InputsUsed          *string    `json:"inputs_used,omitempty"` // JSON list of {item, quantity, unit}
	QuantityMeasured    *float64   `json:"quantity_measured,omitempty"`
	UnitMeasured        *string    `json:"unit_measured,omitempty"`
	ExpectedHarvestDate *time.Time `json:"expected_harvest_date,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
}
