package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceItem : Price List Entry Model
//
// Rate card rows owned by the pricing subsystem, keyed by
// (service type, origin zone, destination zone, vehicle type).
type PriceItem struct {
	ID                 int64           `json:"id" bun:",pk,autoincrement"`
	ServiceType        string          `json:"service_type" bun:",notnull"`
	FromZone           string          `json:"from_zone" bun:",notnull"`
	ToZone             string          `json:"to_zone" bun:",notnull"`
	VehicleType        string          `json:"vehicle_type" bun:",notnull"`
	TransferPrice      decimal.Decimal `json:"transfer_price" bun:"type:numeric(12,2),notnull"`
	DriverTip          decimal.Decimal `json:"driver_tip" bun:"type:numeric(12,2),notnull"`
	AccessorySurcharge decimal.Decimal `json:"accessory_surcharge" bun:"type:numeric(12,2),notnull"`
	CreatedAt          time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	DeletedAt          time.Time       `json:"-" bun:",soft_delete,nullzero"`
}
