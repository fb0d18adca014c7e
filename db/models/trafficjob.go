package models

import (
	"time"
)

// TrafficJob : Trip Job Model
//
// Operational trip records owned by the dispatch subsystem. Batch invoice
// synthesis reads them, nothing here ever writes them.
type TrafficJob struct {
	ID            int64     `json:"id" bun:",pk,autoincrement"`
	CustomerID    int64     `json:"customer_id" bun:",nullzero"`
	Customer      *Customer `json:"-" bun:"rel:belongs-to,join:customer_id=id"`
	ServiceType   string    `json:"service_type" bun:",notnull"`
	FromZone      string    `json:"from_zone" bun:",nullzero"`
	ToZone        string    `json:"to_zone" bun:",nullzero"`
	VehicleType   string    `json:"vehicle_type" bun:",nullzero"`
	PassengerName string    `json:"passenger_name" bun:",nullzero"`
	TravelDate    time.Time `json:"travel_date" bun:",nullzero"`
	CreatedAt     time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	DeletedAt     time.Time `json:"-" bun:",soft_delete,nullzero"`
}

// Routable reports whether the job carries enough routing data to be priced.
func (j *TrafficJob) Routable() bool {
	return j.FromZone != "" && j.ToZone != "" && j.VehicleType != ""
}
