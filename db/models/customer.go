package models

import (
	"database/sql"
	"time"
)

// Customer : Customer Model
//
// Customers are owned by the CRM subsystem, this service only reads them.
type Customer struct {
	ID         int64          `json:"id" bun:",pk,autoincrement"`
	Name       string         `json:"name" bun:",notnull"`
	Email      sql.NullString `json:"email"`
	CreditDays int            `json:"credit_days" bun:",nullzero"`
	CreatedAt  time.Time      `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	DeletedAt  time.Time      `json:"-" bun:",soft_delete,nullzero"`
}
