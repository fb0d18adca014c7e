package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment : Payment Model
//
// Payments are append-only. There are no update or delete operations, a
// wrong payment is corrected by the accountant with a counter-booking in the
// surrounding back office, never by mutating history here.
type Payment struct {
	ID          int64           `json:"id" bun:",pk,autoincrement"`
	InvoiceID   int64           `json:"invoice_id" bun:",notnull"`
	Invoice     *Invoice        `json:"-" bun:"rel:belongs-to,join:invoice_id=id"`
	Amount      decimal.Decimal `json:"amount" bun:"type:numeric(12,2),notnull"`
	Method      string          `json:"method" bun:",nullzero"`
	PaymentDate time.Time       `json:"payment_date" bun:",notnull"`
	Reference   string          `json:"reference" bun:",nullzero"`
	CreatedAt   time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
