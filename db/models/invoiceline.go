package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLine : Invoice Line Model
//
// Lines are owned exclusively by their invoice and are replaced as a whole
// set on every edit while the invoice is a draft.
type InvoiceLine struct {
	ID           int64           `json:"id" bun:",pk,autoincrement"`
	InvoiceID    int64           `json:"invoice_id" bun:",notnull"`
	Invoice      *Invoice        `json:"-" bun:"rel:belongs-to,join:invoice_id=id"`
	TrafficJobID int64           `json:"traffic_job_id,omitempty" bun:",nullzero"`
	TrafficJob   *TrafficJob     `json:"-" bun:"rel:belongs-to,join:traffic_job_id=id"`
	Description  string          `json:"description" bun:",nullzero"`
	Quantity     decimal.Decimal `json:"quantity" bun:"type:numeric(12,2),notnull"`
	UnitPrice    decimal.Decimal `json:"unit_price" bun:"type:numeric(12,2),notnull"`
	TaxRate      decimal.Decimal `json:"tax_rate" bun:"type:numeric(5,2),notnull"`
	TaxAmount    decimal.Decimal `json:"tax_amount" bun:"type:numeric(12,2),notnull"`
	LineTotal    decimal.Decimal `json:"line_total" bun:"type:numeric(12,2),notnull"`
	CreatedAt    time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
