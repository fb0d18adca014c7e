package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Invoice : Invoice Model
//
// An invoice is directed at exactly one counterparty: AgentID or CustomerID
// is set, never both. The check constraint backing this lives in the init
// migration.
type Invoice struct {
	ID         int64           `json:"id" bun:",pk,autoincrement"`
	Number     string          `json:"number" bun:",unique,notnull"`
	Type       string          `json:"type" bun:",notnull,default:'standard'"`
	AgentID    int64           `json:"agent_id,omitempty" bun:",nullzero"`
	Agent      *Agent          `json:"-" bun:"rel:belongs-to,join:agent_id=id"`
	CustomerID int64           `json:"customer_id,omitempty" bun:",nullzero"`
	Customer   *Customer       `json:"-" bun:"rel:belongs-to,join:customer_id=id"`
	Currency   string          `json:"currency" bun:",notnull,default:'EUR'"`
	IssueDate  time.Time       `json:"issue_date" bun:",notnull"`
	DueDate    time.Time       `json:"due_date" bun:",notnull"`
	Subtotal   decimal.Decimal `json:"subtotal" bun:"type:numeric(12,2),notnull"`
	TaxAmount  decimal.Decimal `json:"tax_amount" bun:"type:numeric(12,2),notnull"`
	Total      decimal.Decimal `json:"total" bun:"type:numeric(12,2),notnull"`
	Status     string          `json:"status" bun:",notnull,default:'draft'"`
	BatchID    string          `json:"batch_id,omitempty" bun:",nullzero"`
	Lines      []*InvoiceLine  `json:"lines,omitempty" bun:"rel:has-many,join:id=invoice_id"`
	Payments   []*Payment      `json:"payments,omitempty" bun:"rel:has-many,join:id=invoice_id"`
	CreatedAt  time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt  bun.NullTime    `json:"updated_at"`
	PostedAt   bun.NullTime    `json:"posted_at"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
