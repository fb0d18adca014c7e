package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Agent : Agent Model
//
// Agents are owned by the CRM subsystem, this service only reads them.
type Agent struct {
	ID          int64          `json:"id" bun:",pk,autoincrement"`
	Name        string         `json:"name" bun:",notnull"`
	Email       sql.NullString `json:"email"`
	CreditTerms *CreditTerms   `json:"credit_terms,omitempty" bun:"rel:has-one,join:id=agent_id"`
	CreatedAt   time.Time      `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	DeletedAt   time.Time      `json:"-" bun:",soft_delete,nullzero"`
}

// CreditTerms : Credit Terms Model
//
// Optional one-to-one with Agent. A missing row or a non-positive limit
// means credit checking is disabled for that agent.
type CreditTerms struct {
	ID          int64           `json:"id" bun:",pk,autoincrement"`
	AgentID     int64           `json:"agent_id" bun:",unique,notnull"`
	Agent       *Agent          `json:"-" bun:"rel:belongs-to,join:agent_id=id"`
	CreditLimit decimal.Decimal `json:"credit_limit" bun:"type:numeric(12,2),notnull"`
	CreditDays  int             `json:"credit_days" bun:",notnull,default:30"`
	CreatedAt   time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
