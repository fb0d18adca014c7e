package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tourwise/billing/common"
	"github.com/tourwise/billing/db/models"
	"github.com/uptrace/bun"
)

// CreditDecision is the outcome of evaluating a proposed invoice total
// against an agent's configured limit and current exposure.
type CreditDecision struct {
	Approved    bool
	Limit       decimal.Decimal
	Outstanding decimal.Decimal
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (d CreditDecision) Violation() *PolicyViolationError {
	return &PolicyViolationError{
		Reason: fmt.Sprintf(
			"credit limit exceeded: limit %s, outstanding %s, available %s, requested %s",
			d.Limit.StringFixed(2), d.Outstanding.StringFixed(2),
			d.Available.StringFixed(2), d.Requested.StringFixed(2)),
	}
}

// EvaluateCreditLimit is the pure half of the credit check.
func EvaluateCreditLimit(limit, outstanding, requested decimal.Decimal) CreditDecision {
	available := limit.Sub(outstanding).Round(2)
	return CreditDecision{
		Approved:    !requested.GreaterThan(available),
		Limit:       limit,
		Outstanding: outstanding.Round(2),
		Available:   available,
		Requested:   requested,
	}
}

// checkCreditLimit enforces the agent's credit limit inside the same
// transaction that inserts the invoice. The FOR UPDATE read of the credit
// terms row serializes concurrent creations for the same agent, so two
// invoices racing near the limit cannot both pass.
func (svc *BillingService) checkCreditLimit(ctx context.Context, tx bun.Tx, agentID int64, proposed decimal.Decimal) error {
	terms := models.CreditTerms{}
	err := tx.NewSelect().Model(&terms).Where("agent_id = ?", agentID).For("UPDATE").Limit(1).Scan(ctx)
	if err != nil {
		// no credit terms configured means the check is disabled
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if !terms.CreditLimit.IsPositive() {
		return nil
	}

	outstanding, err := sumOutstandingInvoiceTotals(ctx, tx, agentID, common.OutstandingInvoiceStatuses)
	if err != nil {
		return err
	}

	decision := EvaluateCreditLimit(terms.CreditLimit, outstanding, proposed)
	if !decision.Approved {
		return decision.Violation()
	}
	return nil
}

// SumOutstandingInvoiceTotals returns the agent's exposure over the given
// statuses, outside of any transaction. Advisory reads (reporting screens)
// use this, the credit check itself re-reads inside its transaction.
func (svc *BillingService) SumOutstandingInvoiceTotals(ctx context.Context, agentID int64, statuses []string) (decimal.Decimal, error) {
	return sumOutstandingInvoiceTotals(ctx, svc.DB, agentID, statuses)
}

func sumOutstandingInvoiceTotals(ctx context.Context, db bun.IDB, agentID int64, statuses []string) (decimal.Decimal, error) {
	var outstanding decimal.Decimal
	err := db.NewSelect().
		Model((*models.Invoice)(nil)).
		ColumnExpr("coalesce(sum(total), 0)").
		Where("agent_id = ?", agentID).
		Where("status IN (?)", bun.In(statuses)).
		Scan(ctx, &outstanding)
	return outstanding, err
}
