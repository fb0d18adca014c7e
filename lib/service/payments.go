package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tourwise/billing/common"
	"github.com/tourwise/billing/db/models"
	"github.com/uptrace/bun"
)

type ApplyPaymentParams struct {
	InvoiceID   int64
	Amount      decimal.Decimal
	Method      string
	PaymentDate time.Time
	Reference   string
}

// DecidePayment is the pure half of payment application: it validates the
// amount against the invoice state and returns the status the invoice moves
// to once the payment is booked.
func DecidePayment(status string, total, alreadyPaid, amount decimal.Decimal) (newStatus string, err error) {
	switch status {
	case common.InvoiceStatusCancelled:
		return "", &InvalidStateError{Operation: opPay, Status: status}
	case common.InvoiceStatusPaid:
		return "", &InvalidStateError{Operation: opPay, Status: status}
	}
	if !amount.IsPositive() {
		return "", &PolicyViolationError{Reason: "payment amount must be positive"}
	}
	remaining := total.Sub(alreadyPaid)
	if amount.GreaterThan(remaining) {
		return "", &PolicyViolationError{
			Reason: fmt.Sprintf("payment exceeds remaining balance: requested %s, remaining %s, overage %s",
				amount.StringFixed(2), remaining.StringFixed(2), amount.Sub(remaining).StringFixed(2)),
		}
	}
	if alreadyPaid.Add(amount).GreaterThanOrEqual(total) {
		return common.InvoiceStatusPaid, nil
	}
	return common.InvoiceStatusPartiallyPaid, nil
}

// ApplyPayment books a payment against an invoice and advances the invoice
// status. The invoice row is locked for the duration of the transaction, so
// two concurrent payments cannot both pass the balance check.
func (svc *BillingService) ApplyPayment(ctx context.Context, params ApplyPaymentParams) (*models.Payment, error) {
	paymentDate := params.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	payment := &models.Payment{
		InvoiceID:   params.InvoiceID,
		Amount:      params.Amount,
		Method:      params.Method,
		PaymentDate: paymentDate,
		Reference:   params.Reference,
	}

	var invoice models.Invoice
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockInvoice(ctx, tx, params.InvoiceID, &invoice); err != nil {
			return err
		}
		alreadyPaid, err := sumPayments(ctx, tx, params.InvoiceID)
		if err != nil {
			return err
		}
		newStatus, err := DecidePayment(invoice.Status, invoice.Total, alreadyPaid, params.Amount)
		if err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(payment).Exec(ctx); err != nil {
			return err
		}
		invoice.Status = newStatus
		_, err = tx.NewUpdate().Model(&invoice).
			Column("status", "updated_at").
			WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	svc.publishInvoiceEvent(ctx, common.EventPaymentApplied, &invoice)
	if invoice.Status == common.InvoiceStatusPaid {
		svc.publishInvoiceEvent(ctx, common.EventInvoicePaid, &invoice)
	}
	return payment, nil
}

// InvoiceBalance reports the invoice total, the sum of booked payments and
// the remaining balance. The balance is always computed on read, never
// stored redundantly.
func (svc *BillingService) InvoiceBalance(ctx context.Context, invoiceID int64) (total, paid, remaining decimal.Decimal, err error) {
	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return total, paid, remaining, err
	}
	paid, err = sumPayments(ctx, svc.DB, invoiceID)
	if err != nil {
		return total, paid, remaining, err
	}
	return invoice.Total, paid, invoice.Total.Sub(paid), nil
}

func (svc *BillingService) PaymentsFor(ctx context.Context, invoiceID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := svc.DB.NewSelect().Model(&payments).Where("invoice_id = ?", invoiceID).OrderExpr("id ASC").Scan(ctx)
	return payments, err
}

func sumPayments(ctx context.Context, db bun.IDB, invoiceID int64) (decimal.Decimal, error) {
	var paid decimal.Decimal
	err := db.NewSelect().
		Model((*models.Payment)(nil)).
		ColumnExpr("coalesce(sum(amount), 0)").
		Where("invoice_id = ?", invoiceID).
		Scan(ctx, &paid)
	return paid, err
}
