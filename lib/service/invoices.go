package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tourwise/billing/common"
	"github.com/tourwise/billing/db/models"
	"github.com/uptrace/bun"
)

const (
	opPost         = "post"
	opCancel       = "cancel"
	opReplaceLines = "replace lines of"
	opPay          = "pay"
)

// ensureDraft guards every mutation that is only legal before posting.
func ensureDraft(operation, status string) error {
	if status != common.InvoiceStatusDraft {
		return &InvalidStateError{Operation: operation, Status: status}
	}
	return nil
}

// InvoiceLineParams is one line as submitted by the caller. Amount is a
// flat-amount shorthand used when UnitPrice is absent; Quantity defaults to
// 1 and TaxRate to 0.
type InvoiceLineParams struct {
	TrafficJobID int64
	Description  string
	Amount       decimal.Decimal
	UnitPrice    *decimal.Decimal
	Quantity     *decimal.Decimal
	TaxRate      *decimal.Decimal
}

func normalizeLine(params InvoiceLineParams) (*models.InvoiceLine, error) {
	unitPrice := params.Amount
	if params.UnitPrice != nil {
		unitPrice = *params.UnitPrice
	}
	quantity := decimal.NewFromInt(1)
	if params.Quantity != nil {
		quantity = *params.Quantity
	}
	taxRate := decimal.Zero
	if params.TaxRate != nil {
		taxRate = *params.TaxRate
	}
	if quantity.IsNegative() {
		return nil, &PolicyViolationError{Reason: "line quantity must not be negative"}
	}
	if taxRate.IsNegative() {
		return nil, &PolicyViolationError{Reason: "line tax rate must not be negative"}
	}

	taxAmount, lineTotal := LineAmounts(unitPrice, quantity, taxRate)
	return &models.InvoiceLine{
		TrafficJobID: params.TrafficJobID,
		Description:  params.Description,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		TaxRate:      taxRate,
		TaxAmount:    taxAmount,
		LineTotal:    lineTotal,
	}, nil
}

func normalizeLines(lineParams []InvoiceLineParams) ([]*models.InvoiceLine, error) {
	lines := make([]*models.InvoiceLine, 0, len(lineParams))
	for _, params := range lineParams {
		line, err := normalizeLine(params)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func jobRefs(lineParams []InvoiceLineParams) []int64 {
	var ids []int64
	for _, params := range lineParams {
		if params.TrafficJobID != 0 {
			ids = append(ids, params.TrafficJobID)
		}
	}
	return ids
}

type CreateInvoiceParams struct {
	AgentID    int64
	CustomerID int64
	Type       string
	Currency   string
	IssueDate  time.Time
	DueDate    time.Time
	Lines      []InvoiceLineParams
}

// CreateInvoice runs the full creation operation: counterparty and job
// validation, line normalization, totals, credit policy, number generation
// and the atomic header+lines insert. Any failure leaves no partial invoice.
func (svc *BillingService) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*models.Invoice, error) {
	if (params.AgentID == 0) == (params.CustomerID == 0) {
		return nil, &PolicyViolationError{Reason: "invoice must be directed at exactly one of agent or customer"}
	}
	invoiceType := params.Type
	if invoiceType == "" {
		invoiceType = common.InvoiceTypeStandard
	}
	switch invoiceType {
	case common.InvoiceTypeStandard, common.InvoiceTypeTransfer, common.InvoiceTypeDriverTip:
	default:
		return nil, &PolicyViolationError{Reason: "unknown invoice type " + invoiceType}
	}

	creditDays := common.DefaultCreditDays
	if params.AgentID != 0 {
		agent, err := svc.FindActiveAgent(ctx, params.AgentID)
		if err != nil {
			return nil, err
		}
		if agent.CreditTerms != nil && agent.CreditTerms.CreditDays > 0 {
			creditDays = agent.CreditTerms.CreditDays
		}
	} else {
		customer, err := svc.FindActiveCustomer(ctx, params.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer.CreditDays > 0 {
			creditDays = customer.CreditDays
		}
	}

	if ids := jobRefs(params.Lines); len(ids) > 0 {
		if _, err := svc.FindActiveTrafficJobs(ctx, ids); err != nil {
			return nil, err
		}
	}

	lines, err := normalizeLines(params.Lines)
	if err != nil {
		return nil, err
	}
	subtotal, taxAmount, total := InvoiceTotals(lines)

	issueDate := params.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	dueDate := params.DueDate
	if dueDate.IsZero() {
		dueDate = issueDate.AddDate(0, 0, creditDays)
	}
	currency := params.Currency
	if currency == "" {
		currency = svc.Config.DefaultCurrency
	}

	invoice := &models.Invoice{
		Type:       invoiceType,
		AgentID:    params.AgentID,
		CustomerID: params.CustomerID,
		Currency:   currency,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Subtotal:   subtotal,
		TaxAmount:  taxAmount,
		Total:      total,
		Status:     common.InvoiceStatusDraft,
	}

	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if params.AgentID != 0 {
			if err := svc.checkCreditLimit(ctx, tx, params.AgentID, total); err != nil {
				return err
			}
		}
		return svc.insertInvoiceTx(ctx, tx, invoice, lines)
	})
	if err != nil {
		return nil, err
	}

	invoice.Lines = lines
	svc.publishInvoiceEvent(ctx, common.EventInvoiceCreated, invoice)
	return invoice, nil
}

// insertInvoiceTx allocates a number and persists the header and lines as
// one unit. Shared by invoice creation and batch synthesis.
func (svc *BillingService) insertInvoiceTx(ctx context.Context, tx bun.Tx, invoice *models.Invoice, lines []*models.InvoiceLine) error {
	number, err := svc.NumberGen.Generate(ctx, prefixForInvoiceType(invoice.Type), func(ctx context.Context, candidate string) (bool, error) {
		return invoiceNumberExists(ctx, tx, candidate)
	})
	if err != nil {
		return err
	}
	invoice.Number = number

	if _, err := tx.NewInsert().Model(invoice).Exec(ctx); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for _, line := range lines {
		line.InvoiceID = invoice.ID
	}
	_, err = tx.NewInsert().Model(&lines).Exec(ctx)
	return err
}

func lockInvoice(ctx context.Context, tx bun.Tx, invoiceID int64, invoice *models.Invoice) error {
	err := tx.NewSelect().Model(invoice).Where("id = ?", invoiceID).For("UPDATE").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: "invoice", ID: invoiceID}
	}
	return err
}

// PostInvoice moves a draft invoice to posted. The status is re-read under
// a row lock inside the transaction, so a stale caller loses cleanly.
func (svc *BillingService) PostInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockInvoice(ctx, tx, invoiceID, &invoice); err != nil {
			return err
		}
		if err := ensureDraft(opPost, invoice.Status); err != nil {
			return err
		}
		invoice.Status = common.InvoiceStatusPosted
		invoice.PostedAt = bun.NullTime{Time: time.Now()}
		_, err := tx.NewUpdate().Model(&invoice).
			Column("status", "posted_at", "updated_at").
			WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publishInvoiceEvent(ctx, common.EventInvoicePosted, &invoice)
	return &invoice, nil
}

// CancelInvoice moves a draft invoice to cancelled. Posted invoices cannot
// be cancelled, the back office corrects them with a credit note instead.
func (svc *BillingService) CancelInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockInvoice(ctx, tx, invoiceID, &invoice); err != nil {
			return err
		}
		if err := ensureDraft(opCancel, invoice.Status); err != nil {
			return err
		}
		invoice.Status = common.InvoiceStatusCancelled
		_, err := tx.NewUpdate().Model(&invoice).
			Column("status", "updated_at").
			WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publishInvoiceEvent(ctx, common.EventInvoiceCancelled, &invoice)
	return &invoice, nil
}

// ReplaceInvoiceLines swaps the full line set of a draft invoice and
// recomputes the stored totals, all in one transaction. The semantic is a
// full replace, not a diff.
func (svc *BillingService) ReplaceInvoiceLines(ctx context.Context, invoiceID int64, lineParams []InvoiceLineParams) (*models.Invoice, error) {
	if ids := jobRefs(lineParams); len(ids) > 0 {
		if _, err := svc.FindActiveTrafficJobs(ctx, ids); err != nil {
			return nil, err
		}
	}
	lines, err := normalizeLines(lineParams)
	if err != nil {
		return nil, err
	}
	subtotal, taxAmount, total := InvoiceTotals(lines)

	var invoice models.Invoice
	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockInvoice(ctx, tx, invoiceID, &invoice); err != nil {
			return err
		}
		if err := ensureDraft(opReplaceLines, invoice.Status); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.InvoiceLine)(nil)).Where("invoice_id = ?", invoiceID).Exec(ctx); err != nil {
			return err
		}
		if len(lines) > 0 {
			for _, line := range lines {
				line.InvoiceID = invoiceID
			}
			if _, err := tx.NewInsert().Model(&lines).Exec(ctx); err != nil {
				return err
			}
		}
		invoice.Subtotal = subtotal
		invoice.TaxAmount = taxAmount
		invoice.Total = total
		_, err := tx.NewUpdate().Model(&invoice).
			Column("subtotal", "tax_amount", "total", "updated_at").
			WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines
	return &invoice, nil
}

func (svc *BillingService) FindInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := svc.DB.NewSelect().Model(&invoice).
		Relation("Lines").
		Relation("Payments").
		Where("invoice.id = ?", invoiceID).
		Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "invoice", ID: invoiceID}
		}
		return nil, err
	}
	return &invoice, nil
}

type InvoiceFilter struct {
	AgentID    int64
	CustomerID int64
	Status     string
	Type       string
}

func (svc *BillingService) Invoices(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, error) {
	var invoices []models.Invoice
	query := svc.DB.NewSelect().Model(&invoices)
	if filter.AgentID != 0 {
		query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.CustomerID != 0 {
		query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query.Where("type = ?", filter.Type)
	}
	query.OrderExpr("id DESC").Limit(100)
	err := query.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
