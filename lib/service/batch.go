package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tourwise/billing/common"
	"github.com/tourwise/billing/db/models"
	"github.com/uptrace/bun"
)

// SkippedJob records why a requested trip job produced no invoice line.
type SkippedJob struct {
	JobID  int64  `json:"job_id"`
	Reason string `json:"reason"`
}

type BatchSynthesisResult struct {
	BatchID          string          `json:"batch_id"`
	TransferInvoice  *models.Invoice `json:"transfer_invoice,omitempty"`
	DriverTipInvoice *models.Invoice `json:"driver_tip_invoice,omitempty"`
	Skipped          []SkippedJob    `json:"skipped,omitempty"`
}

type priceLookupFunc func(ctx context.Context, serviceType, fromZone, toZone, vehicleType string) (*models.PriceItem, error)

// buildBatchLines prices the jobs and groups the results into transfer and
// driver-tip lines. Jobs that cannot be priced are reported, not failed:
// the dispatcher bills what it can and the skip report tells the operator
// what was left out.
func buildBatchLines(ctx context.Context, jobs []*models.TrafficJob, lookup priceLookupFunc) (transferLines, tipLines []*models.InvoiceLine, skipped []SkippedJob, err error) {
	one := decimal.NewFromInt(1)
	for _, job := range jobs {
		if !job.Routable() {
			skipped = append(skipped, SkippedJob{JobID: job.ID, Reason: "missing origin zone, destination zone or vehicle"})
			continue
		}
		price, err := lookup(ctx, job.ServiceType, job.FromZone, job.ToZone, job.VehicleType)
		if err != nil {
			return nil, nil, nil, err
		}
		if price == nil {
			skipped = append(skipped, SkippedJob{JobID: job.ID, Reason: "no matching price list entry"})
			continue
		}
		if price.TransferPrice.IsPositive() {
			amount := price.TransferPrice.Add(price.AccessorySurcharge)
			taxAmount, lineTotal := LineAmounts(amount, one, decimal.Zero)
			transferLines = append(transferLines, &models.InvoiceLine{
				TrafficJobID: job.ID,
				Description:  describeJob(job),
				Quantity:     one,
				UnitPrice:    amount,
				TaxRate:      decimal.Zero,
				TaxAmount:    taxAmount,
				LineTotal:    lineTotal,
			})
		}
		if price.DriverTip.IsPositive() {
			taxAmount, lineTotal := LineAmounts(price.DriverTip, one, decimal.Zero)
			tipLines = append(tipLines, &models.InvoiceLine{
				TrafficJobID: job.ID,
				Description:  "Driver tip: " + describeJob(job),
				Quantity:     one,
				UnitPrice:    price.DriverTip,
				TaxRate:      decimal.Zero,
				TaxAmount:    taxAmount,
				LineTotal:    lineTotal,
			})
		}
	}
	return transferLines, tipLines, skipped, nil
}

// SynthesizeBatchInvoices derives the transfer and driver-tip invoices for a
// customer from a set of completed trip jobs. At most two invoices are
// created per batch, either is omitted when it would have no lines. These
// invoice types carry no tax and bypass the credit policy: batches target
// customers, not credit-limited agents.
func (svc *BillingService) SynthesizeBatchInvoices(ctx context.Context, customerID int64, jobIDs []int64, issueDate time.Time, dueDate *time.Time) (*BatchSynthesisResult, error) {
	customer, err := svc.FindActiveCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	result := &BatchSynthesisResult{BatchID: uuid.NewString()}
	if len(jobIDs) == 0 {
		return result, nil
	}

	// fetch what exists, report the rest as skipped
	var jobs []*models.TrafficJob
	err = svc.DB.NewSelect().Model(&jobs).Where("id IN (?)", bun.In(jobIDs)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.TrafficJob, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}
	ordered := make([]*models.TrafficJob, 0, len(jobs))
	for _, id := range jobIDs {
		job, ok := byID[id]
		if !ok {
			result.Skipped = append(result.Skipped, SkippedJob{JobID: id, Reason: "job not found or deleted"})
			continue
		}
		ordered = append(ordered, job)
	}

	transferLines, tipLines, skipped, err := buildBatchLines(ctx, ordered, svc.FindPriceItem)
	if err != nil {
		return nil, err
	}
	result.Skipped = append(result.Skipped, skipped...)
	if len(transferLines) == 0 && len(tipLines) == 0 {
		return result, nil
	}

	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	creditDays := common.DefaultCreditDays
	if customer.CreditDays > 0 {
		creditDays = customer.CreditDays
	}
	due := issueDate.AddDate(0, 0, creditDays)
	if dueDate != nil {
		due = *dueDate
	}

	makeInvoice := func(invoiceType string, lines []*models.InvoiceLine) *models.Invoice {
		subtotal, taxAmount, total := InvoiceTotals(lines)
		return &models.Invoice{
			Type:       invoiceType,
			CustomerID: customerID,
			Currency:   svc.Config.DefaultCurrency,
			IssueDate:  issueDate,
			DueDate:    due,
			Subtotal:   subtotal,
			TaxAmount:  taxAmount,
			Total:      total,
			Status:     common.InvoiceStatusDraft,
			BatchID:    result.BatchID,
		}
	}

	// both invoices commit or neither does
	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if len(transferLines) > 0 {
			invoice := makeInvoice(common.InvoiceTypeTransfer, transferLines)
			if err := svc.insertInvoiceTx(ctx, tx, invoice, transferLines); err != nil {
				return err
			}
			invoice.Lines = transferLines
			result.TransferInvoice = invoice
		}
		if len(tipLines) > 0 {
			invoice := makeInvoice(common.InvoiceTypeDriverTip, tipLines)
			if err := svc.insertInvoiceTx(ctx, tx, invoice, tipLines); err != nil {
				return err
			}
			invoice.Lines = tipLines
			result.DriverTipInvoice = invoice
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.TransferInvoice != nil {
		svc.publishInvoiceEvent(ctx, common.EventInvoiceCreated, result.TransferInvoice)
	}
	if result.DriverTipInvoice != nil {
		svc.publishInvoiceEvent(ctx, common.EventInvoiceCreated, result.DriverTipInvoice)
	}
	return result, nil
}
