package common

const (
	InvoiceTypeStandard  = "standard"
	InvoiceTypeTransfer  = "transfer"
	InvoiceTypeDriverTip = "driver_tip"

	InvoiceStatusDraft         = "draft"
	InvoiceStatusPosted        = "posted"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusCancelled     = "cancelled"

	NumberPrefixStandard  = "INV"
	NumberPrefixTransfer  = "CIT"
	NumberPrefixDriverTip = "CID"

	EventInvoiceCreated   = "invoice.created"
	EventInvoicePosted    = "invoice.posted"
	EventInvoiceCancelled = "invoice.cancelled"
	EventInvoicePaid      = "invoice.paid"
	EventPaymentApplied   = "payment.applied"

	// The random 4-digit suffix gives 10^4 candidates per prefix and day.
	// After 5 collisions in a row we give up instead of retrying forever.
	MaxInvoiceNumberAttempts = 5

	DefaultCreditDays = 30
)

// OutstandingInvoiceStatuses are the statuses counted towards an agent's
// credit exposure. Cancelled and fully paid invoices do not bind credit.
var OutstandingInvoiceStatuses = []string{
	InvoiceStatusDraft,
	InvoiceStatusPosted,
	InvoiceStatusPartiallyPaid,
}
