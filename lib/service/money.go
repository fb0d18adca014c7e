package service

import (
	"github.com/shopspring/decimal"
	"github.com/tourwise/billing/db/models"
)

var oneHundred = decimal.NewFromInt(100)

// LineAmounts computes the tax amount and total for a single line.
// Amounts are rounded half away from zero to 2 decimal places. A
// non-positive tax rate yields an exact zero tax amount.
func LineAmounts(unitPrice, quantity, taxRate decimal.Decimal) (taxAmount, lineTotal decimal.Decimal) {
	net := unitPrice.Mul(quantity)
	taxAmount = decimal.Zero
	if taxRate.IsPositive() {
		taxAmount = net.Mul(taxRate).Div(oneHundred).Round(2)
	}
	lineTotal = net.Add(taxAmount).Round(2)
	return taxAmount, lineTotal
}

// InvoiceTotals aggregates computed lines into invoice-level amounts.
// The subtotal sums the unrounded per-line nets and rounds once at the end,
// so a long invoice does not accumulate per-line rounding error. The tax
// amount sums the already-rounded per-line taxes, since those are the
// amounts actually stored on the lines.
func InvoiceTotals(lines []*models.InvoiceLine) (subtotal, taxAmount, total decimal.Decimal) {
	net := decimal.Zero
	tax := decimal.Zero
	for _, line := range lines {
		net = net.Add(line.UnitPrice.Mul(line.Quantity))
		tax = tax.Add(line.TaxAmount)
	}
	subtotal = net.Round(2)
	taxAmount = tax.Round(2)
	total = subtotal.Add(taxAmount).Round(2)
	return subtotal, taxAmount, total
}
