package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tourwise/billing/db/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineAmountsWithTax(t *testing.T) {
	taxAmount, lineTotal := LineAmounts(dec("100"), dec("1"), dec("19"))

	assert.True(t, dec("19.00").Equal(taxAmount))
	assert.True(t, dec("119.00").Equal(lineTotal))
}

func TestLineAmountsRoundsHalfAwayFromZero(t *testing.T) {
	// net 33.35, 10% tax -> 3.335 rounds up to 3.34
	taxAmount, lineTotal := LineAmounts(dec("66.70"), dec("0.5"), dec("10"))

	assert.True(t, dec("3.34").Equal(taxAmount))
	assert.True(t, dec("36.69").Equal(lineTotal))
}

func TestLineAmountsZeroTaxRateYieldsExactZero(t *testing.T) {
	taxAmount, lineTotal := LineAmounts(dec("49.99"), dec("3"), decimal.Zero)

	assert.True(t, taxAmount.IsZero())
	assert.True(t, dec("149.97").Equal(lineTotal))
}

func makeLine(unitPrice, quantity, taxRate string) *models.InvoiceLine {
	up, qty, rate := dec(unitPrice), dec(quantity), dec(taxRate)
	taxAmount, lineTotal := LineAmounts(up, qty, rate)
	return &models.InvoiceLine{
		UnitPrice: up,
		Quantity:  qty,
		TaxRate:   rate,
		TaxAmount: taxAmount,
		LineTotal: lineTotal,
	}
}

func TestInvoiceTotalsRoundsSubtotalOnce(t *testing.T) {
	// three nets of 0.335 sum to 1.005; rounding per line first would
	// give 1.02, rounding the sum once gives 1.01
	lines := []*models.InvoiceLine{
		makeLine("0.335", "1", "0"),
		makeLine("0.335", "1", "0"),
		makeLine("0.335", "1", "0"),
	}

	subtotal, taxAmount, total := InvoiceTotals(lines)

	assert.True(t, dec("1.01").Equal(subtotal))
	assert.True(t, taxAmount.IsZero())
	assert.True(t, dec("1.01").Equal(total))
}

func TestInvoiceTotalsSumsRoundedLineTaxes(t *testing.T) {
	lines := []*models.InvoiceLine{
		makeLine("100", "1", "19"),
		makeLine("66.70", "0.5", "10"),
	}

	subtotal, taxAmount, total := InvoiceTotals(lines)

	assert.True(t, dec("133.35").Equal(subtotal))
	assert.True(t, dec("22.34").Equal(taxAmount))
	assert.True(t, subtotal.Add(taxAmount).Round(2).Equal(total))
}

func TestInvoiceTotalsIdempotent(t *testing.T) {
	lines := []*models.InvoiceLine{
		makeLine("12.49", "3", "7.7"),
		makeLine("0.99", "11", "19"),
	}

	s1, x1, t1 := InvoiceTotals(lines)
	s2, x2, t2 := InvoiceTotals(lines)

	assert.True(t, s1.Equal(s2))
	assert.True(t, x1.Equal(x2))
	assert.True(t, t1.Equal(t2))
}
