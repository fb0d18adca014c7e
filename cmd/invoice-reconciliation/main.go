package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tourwise/billing/db"
	"github.com/tourwise/billing/db/models"
	"github.com/tourwise/billing/lib"
	"github.com/tourwise/billing/lib/service"
	"github.com/ziflex/lecho/v3"
)

// Recomputes every invoice's totals from its stored lines and reports any
// drift between the stored and the recomputed amounts. With RECONCILE_FIX
// set, drifted invoices are rewritten with the recomputed totals.
func main() {
	c := &service.Config{}

	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	logger := lecho.From(lib.Logger(c.LogFilePath))

	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	fix := os.Getenv("RECONCILE_FIX") == "true"
	ctx := context.Background()

	var invoices []models.Invoice
	err = dbConn.NewSelect().Model(&invoices).Relation("Lines").OrderExpr("id ASC").Scan(ctx)
	if err != nil {
		logger.Fatalf("Error fetching invoices: %v", err)
	}

	drifted := 0
	for _, invoice := range invoices {
		subtotal, taxAmount, total := service.InvoiceTotals(invoice.Lines)
		if subtotal.Equal(invoice.Subtotal) && taxAmount.Equal(invoice.TaxAmount) && total.Equal(invoice.Total) {
			continue
		}
		drifted++
		logger.Errorf("Totals drift invoice_id:%v number:%s stored:%s/%s/%s recomputed:%s/%s/%s",
			invoice.ID, invoice.Number,
			invoice.Subtotal, invoice.TaxAmount, invoice.Total,
			subtotal, taxAmount, total)
		if !fix {
			continue
		}
		invoice.Subtotal = subtotal
		invoice.TaxAmount = taxAmount
		invoice.Total = total
		_, err = dbConn.NewUpdate().Model(&invoice).
			Column("subtotal", "tax_amount", "total", "updated_at").
			WherePK().Exec(ctx)
		if err != nil {
			logger.Fatalf("Error fixing invoice %v: %v", invoice.ID, err)
		}
		logger.Infof("Fixed invoice_id:%v number:%s", invoice.ID, invoice.Number)
	}
	logger.Infof("Checked %d invoices, %d drifted (fix=%v)", len(invoices), drifted, fix)
}
