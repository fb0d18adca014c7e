package migrations

import (
	"context"

	"github.com/tourwise/billing/db/models"
	"github.com/uptrace/bun"
)

/* This init reflects the latest model fields when run on a fresh db.
Make sure that when you add/remove columns in subsequent migrations
IfNotExists/IfExists is used, otherwise it's going to result in errors. */
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if _, err := db.NewCreateTable().Model((*models.Agent)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.CreditTerms)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Customer)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.TrafficJob)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.PriceItem)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Invoice)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.InvoiceLine)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Payment)(nil)).Exec(ctx); err != nil {
			return err
		}

		// an invoice is addressed to exactly one counterparty
		if _, err := db.ExecContext(ctx,
			`ALTER TABLE invoices ADD CONSTRAINT invoice_one_counterparty
			 CHECK (num_nonnulls(agent_id, customer_id) = 1)`); err != nil {
			return err
		}
		// payments are validated against a locked invoice row, the
		// constraint backstops any path that skips the service layer
		if _, err := db.ExecContext(ctx,
			`CREATE INDEX payment_invoice_id_idx ON payments (invoice_id)`); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			`CREATE INDEX invoice_agent_status_idx ON invoices (agent_id, status)`); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			`CREATE UNIQUE INDEX price_item_key_idx ON price_items (service_type, from_zone, to_zone, vehicle_type) WHERE deleted_at IS NULL`); err != nil {
			return err
		}

		return nil
	}, nil)
}
