package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tourwise/billing/db/models"
	"github.com/uptrace/bun"
)

// Read-only boundary queries against records owned by other subsystems
// (CRM, dispatch, pricing). Soft-deleted rows are invisible here, bun
// appends the deleted_at IS NULL filter for the soft-delete models.

func (svc *BillingService) FindActiveAgent(ctx context.Context, agentID int64) (*models.Agent, error) {
	var agent models.Agent
	err := svc.DB.NewSelect().Model(&agent).Relation("CreditTerms").Where("agent.id = ?", agentID).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "agent", ID: agentID}
		}
		return nil, err
	}
	return &agent, nil
}

func (svc *BillingService) FindActiveCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	var customer models.Customer
	err := svc.DB.NewSelect().Model(&customer).Where("id = ?", customerID).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "customer", ID: customerID}
		}
		return nil, err
	}
	return &customer, nil
}

// FindActiveTrafficJobs must resolve exactly the requested set of active
// jobs. A missing or soft-deleted job fails the whole lookup, callers that
// tolerate gaps (batch synthesis) filter before calling the persistence
// path.
func (svc *BillingService) FindActiveTrafficJobs(ctx context.Context, jobIDs []int64) ([]*models.TrafficJob, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}
	var jobs []*models.TrafficJob
	err := svc.DB.NewSelect().Model(&jobs).Where("id IN (?)", bun.In(jobIDs)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]bool, len(jobs))
	for _, job := range jobs {
		found[job.ID] = true
	}
	for _, id := range jobIDs {
		if !found[id] {
			return nil, &NotFoundError{Entity: "traffic job", ID: id}
		}
	}
	return jobs, nil
}

// FindPriceItem returns the matching rate card entry or nil when the
// combination is not priced.
func (svc *BillingService) FindPriceItem(ctx context.Context, serviceType, fromZone, toZone, vehicleType string) (*models.PriceItem, error) {
	var item models.PriceItem
	err := svc.DB.NewSelect().Model(&item).
		Where("service_type = ? AND from_zone = ? AND to_zone = ? AND vehicle_type = ?",
			serviceType, fromZone, toZone, vehicleType).
		Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (svc *BillingService) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	return invoiceNumberExists(ctx, svc.DB, number)
}

func invoiceNumberExists(ctx context.Context, db bun.IDB, number string) (bool, error) {
	return db.NewSelect().Model((*models.Invoice)(nil)).Where("number = ?", number).Exists(ctx)
}

func describeJob(job *models.TrafficJob) string {
	desc := fmt.Sprintf("%s %s - %s (%s)", job.ServiceType, job.FromZone, job.ToZone, job.VehicleType)
	if job.PassengerName != "" {
		desc = fmt.Sprintf("%s, %s", desc, job.PassengerName)
	}
	return desc
}
