package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tourwise/billing/db/models"
)

func fakePriceLookup(prices map[string]*models.PriceItem) priceLookupFunc {
	return func(ctx context.Context, serviceType, fromZone, toZone, vehicleType string) (*models.PriceItem, error) {
		return prices[fromZone+"/"+toZone+"/"+vehicleType], nil
	}
}

func routableJob(id int64, fromZone, toZone string) *models.TrafficJob {
	return &models.TrafficJob{
		ID:          id,
		ServiceType: "transfer",
		FromZone:    fromZone,
		ToZone:      toZone,
		VehicleType: "sedan",
	}
}

func TestBuildBatchLinesGroupsTransfersAndTips(t *testing.T) {
	jobs := []*models.TrafficJob{
		routableJob(1, "airport", "downtown"),
		routableJob(2, "downtown", "harbor"),
		routableJob(3, "harbor", "airport"),
	}
	prices := map[string]*models.PriceItem{
		"airport/downtown/sedan": {TransferPrice: dec("100")},
		"downtown/harbor/sedan":  {DriverTip: dec("20")},
	}

	transferLines, tipLines, skipped, err := buildBatchLines(context.Background(), jobs, fakePriceLookup(prices))

	assert.NoError(t, err)
	assert.Len(t, transferLines, 1)
	assert.Len(t, tipLines, 1)
	assert.True(t, dec("100.00").Equal(transferLines[0].LineTotal))
	assert.Equal(t, int64(1), transferLines[0].TrafficJobID)
	assert.True(t, dec("20.00").Equal(tipLines[0].LineTotal))
	assert.Equal(t, int64(2), tipLines[0].TrafficJobID)
	if assert.Len(t, skipped, 1) {
		assert.Equal(t, int64(3), skipped[0].JobID)
		assert.Equal(t, "no matching price list entry", skipped[0].Reason)
	}
}

func TestBuildBatchLinesSkipsUnroutableJobs(t *testing.T) {
	jobs := []*models.TrafficJob{
		{ID: 7, ServiceType: "transfer", FromZone: "airport"},
	}

	transferLines, tipLines, skipped, err := buildBatchLines(context.Background(), jobs, fakePriceLookup(nil))

	assert.NoError(t, err)
	assert.Empty(t, transferLines)
	assert.Empty(t, tipLines)
	if assert.Len(t, skipped, 1) {
		assert.Equal(t, int64(7), skipped[0].JobID)
		assert.Equal(t, "missing origin zone, destination zone or vehicle", skipped[0].Reason)
	}
}

func TestBuildBatchLinesAddsAccessorySurchargeToTransfer(t *testing.T) {
	jobs := []*models.TrafficJob{routableJob(1, "airport", "downtown")}
	prices := map[string]*models.PriceItem{
		"airport/downtown/sedan": {
			TransferPrice:      dec("100"),
			AccessorySurcharge: dec("12.50"),
			DriverTip:          dec("5"),
		},
	}

	transferLines, tipLines, skipped, err := buildBatchLines(context.Background(), jobs, fakePriceLookup(prices))

	assert.NoError(t, err)
	assert.Empty(t, skipped)
	if assert.Len(t, transferLines, 1) {
		assert.True(t, dec("112.50").Equal(transferLines[0].LineTotal))
		assert.True(t, transferLines[0].TaxAmount.IsZero())
	}
	if assert.Len(t, tipLines, 1) {
		assert.True(t, dec("5.00").Equal(tipLines[0].LineTotal))
	}
}

func TestBuildBatchLinesTransferAndTipTotalsStayApart(t *testing.T) {
	jobs := []*models.TrafficJob{
		routableJob(1, "airport", "downtown"),
		routableJob(2, "downtown", "harbor"),
	}
	prices := map[string]*models.PriceItem{
		"airport/downtown/sedan": {TransferPrice: dec("100")},
		"downtown/harbor/sedan":  {DriverTip: dec("20")},
	}

	transferLines, tipLines, _, err := buildBatchLines(context.Background(), jobs, fakePriceLookup(prices))
	assert.NoError(t, err)

	_, _, transferTotal := InvoiceTotals(transferLines)
	_, _, tipTotal := InvoiceTotals(tipLines)
	assert.True(t, dec("100.00").Equal(transferTotal))
	assert.True(t, dec("20.00").Equal(tipTotal))
}
