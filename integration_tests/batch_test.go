package integration_tests

import (
	"encoding/json"
	"log"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tourwise/billing/common"
	"github.com/tourwise/billing/controllers"
	"github.com/tourwise/billing/db/models"
	"github.com/tourwise/billing/lib/service"
)

type BatchInvoiceTestSuite struct {
	TestSuite
	dbUri       string
	svc         *service.BillingService
	customer    *models.Customer
	pricedJob   *models.TrafficJob
	tippedJob   *models.TrafficJob
	unpricedJob *models.TrafficJob
}

func (suite *BatchInvoiceTestSuite) SetupSuite() {
	svc, err := billingTestServiceInit(suite.dbUri)
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.svc = svc
	suite.echo = initTestEcho(svc)

	suite.customer, err = createTestCustomer(svc, "Grand Hotel", 10)
	if err != nil {
		log.Fatalf("Error creating test customer: %v", err)
	}
	suite.pricedJob, err = createTestJob(svc, suite.customer.ID, "airport", "downtown", "sedan")
	if err != nil {
		log.Fatalf("Error creating test job: %v", err)
	}
	suite.tippedJob, err = createTestJob(svc, suite.customer.ID, "downtown", "harbor", "sedan")
	if err != nil {
		log.Fatalf("Error creating test job: %v", err)
	}
	suite.unpricedJob, err = createTestJob(svc, suite.customer.ID, "harbor", "airport", "sedan")
	if err != nil {
		log.Fatalf("Error creating test job: %v", err)
	}
	_, err = createTestPriceItem(svc, "airport", "downtown", "sedan",
		decimal.RequireFromString("100"), decimal.Zero, decimal.Zero)
	if err != nil {
		log.Fatalf("Error creating test price item: %v", err)
	}
	_, err = createTestPriceItem(svc, "downtown", "harbor", "sedan",
		decimal.Zero, decimal.RequireFromString("20"), decimal.Zero)
	if err != nil {
		log.Fatalf("Error creating test price item: %v", err)
	}
}

func (suite *BatchInvoiceTestSuite) TearDownTest() {
	clearTables(suite.svc, "payments", "invoice_lines", "invoices")
}

func (suite *BatchInvoiceTestSuite) TearDownSuite() {
	clearTables(suite.svc, "price_items", "traffic_jobs", "customers")
}

func (suite *BatchInvoiceTestSuite) synthesize(jobIDs []int64) *service.BatchSynthesisResult {
	rec := suite.serveJSON(http.MethodPost, "/invoices/batch", &controllers.BatchInvoiceRequestBody{
		CustomerID: suite.customer.ID,
		JobIDs:     jobIDs,
	})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	result := &service.BatchSynthesisResult{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(result))
	return result
}

func (suite *BatchInvoiceTestSuite) TestBatchSplitsTransfersAndTips() {
	result := suite.synthesize([]int64{suite.pricedJob.ID, suite.tippedJob.ID, suite.unpricedJob.ID})

	assert.NotEmpty(suite.T(), result.BatchID)
	if assert.NotNil(suite.T(), result.TransferInvoice) {
		assert.Equal(suite.T(), common.InvoiceTypeTransfer, result.TransferInvoice.Type)
		assert.Regexp(suite.T(), `^CIT-\d{6}-\d{4}$`, result.TransferInvoice.Number)
		assert.True(suite.T(), decimal.RequireFromString("100.00").Equal(result.TransferInvoice.Total))
		assert.Equal(suite.T(), result.BatchID, result.TransferInvoice.BatchID)
	}
	if assert.NotNil(suite.T(), result.DriverTipInvoice) {
		assert.Equal(suite.T(), common.InvoiceTypeDriverTip, result.DriverTipInvoice.Type)
		assert.Regexp(suite.T(), `^CID-\d{6}-\d{4}$`, result.DriverTipInvoice.Number)
		assert.True(suite.T(), decimal.RequireFromString("20.00").Equal(result.DriverTipInvoice.Total))
	}
	if assert.Len(suite.T(), result.Skipped, 1) {
		assert.Equal(suite.T(), suite.unpricedJob.ID, result.Skipped[0].JobID)
		assert.Equal(suite.T(), "no matching price list entry", result.Skipped[0].Reason)
	}
}

func (suite *BatchInvoiceTestSuite) TestBatchReportsUnknownJobs() {
	result := suite.synthesize([]int64{suite.pricedJob.ID, 999999})

	assert.NotNil(suite.T(), result.TransferInvoice)
	assert.Nil(suite.T(), result.DriverTipInvoice)
	if assert.Len(suite.T(), result.Skipped, 1) {
		assert.Equal(suite.T(), int64(999999), result.Skipped[0].JobID)
		assert.Equal(suite.T(), "job not found or deleted", result.Skipped[0].Reason)
	}
}

func (suite *BatchInvoiceTestSuite) TestBatchWithNoPricableJobsCreatesNoInvoices() {
	result := suite.synthesize([]int64{suite.unpricedJob.ID})

	assert.Nil(suite.T(), result.TransferInvoice)
	assert.Nil(suite.T(), result.DriverTipInvoice)
	assert.Len(suite.T(), result.Skipped, 1)
}

func TestBatchInvoiceTestSuite(t *testing.T) {
	suite.Run(t, &BatchInvoiceTestSuite{dbUri: requireTestDatabase(t)})
}
