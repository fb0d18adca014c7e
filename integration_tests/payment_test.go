package integration_tests

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tourwise/billing/common"
	"github.com/tourwise/billing/controllers"
	"github.com/tourwise/billing/db/models"
	"github.com/tourwise/billing/lib/responses"
	"github.com/tourwise/billing/lib/service"
)

type PaymentTestSuite struct {
	TestSuite
	dbUri string
	svc   *service.BillingService
	agent *models.Agent
}

func (suite *PaymentTestSuite) SetupSuite() {
	svc, err := billingTestServiceInit(suite.dbUri)
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.svc = svc
	suite.echo = initTestEcho(svc)

	suite.agent, err = createTestAgent(svc, "Alpine Excursions", decimal.Zero, 30)
	if err != nil {
		log.Fatalf("Error creating test agent: %v", err)
	}
}

func (suite *PaymentTestSuite) TearDownTest() {
	clearTables(suite.svc, "payments", "invoice_lines", "invoices")
}

func (suite *PaymentTestSuite) TearDownSuite() {
	clearTables(suite.svc, "credit_terms", "agents")
}

func (suite *PaymentTestSuite) createPostedInvoice(amount string) *models.Invoice {
	rec := suite.serveJSON(http.MethodPost, "/invoices", &controllers.CreateInvoiceRequestBody{
		AgentID: suite.agent.ID,
		Lines: []controllers.InvoiceLineRequestBody{
			{Description: "Charter day rate", Amount: decimal.RequireFromString(amount)},
		},
	})
	invoice := suite.decodeInvoice(rec)
	rec = suite.serveJSON(http.MethodPost, "/invoices/"+itoa(invoice.ID)+"/post", nil)
	return suite.decodeInvoice(rec)
}

func (suite *PaymentTestSuite) applyPayment(invoiceID int64, amount string) *httptest.ResponseRecorder {
	return suite.serveJSON(http.MethodPost, "/invoices/"+itoa(invoiceID)+"/payments", &controllers.ApplyPaymentRequestBody{
		Amount: decimal.RequireFromString(amount),
		Method: "bank_transfer",
	})
}

func (suite *PaymentTestSuite) balance(invoiceID int64) *controllers.BalanceResponseBody {
	rec := suite.serveJSON(http.MethodGet, "/invoices/"+itoa(invoiceID)+"/balance", nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	balance := &controllers.BalanceResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(balance))
	return balance
}

func (suite *PaymentTestSuite) TestFullPaymentSettlesInvoice() {
	invoice := suite.createPostedInvoice("500")

	rec := suite.applyPayment(invoice.ID, "500")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	settled, err := suite.svc.FindInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, settled.Status)

	balance := suite.balance(invoice.ID)
	assert.True(suite.T(), balance.Remaining.IsZero())
}

func (suite *PaymentTestSuite) TestPartialPaymentsAccumulate() {
	invoice := suite.createPostedInvoice("500")

	rec := suite.applyPayment(invoice.ID, "300")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	balance := suite.balance(invoice.ID)
	assert.True(suite.T(), decimal.RequireFromString("300.00").Equal(balance.Paid))
	assert.True(suite.T(), decimal.RequireFromString("200.00").Equal(balance.Remaining))

	partiallyPaid, err := suite.svc.FindInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusPartiallyPaid, partiallyPaid.Status)

	rec = suite.applyPayment(invoice.ID, "200")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	settled, err := suite.svc.FindInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, settled.Status)
	assert.Len(suite.T(), settled.Payments, 2)
}

func (suite *PaymentTestSuite) TestOverpaymentRejected() {
	invoice := suite.createPostedInvoice("500")

	rec := suite.applyPayment(invoice.ID, "600")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	errorResponse := suite.decodeErrResponse(rec)
	assert.Equal(suite.T(), responses.PolicyViolationError.Code, errorResponse.Code)
	assert.Contains(suite.T(), errorResponse.Message, "overage 100.00")
}

func (suite *PaymentTestSuite) TestPaymentOnSettledInvoiceRejected() {
	invoice := suite.createPostedInvoice("500")

	rec := suite.applyPayment(invoice.ID, "500")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	rec = suite.applyPayment(invoice.ID, "1")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), responses.InvalidStateError.Code, suite.decodeErrResponse(rec).Code)
}

func TestPaymentTestSuite(t *testing.T) {
	suite.Run(t, &PaymentTestSuite{dbUri: requireTestDatabase(t)})
}
