package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tourwise/billing/db"
	"github.com/tourwise/billing/db/migrations"
	"github.com/tourwise/billing/db/models"
	"github.com/tourwise/billing/lib"
	"github.com/tourwise/billing/lib/responses"
	"github.com/tourwise/billing/lib/service"
	"github.com/tourwise/billing/lib/transport"
	"github.com/uptrace/bun/migrate"
	"github.com/ziflex/lecho/v3"
)

// requireTestDatabase skips the calling test when no database is configured.
// These tests run against a real Postgres, set DATABASE_URI to enable them.
func requireTestDatabase(t *testing.T) string {
	dbUri, ok := os.LookupEnv("DATABASE_URI")
	if !ok {
		t.Skip("DATABASE_URI not set, skipping integration tests")
	}
	return dbUri
}

func billingTestServiceInit(dbUri string) (*service.BillingService, error) {
	c := &service.Config{
		DatabaseUri:             dbUri,
		DatabaseMaxConns:        1,
		DatabaseMaxIdleConns:    1,
		DatabaseConnMaxLifetime: 10,
		DefaultCurrency:         "EUR",
	}

	dbConn, err := db.Open(c)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	_, err = migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	svc := &service.BillingService{
		Config:        c,
		DB:            dbConn,
		Logger:        lecho.From(lib.Logger(c.LogFilePath)),
		NumberGen:     service.NewInvoiceNumberGenerator(),
		InvoicePubSub: service.NewPubsub(),
	}
	return svc, nil
}

func initTestEcho(svc *service.BillingService) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = responses.HTTPErrorHandler
	e.Validator = &lib.CustomValidator{Validator: validator.New()}
	noop := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	transport.RegisterEndpoints(svc, e, noop, noop)
	return e
}

func clearTables(svc *service.BillingService, tableNames ...string) error {
	for _, tableName := range tableNames {
		if _, err := svc.DB.Exec(fmt.Sprintf("DELETE FROM %s", tableName)); err != nil {
			return err
		}
	}
	return nil
}

func createTestAgent(svc *service.BillingService, name string, creditLimit decimal.Decimal, creditDays int) (*models.Agent, error) {
	ctx := context.Background()
	agent := &models.Agent{Name: name}
	if _, err := svc.DB.NewInsert().Model(agent).Exec(ctx); err != nil {
		return nil, err
	}
	terms := &models.CreditTerms{
		AgentID:     agent.ID,
		CreditLimit: creditLimit,
		CreditDays:  creditDays,
	}
	if _, err := svc.DB.NewInsert().Model(terms).Exec(ctx); err != nil {
		return nil, err
	}
	agent.CreditTerms = terms
	return agent, nil
}

func createTestCustomer(svc *service.BillingService, name string, creditDays int) (*models.Customer, error) {
	customer := &models.Customer{Name: name, CreditDays: creditDays}
	_, err := svc.DB.NewInsert().Model(customer).Exec(context.Background())
	return customer, err
}

func createTestJob(svc *service.BillingService, customerID int64, fromZone, toZone, vehicleType string) (*models.TrafficJob, error) {
	job := &models.TrafficJob{
		CustomerID:  customerID,
		ServiceType: "transfer",
		FromZone:    fromZone,
		ToZone:      toZone,
		VehicleType: vehicleType,
	}
	_, err := svc.DB.NewInsert().Model(job).Exec(context.Background())
	return job, err
}

func createTestPriceItem(svc *service.BillingService, fromZone, toZone, vehicleType string, transferPrice, driverTip, accessorySurcharge decimal.Decimal) (*models.PriceItem, error) {
	price := &models.PriceItem{
		ServiceType:        "transfer",
		FromZone:           fromZone,
		ToZone:             toZone,
		VehicleType:        vehicleType,
		TransferPrice:      transferPrice,
		DriverTip:          driverTip,
		AccessorySurcharge: accessorySurcharge,
	}
	_, err := svc.DB.NewInsert().Model(price).Exec(context.Background())
	return price, err
}

type TestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (suite *TestSuite) serveJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *TestSuite) decodeInvoice(rec *httptest.ResponseRecorder) *models.Invoice {
	invoice := &models.Invoice{}
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(invoice))
	return invoice
}

func (suite *TestSuite) decodeErrResponse(rec *httptest.ResponseRecorder) *responses.ErrorResponse {
	errorResponse := &responses.ErrorResponse{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(errorResponse))
	return errorResponse
}
