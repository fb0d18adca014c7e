package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/tourwise/billing/lib/responses"
	"github.com/tourwise/billing/lib/service"
)

// InvoiceController : Invoice controller struct
type InvoiceController struct {
	svc *service.BillingService
}

func NewInvoiceController(svc *service.BillingService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type InvoiceLineRequestBody struct {
	TrafficJobID int64            `json:"traffic_job_id"`
	Description  string           `json:"description"`
	Amount       decimal.Decimal  `json:"amount"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	Quantity     *decimal.Decimal `json:"quantity"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
}

func (body InvoiceLineRequestBody) toParams() service.InvoiceLineParams {
	return service.InvoiceLineParams{
		TrafficJobID: body.TrafficJobID,
		Description:  body.Description,
		Amount:       body.Amount,
		UnitPrice:    body.UnitPrice,
		Quantity:     body.Quantity,
		TaxRate:      body.TaxRate,
	}
}

func toLineParams(bodies []InvoiceLineRequestBody) []service.InvoiceLineParams {
	params := make([]service.InvoiceLineParams, 0, len(bodies))
	for _, body := range bodies {
		params = append(params, body.toParams())
	}
	return params
}

type CreateInvoiceRequestBody struct {
	AgentID    int64                    `json:"agent_id"`
	CustomerID int64                    `json:"customer_id"`
	Type       string                   `json:"type"`
	Currency   string                   `json:"currency"`
	IssueDate  *time.Time               `json:"issue_date"`
	DueDate    *time.Time               `json:"due_date"`
	Lines      []InvoiceLineRequestBody `json:"lines" validate:"dive"`
}

// CreateInvoice godoc
// @Summary      Create an invoice
// @Description  Creates a draft invoice for an agent or customer
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        CreateInvoiceRequest  body      CreateInvoiceRequestBody  True  "Invoice to create"
// @Success      200                   {object}  models.Invoice
// @Failure      400                   {object}  responses.ErrorResponse
// @Failure      500                   {object}  responses.ErrorResponse
// @Router       /invoices [post]
func (controller *InvoiceController) CreateInvoice(c echo.Context) error {
	reqBody := CreateInvoiceRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load create invoice request body: error: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		c.Logger().Errorf("Invalid create invoice request body: error: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	params := service.CreateInvoiceParams{
		AgentID:    reqBody.AgentID,
		CustomerID: reqBody.CustomerID,
		Type:       reqBody.Type,
		Currency:   reqBody.Currency,
		Lines:      toLineParams(reqBody.Lines),
	}
	if reqBody.IssueDate != nil {
		params.IssueDate = *reqBody.IssueDate
	}
	if reqBody.DueDate != nil {
		params.DueDate = *reqBody.DueDate
	}

	invoice, err := controller.svc.CreateInvoice(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to create invoice: agent_id:%v customer_id:%v error: %v", reqBody.AgentID, reqBody.CustomerID, err)
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// GetInvoice godoc
// @Summary      Get an invoice
// @Description  Returns the invoice with its lines and payments
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  True  "Invoice ID"
// @Success      200  {object}  models.Invoice
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /invoices/{id} [get]
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), invoiceID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// ListInvoices godoc
// @Summary      List invoices
// @Description  Lists invoices, optionally filtered by counterparty, status or type
// @Produce      json
// @Tags         Invoice
// @Success      200  {array}  models.Invoice
// @Router       /invoices [get]
func (controller *InvoiceController) ListInvoices(c echo.Context) error {
	filter := service.InvoiceFilter{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
	}
	if raw := c.QueryParam("agent_id"); raw != "" {
		agentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		filter.AgentID = agentID
	}
	if raw := c.QueryParam("customer_id"); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		filter.CustomerID = customerID
	}

	invoices, err := controller.svc.Invoices(c.Request().Context(), filter)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

type ReplaceLinesRequestBody struct {
	Lines []InvoiceLineRequestBody `json:"lines" validate:"dive"`
}

// ReplaceLines godoc
// @Summary      Replace invoice lines
// @Description  Replaces the full line set of a draft invoice and recomputes totals
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id                   path      int                      True  "Invoice ID"
// @Param        ReplaceLinesRequest  body      ReplaceLinesRequestBody  True  "New line set"
// @Success      200                  {object}  models.Invoice
// @Failure      400                  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/lines [put]
func (controller *InvoiceController) ReplaceLines(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	reqBody := ReplaceLinesRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load replace lines request body: invoice_id:%v error: %v", invoiceID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.ReplaceInvoiceLines(c.Request().Context(), invoiceID, toLineParams(reqBody.Lines))
	if err != nil {
		c.Logger().Errorf("Failed to replace invoice lines: invoice_id:%v error: %v", invoiceID, err)
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}
