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

// PaymentController : Payment ledger controller struct
type PaymentController struct {
	svc *service.BillingService
}

func NewPaymentController(svc *service.BillingService) *PaymentController {
	return &PaymentController{svc: svc}
}

type ApplyPaymentRequestBody struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Method      string          `json:"method"`
	PaymentDate *time.Time      `json:"payment_date"`
	Reference   string          `json:"reference"`
}

type BalanceResponseBody struct {
	InvoiceID int64           `json:"invoice_id"`
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ApplyPayment godoc
// @Summary      Apply a payment
// @Description  Books a payment against an invoice and advances its status
// @Accept       json
// @Produce      json
// @Tags         Payment
// @Param        id                   path      int                      True  "Invoice ID"
// @Param        ApplyPaymentRequest  body      ApplyPaymentRequestBody  True  "Payment to apply"
// @Success      200                  {object}  models.Payment
// @Failure      400                  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/payments [post]
func (controller *PaymentController) ApplyPayment(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	reqBody := ApplyPaymentRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load payment request body: invoice_id:%v error: %v", invoiceID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		c.Logger().Errorf("Invalid payment request body: invoice_id:%v error: %v", invoiceID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	params := service.ApplyPaymentParams{
		InvoiceID: invoiceID,
		Amount:    reqBody.Amount,
		Method:    reqBody.Method,
		Reference: reqBody.Reference,
	}
	if reqBody.PaymentDate != nil {
		params.PaymentDate = *reqBody.PaymentDate
	}

	payment, err := controller.svc.ApplyPayment(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to apply payment: invoice_id:%v amount:%v error: %v", invoiceID, reqBody.Amount, err)
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// Balance godoc
// @Summary      Invoice balance
// @Description  Returns the invoice total, the booked payments and the remaining balance
// @Produce      json
// @Tags         Payment
// @Param        id   path      int  True  "Invoice ID"
// @Success      200  {object}  BalanceResponseBody
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/balance [get]
func (controller *PaymentController) Balance(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	total, paid, remaining, err := controller.svc.InvoiceBalance(c.Request().Context(), invoiceID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, &BalanceResponseBody{
		InvoiceID: invoiceID,
		Total:     total,
		Paid:      paid,
		Remaining: remaining,
	})
}
