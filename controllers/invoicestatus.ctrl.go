package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tourwise/billing/lib/responses"
	"github.com/tourwise/billing/lib/service"
)

// InvoiceStatusController : Invoice status transition controller struct
type InvoiceStatusController struct {
	svc *service.BillingService
}

func NewInvoiceStatusController(svc *service.BillingService) *InvoiceStatusController {
	return &InvoiceStatusController{svc: svc}
}

// PostInvoice godoc
// @Summary      Post an invoice
// @Description  Moves a draft invoice to posted, locking its lines
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  True  "Invoice ID"
// @Success      200  {object}  models.Invoice
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/post [post]
func (controller *InvoiceStatusController) PostInvoice(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.PostInvoice(c.Request().Context(), invoiceID)
	if err != nil {
		c.Logger().Errorf("Failed to post invoice: invoice_id:%v error: %v", invoiceID, err)
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// CancelInvoice godoc
// @Summary      Cancel an invoice
// @Description  Cancels a draft invoice
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  True  "Invoice ID"
// @Success      200  {object}  models.Invoice
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/cancel [post]
func (controller *InvoiceStatusController) CancelInvoice(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.CancelInvoice(c.Request().Context(), invoiceID)
	if err != nil {
		c.Logger().Errorf("Failed to cancel invoice: invoice_id:%v error: %v", invoiceID, err)
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}
