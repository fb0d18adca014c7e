package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tourwise/billing/lib/responses"
	"github.com/tourwise/billing/lib/service"
)

// BatchInvoiceController : Batch invoice synthesis controller struct
type BatchInvoiceController struct {
	svc *service.BillingService
}

func NewBatchInvoiceController(svc *service.BillingService) *BatchInvoiceController {
	return &BatchInvoiceController{svc: svc}
}

type BatchInvoiceRequestBody struct {
	CustomerID int64      `json:"customer_id" validate:"required"`
	JobIDs     []int64    `json:"job_ids" validate:"required"`
	IssueDate  *time.Time `json:"issue_date"`
	DueDate    *time.Time `json:"due_date"`
}

// Synthesize godoc
// @Summary      Synthesize batch invoices
// @Description  Derives transfer and driver-tip invoices for a customer from completed trip jobs
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        BatchInvoiceRequest  body      BatchInvoiceRequestBody  True  "Batch to synthesize"
// @Success      200                  {object}  service.BatchSynthesisResult
// @Failure      400                  {object}  responses.ErrorResponse
// @Router       /invoices/batch [post]
func (controller *BatchInvoiceController) Synthesize(c echo.Context) error {
	reqBody := BatchInvoiceRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load batch invoice request body: error: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		c.Logger().Errorf("Invalid batch invoice request body: error: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	issueDate := time.Now()
	if reqBody.IssueDate != nil {
		issueDate = *reqBody.IssueDate
	}

	result, err := controller.svc.SynthesizeBatchInvoices(c.Request().Context(), reqBody.CustomerID, reqBody.JobIDs, issueDate, reqBody.DueDate)
	if err != nil {
		c.Logger().Errorf("Failed to synthesize batch invoices: customer_id:%v error: %v", reqBody.CustomerID, err)
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
