package transport

import (
	"github.com/labstack/echo/v4"
	"github.com/tourwise/billing/controllers"
	"github.com/tourwise/billing/lib/service"
)

func RegisterEndpoints(svc *service.BillingService, e *echo.Echo, strictRateLimitMiddleware echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	invoiceCtrl := controllers.NewInvoiceController(svc)
	statusCtrl := controllers.NewInvoiceStatusController(svc)
	paymentCtrl := controllers.NewPaymentController(svc)
	batchCtrl := controllers.NewBatchInvoiceController(svc)

	e.POST("/invoices", invoiceCtrl.CreateInvoice, strictRateLimitMiddleware, logMw)
	e.GET("/invoices", invoiceCtrl.ListInvoices, logMw)
	e.GET("/invoices/:id", invoiceCtrl.GetInvoice, logMw)
	e.PUT("/invoices/:id/lines", invoiceCtrl.ReplaceLines, strictRateLimitMiddleware, logMw)
	e.POST("/invoices/:id/post", statusCtrl.PostInvoice, strictRateLimitMiddleware, logMw)
	e.POST("/invoices/:id/cancel", statusCtrl.CancelInvoice, strictRateLimitMiddleware, logMw)
	e.POST("/invoices/:id/payments", paymentCtrl.ApplyPayment, strictRateLimitMiddleware, logMw)
	e.GET("/invoices/:id/balance", paymentCtrl.Balance, logMw)
	e.POST("/invoices/batch", batchCtrl.Synthesize, strictRateLimitMiddleware, logMw)
}
