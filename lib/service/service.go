package service

import (
	"context"

	"github.com/tourwise/billing/common"
	"github.com/tourwise/billing/db/models"
	"github.com/tourwise/billing/rabbitmq"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

type BillingService struct {
	Config         *Config
	DB             *bun.DB
	Logger         *lecho.Logger
	NumberGen      *InvoiceNumberGenerator
	InvoicePubSub  *Pubsub
	RabbitMQClient rabbitmq.Client
}

// publishInvoiceEvent fans an invoice lifecycle event out to the in-process
// subscribers (webhook notifier) and, when configured, to RabbitMQ. Event
// delivery is best-effort: the invoice is already committed at this point.
func (svc *BillingService) publishInvoiceEvent(ctx context.Context, event string, invoice *models.Invoice) {
	svc.InvoicePubSub.Publish(event, *invoice)
	if svc.RabbitMQClient != nil {
		err := svc.RabbitMQClient.PublishInvoiceEvent(ctx, event, invoice)
		if err != nil {
			svc.Logger.Errorf("Failed to publish %s to rabbitmq invoice_id:%v error: %v", event, invoice.ID, err)
		}
	}
}

func prefixForInvoiceType(invoiceType string) string {
	switch invoiceType {
	case common.InvoiceTypeTransfer:
		return common.NumberPrefixTransfer
	case common.InvoiceTypeDriverTip:
		return common.NumberPrefixDriverTip
	default:
		return common.NumberPrefixStandard
	}
}
