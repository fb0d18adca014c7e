package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/tourwise/billing/common"
	"github.com/tourwise/billing/db/models"
)

type webhookPayload struct {
	Event   string         `json:"event"`
	Invoice models.Invoice `json:"invoice"`
}

// StartWebhookSubscription forwards invoice lifecycle events to the
// configured webhook URL until the context is cancelled.
func (svc *BillingService) StartWebhookSubscription(ctx context.Context) {
	svc.Logger.Infof("Starting webhook subscription with webhook url %s", svc.Config.WebhookUrl)

	events := []string{
		common.EventInvoiceCreated,
		common.EventInvoicePosted,
		common.EventInvoiceCancelled,
		common.EventInvoicePaid,
	}
	channels := make([]chan models.Invoice, len(events))
	for i, event := range events {
		channels[i] = make(chan models.Invoice)
		svc.InvoicePubSub.Subscribe(event, channels[i])
	}

	for {
		select {
		case <-ctx.Done():
			return
		case invoice := <-channels[0]:
			svc.postToWebhook(common.EventInvoiceCreated, invoice)
		case invoice := <-channels[1]:
			svc.postToWebhook(common.EventInvoicePosted, invoice)
		case invoice := <-channels[2]:
			svc.postToWebhook(common.EventInvoiceCancelled, invoice)
		case invoice := <-channels[3]:
			svc.postToWebhook(common.EventInvoicePaid, invoice)
		}
	}
}

func (svc *BillingService) postToWebhook(event string, invoice models.Invoice) {
	payload := new(bytes.Buffer)
	err := json.NewEncoder(payload).Encode(webhookPayload{Event: event, Invoice: invoice})
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	resp, err := http.Post(svc.Config.WebhookUrl, "application/json", payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
