package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tourwise/billing/db/models"
	"github.com/ziflex/lecho/v3"
)

// bufPool is a classic buffer pool pattern that allows more clever reuse of
// heap memory. Instead of allocating new memory every time we encode an
// invoice event we reuse buffers from this pool.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const contentTypeJSON = "application/json"

type Client interface {
	PublishInvoiceEvent(ctx context.Context, event string, invoice *models.Invoice) error
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	conn           *amqp.Connection
	publishChannel *amqp.Channel

	logger *lecho.Logger

	invoiceExchange string
}

type ClientOption = func(client *DefaultClient)

func WithInvoiceExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.invoiceExchange = exchange
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

// DialAMQP connects to rabbitmq, retrying with exponential backoff so a
// restarting broker does not take the service down with it.
func DialAMQP(uri string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	operation := func() error {
		var err error
		conn, err = amqp.Dial(uri)
		return err
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(operation, policy)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func NewClient(conn *amqp.Connection, options ...ClientOption) (Client, error) {
	client := &DefaultClient{
		conn:            conn,
		logger:          lecho.New(os.Stderr),
		invoiceExchange: "billing_invoice",
	}
	for _, opt := range options {
		opt(client)
	}

	publishChannel, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	client.publishChannel = publishChannel

	// Durable exchanges survive broker restarts and keep delivering
	// events after redeploys.
	err = publishChannel.ExchangeDeclare(
		client.invoiceExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

type invoiceEvent struct {
	Event   string          `json:"event"`
	Invoice *models.Invoice `json:"invoice"`
}

// PublishInvoiceEvent publishes one invoice lifecycle event, routed by the
// event name (invoice.created, invoice.posted, invoice.paid, ...).
func (client *DefaultClient) PublishInvoiceEvent(ctx context.Context, event string, invoice *models.Invoice) error {
	buf := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(buf)
	buf.Reset()

	err := json.NewEncoder(buf).Encode(invoiceEvent{Event: event, Invoice: invoice})
	if err != nil {
		return err
	}

	err = client.publishChannel.PublishWithContext(ctx,
		client.invoiceExchange,
		event,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        buf.Bytes(),
		},
	)
	if err != nil {
		return err
	}
	client.logger.Debugf("Published %s for invoice %s", event, invoice.Number)
	return nil
}

func (client *DefaultClient) Close() error {
	return client.conn.Close()
}
