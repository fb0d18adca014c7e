package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tourwise/billing/db"
	"github.com/tourwise/billing/db/migrations"
	"github.com/tourwise/billing/lib"
	"github.com/tourwise/billing/lib/service"
	"github.com/tourwise/billing/lib/transport"
	"github.com/tourwise/billing/rabbitmq"
	"github.com/uptrace/bun/migrate"
	"github.com/ziflex/lecho/v3"
	ddEcho "gopkg.in/DataDog/dd-trace-go.v1/contrib/labstack/echo.v4"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// @title        Tourwise Billing
// @version      1.0.0
// @description  Invoicing and payment engine for the tour-operator back office.

// @BasePath  /
// @schemes   https http
func main() {

	c := &service.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := lecho.From(lib.Logger(c.LogFilePath))

	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	// Migrate the DB
	startupCtx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(startupCtx)
	if err != nil {
		logger.Fatalf("Error initializing db migrator: %v", err)
	}
	_, err = migrator.Migrate(startupCtx)
	if err != nil {
		logger.Fatalf("Error migrating database: %v", err)
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			IgnoreErrors:     []string{"401"},
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
	}

	// If no RABBITMQ_URI was provided we will not attempt to create a client
	// No rabbitmq features will be available in this case.
	var rabbitmqClient rabbitmq.Client
	if c.RabbitMQUri != "" {
		amqpConn, err := rabbitmq.DialAMQP(c.RabbitMQUri)
		if err != nil {
			logger.Fatal(err)
		}

		rabbitmqClient, err = rabbitmq.NewClient(amqpConn,
			rabbitmq.WithLogger(logger),
			rabbitmq.WithInvoiceExchange(c.RabbitMQInvoiceExchange),
		)
		if err != nil {
			logger.Fatal(err)
		}

		// close the connection gently at the end of the runtime
		defer rabbitmqClient.Close()
	}

	svc := &service.BillingService{
		Config:         c,
		DB:             dbConn,
		Logger:         logger,
		NumberGen:      service.NewInvoiceNumberGenerator(),
		InvoicePubSub:  service.NewPubsub(),
		RabbitMQClient: rabbitmqClient,
	}

	//init echo server
	e := transport.InitEcho(c, logger)
	//if Datadog is configured, add datadog middleware
	if c.DatadogAgentUrl != "" {
		tracer.Start(tracer.WithAgentAddr(c.DatadogAgentUrl))
		defer tracer.Stop()
		e.Use(ddEcho.Middleware(ddEcho.WithServiceName("billing")))
	}

	logMw := transport.CreateLoggingMiddleware(logger)
	strictRateLimitMw := transport.CreateRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)
	transport.RegisterEndpoints(svc, e, strictRateLimitMw, logMw)

	backgroundCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Subscribe to invoice events and forward them to the webhook url
	if c.WebhookUrl != "" {
		go svc.StartWebhookSubscription(backgroundCtx)
	}

	// Start the prometheus server if enabled
	if c.EnablePrometheus {
		go transport.StartPrometheusEcho(logger, c.PrometheusPort, e)
	}

	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil && err != http.ErrServerClosed {
			logger.Fatal(err)
		}
	}()

	<-backgroundCtx.Done()
	logger.Info("Shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		logger.Fatal(err)
	}
}
