package main

import (
	"context"
	"net/http"
	"time"

	"github.com/ramo2594/probook/libs/config"
	"github.com/ramo2594/probook/libs/db"
	"github.com/ramo2594/probook/libs/email"
	"github.com/ramo2594/probook/libs/httpx"
	"github.com/ramo2594/probook/libs/kafkax"
	otelx "github.com/ramo2594/probook/libs/otel"
	"github.com/ramo2594/probook/libs/runtime"
	"github.com/ramo2594/probook/services/probook/internal/consumer"
	"github.com/ramo2594/probook/services/probook/internal/inbox"
	"github.com/ramo2594/probook/services/probook/internal/notify"
	"github.com/ramo2594/probook/services/probook/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "probook-notifier")
	port, err := config.Port("PORT", "8001")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	brokers, err := config.RequiredString("KAFKA_BROKERS")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if config.Bool("DB_AUTO_MIGRATE", true) {
		if err := storage.Migrate(ctx, pool); err != nil {
			logger.Error("db migration failed", "err", err)
			panic(err)
		}
	}

	sender, err := email.New(email.ConfigFromEnv(), logger)
	if err != nil {
		panic(err)
	}
	notifier := notify.NewMailNotifier(sender, logger, storage.NewNotificationRepository(pool))

	eventConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", "probook-notifier"),
		Topic:   config.String("KAFKA_BOOKING_TOPIC", notify.EventBookingCreated),
	}, notifier.HandleMessage)
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	_ = runtime.Serve(ctx, srv, logger, 10*time.Second)
	logger.Info("notifier stopped")
}
