package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ramo2594/probook/libs/config"
	"github.com/ramo2594/probook/libs/db"
	"github.com/ramo2594/probook/libs/email"
	"github.com/ramo2594/probook/libs/httpx"
	"github.com/ramo2594/probook/libs/kafkax"
	otelx "github.com/ramo2594/probook/libs/otel"
	"github.com/ramo2594/probook/libs/runtime"
	"github.com/ramo2594/probook/services/probook/internal/accounts"
	"github.com/ramo2594/probook/services/probook/internal/booking"
	"github.com/ramo2594/probook/services/probook/internal/handlers"
	"github.com/ramo2594/probook/services/probook/internal/notify"
	"github.com/ramo2594/probook/services/probook/internal/outbox"
	"github.com/ramo2594/probook/services/probook/internal/session"
	"github.com/ramo2594/probook/services/probook/internal/storage"
	"github.com/ramo2594/probook/services/probook/internal/views"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "probook")
	port, err := config.Port("PORT", "8000")
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

	loc, err := config.Location("APP_TIMEZONE", "UTC")
	if err != nil {
		panic(err)
	}
	secret, err := config.RequiredString("SESSION_SECRET")
	if err != nil {
		panic(err)
	}
	dbURL, err := config.RequiredString("DATABASE_URL")
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

	brokers := config.String("KAFKA_BROKERS", "")
	outboxRepo := outbox.NewRepository()
	users := storage.NewUserRepository(pool)
	professionals := storage.NewProfessionalRepository(pool)
	bookings := storage.NewBookingRepository(pool, outboxRepo)

	bookingCfg := booking.Config{Location: loc}
	switch mode := strings.ToLower(config.String("NOTIFY_MODE", "inline")); {
	case mode == "outbox" && len(kafkax.SplitBrokers(brokers)) > 0:
		bookingCfg.Events = notify.BookingCreatedEvent
		logger.Info("booking e-mails delivered by notifier", "topic", config.String("KAFKA_BOOKING_TOPIC", notify.EventBookingCreated))
	default:
		if mode == "outbox" {
			logger.Warn("NOTIFY_MODE=outbox without KAFKA_BROKERS; sending e-mails inline")
		}
		sender, err := email.New(email.ConfigFromEnv(), logger)
		if err != nil {
			panic(err)
		}
		bookingCfg.Notifier = notify.NewMailNotifier(sender, logger, nil)
	}

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		Topics:    map[string]string{notify.EventBookingCreated: config.String("KAFKA_BOOKING_TOPIC", notify.EventBookingCreated)},
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	readyChecks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if outboxPublisher.Enabled() {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	limiter, limiterCheck := newLimiter(logger)
	if limiterCheck != nil {
		readyChecks = append(readyChecks, *limiterCheck)
	}

	sessions := session.NewManager(secret,
		config.Duration("SESSION_TTL_HOURS", time.Hour, 12),
		config.Bool("SESSION_COOKIE_SECURE", false),
	)
	pageHandler := handlers.New(
		booking.NewService(professionals, bookings, logger, bookingCfg),
		accounts.NewService(users),
		sessions,
		views.MustRenderer(),
		logger,
	).WithRateLimit(httpx.RateLimit(limiter, logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true), http.MethodPost))

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	pageHandler.Register(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithSecurityHeaders,
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT_SECONDS", time.Second, 15)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("serving pages", "timezone", loc.String())
	_ = runtime.Serve(ctx, srv, logger, 10*time.Second)
}

// newLimiter prefers a shared Redis limiter and falls back to an in-process one.
func newLimiter(logger *slog.Logger) (httpx.Limiter, *runtime.ReadyCheck) {
	perMinute := config.Int("RATE_LIMIT_PER_MINUTE", 20)
	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		logger.Info("rate limiter using in-memory store")
		return httpx.NewRateLimiter(perMinute, time.Minute), nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0),
	})
	logger.Info("rate limiter using redis", "addr", addr)
	return httpx.NewRedisRateLimiter(rdb, perMinute, time.Minute, "probook:rl"),
		&runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)}
}
