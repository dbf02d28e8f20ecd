package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donation-service/internal/config"
	"donation-service/internal/consent"
	"donation-service/internal/db"
	"donation-service/internal/event"
	"donation-service/internal/kafka"
	"donation-service/internal/logging"
	"donation-service/internal/metrics"
	"donation-service/internal/mpesa"
	"donation-service/internal/search"
	"donation-service/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env: %v", err)
	}

	cfg := config.MustLoadConfig(".")
	logger := logging.GetLogger(cfg.Logs)
	slog.SetDefault(logger)

	metrics.Setup(cfg.Metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mpesa.NewClient(mpesa.Config{
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
		BaseURL:        cfg.Mpesa.BaseURL,
	},
		mpesa.WithHTTPClient(&http.Client{Timeout: config.Millis(cfg.Mpesa.TimeoutMs)}),
		mpesa.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}

	savers := mpesa.Savers{mpesa.NewLogSaver(logger)}

	var repo *db.DonationRepository
	if cfg.Database.Enabled() {
		connStr := cfg.Database.ConnString()
		if err := db.RunMigrations(connStr, cfg.Database.MigrationsDir); err != nil {
			log.Fatal(err)
		}

		dbpool, err := db.GetPool(ctx, connStr)
		if err != nil {
			log.Fatal(err)
		}
		defer dbpool.Close()

		repo = db.NewDonationRepository(dbpool, logger)
	}

	switch {
	case cfg.Kafka.Enabled():
		writer := kafka.NewWriter(cfg.Kafka, cfg.Kafka.Topic.DonationEvents)
		defer writer.Close()
		savers = append(savers, kafka.NewDonationPublisher(writer, logger))

		if repo != nil {
			reader := kafka.NewReader(cfg.Kafka, cfg.Kafka.Topic.DonationEvents)
			defer reader.Close()
			go kafka.ReadDonationEvents(ctx, reader, event.NewProcessor(repo, logger), logger)
		}
	case repo != nil:
		savers = append(savers, repo)
	}

	var store consent.Store = consent.NewMemoryStore()
	if cfg.Redis.Enabled() {
		redisClient, err := consent.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, keeping consent in memory", "error", err)
		} else {
			defer redisClient.Close()
			store = consent.NewRedisStore(redisClient)
		}
	}
	banner := consent.NewBanner(store,
		config.Millis(cfg.Site.ConsentDelayMs),
		time.Duration(cfg.Site.ConsentTTLHours)*time.Hour)

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Deps{
		Gateway:   client,
		Callbacks: mpesa.NewCallbackHandler(savers, logger),
		Search:    search.DefaultIndex(),
		Consent:   banner,
		Logger:    logger,
		Mpesa:     cfg.Mpesa,
		Site:      cfg.Site,
		RateLimit: cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Millis(cfg.Server.ShutdownTimeoutMs))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", "error", err)
	}
}
