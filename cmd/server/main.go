package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/phimart/internal/httpserver"
	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/internal/search"
	"github.com/Skotchmaster/phimart/internal/service"
	"github.com/Skotchmaster/phimart/pkg/config"
	pkgdb "github.com/Skotchmaster/phimart/pkg/db"
	"github.com/Skotchmaster/phimart/pkg/logging"
	"github.com/Skotchmaster/phimart/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/phimart/pkg/middleware/logging"
	"github.com/Skotchmaster/phimart/pkg/mykafka"
	"github.com/Skotchmaster/phimart/pkg/tokens"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var events service.EventPublisher = service.NoopPublisher{}
	producer, err := mykafka.NewProducer(cfg.KafkaBrokers)
	switch {
	case errors.Is(err, mykafka.ErrNoBrokers):
		logger.Warn("kafka disabled", "reason", "KAFKA_BROKERS is empty")
	case err != nil:
		log.Fatalf("kafka: %v", err)
	default:
		events = producer
	}

	var index service.ProductIndex
	idx, err := search.New(search.Config{
		URL:      cfg.ESURL,
		Username: cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	switch {
	case errors.Is(err, search.ErrNotConfigured):
		logger.Warn("search index disabled", "reason", "ES_URL is empty")
	case err != nil:
		log.Fatalf("elasticsearch: %v", err)
	default:
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := idx.Ping(pingCtx); err != nil {
			logger.Warn("elasticsearch unreachable, falling back to database search", "error", err)
		} else {
			index = idx
		}
		pingCancel()
	}

	store := repo.New(db)
	issuer := tokens.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.Secure())
	e.Use(csrf.Middleware(csrf.DefaultConfig()))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: service.NewAuthService(store, issuer)},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: service.NewCatalogService(store, index, events)},
		CartHandler:    &httpserver.CartHTTP{Svc: service.NewCartService(store, events)},
		OrderHandler:   &httpserver.OrderHTTP{Svc: service.NewOrderService(store, events, cfg.StrictOrderTransitions)},
		JWTSecret:      cfg.JWTAccessSecret,
		Ready: func(c echo.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(c.Request().Context())
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "strict_transitions", cfg.StrictOrderTransitions)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka close", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Warn("db close", "error", err)
	}

	logger.Info("server stopped")
}
