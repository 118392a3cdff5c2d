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
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/deepchat/internal/auth"
	"github.com/Skotchmaster/deepchat/internal/chat"
	"github.com/Skotchmaster/deepchat/internal/config"
	"github.com/Skotchmaster/deepchat/internal/events"
	"github.com/Skotchmaster/deepchat/internal/handlers"
	"github.com/Skotchmaster/deepchat/internal/logging"
	"github.com/Skotchmaster/deepchat/internal/search"
	"github.com/Skotchmaster/deepchat/internal/store"
	"github.com/Skotchmaster/deepchat/internal/tokens"
	httpserver "github.com/Skotchmaster/deepchat/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	if configuration.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET is required")
	}

	st, closeStore, err := openStore(configuration)
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}

	codec := &tokens.Codec{
		Secret:     []byte(configuration.JWT_SECRET),
		AccessTTL:  configuration.ACCESS_TTL,
		RefreshTTL: configuration.REFRESH_TTL,
	}

	var producer events.Publisher
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewKafkaProducer([]string{configuration.KAFKA_ADDRESS})
	}

	deps := &httpserver.Deps{
		Guard: &auth.Guard{Store: st, Codec: codec},
		Auth: &handlers.AuthHandler{
			Svc: &auth.Service{Store: st, Codec: codec, Events: producer},
		},
		Purchases:     &handlers.PurchaseHandler{Store: st, Events: producer},
		Subscriptions: &handlers.SubscriptionHandler{Store: st},
	}

	presentations := &handlers.PresentationHandler{Store: st, Index: "presentations"}
	if configuration.ES_URL != "" {
		esClient, err := search.NewClient(configuration.ES_URL, configuration.ES_USER, configuration.ES_PASSWORD)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		presentations.ES = esClient
		deps.Search = &handlers.SearchHandler{ES: esClient, Index: "presentations"}
	}
	deps.Presentations = presentations

	var relay *chat.Relay
	if configuration.LLM_WS_URL != "" {
		relay, err = chat.Dial(configuration.LLM_WS_URL, "http://localhost/")
		if err != nil {
			log.Fatalf("llm relay init error: %v", err)
		}
		deps.Chat = &handlers.ChatHandler{Relay: relay}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         ":" + configuration.APP_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", configuration.APP_PORT, "db_backend", configuration.DB_BACKEND)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if relay != nil {
		if err := relay.Close(); err != nil {
			log.Printf("relay close error: %v", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}
	if err := closeStore(ctx); err != nil {
		log.Printf("store close error: %v", err)
	}

	logger.Info("shutdown complete")
}

func openStore(cfg *config.Config) (store.Store, func(context.Context) error, error) {
	switch cfg.DB_BACKEND {
	case "mongo":
		m, err := store.NewMongo(cfg.MONGO_URI, cfg.MONGO_DB)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil

	case "postgres":
		db, err := store.OpenPostgres(cfg.DB_HOST, cfg.DB_PORT, cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_NAME)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSQL(db)
		if err != nil {
			return nil, nil, err
		}
		closer := func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return s, closer, nil

	case "sqlite":
		db, err := store.OpenSQLite(cfg.DB_NAME)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSQL(db)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unknown DB_BACKEND %q", cfg.DB_BACKEND)
}
