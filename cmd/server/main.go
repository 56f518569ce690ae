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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agrifarma/platform/internal/config"
	"github.com/agrifarma/platform/internal/es"
	"github.com/agrifarma/platform/internal/handlers"
	"github.com/agrifarma/platform/internal/handlers/cart"
	"github.com/agrifarma/platform/internal/logging"
	"github.com/agrifarma/platform/internal/mykafka"
	cartsvc "github.com/agrifarma/platform/internal/service/cart"
	"github.com/agrifarma/platform/internal/service/consult"
	ordersvc "github.com/agrifarma/platform/internal/service/order"
	"github.com/agrifarma/platform/internal/service/token"
	httpserver "github.com/agrifarma/platform/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	slog.SetDefault(logging.New(configuration.LOG_LEVEL))

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Printf("kafka disabled: %v", err)
		prod = &mykafka.Producer{}
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Printf("elasticsearch disabled: %v", err)
		esClient = nil
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB: db,
		AuthHandler: &handlers.AuthHandler{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod,
		},
		ProductHandler: &handlers.ProductHandler{
			DB: db, Producer: prod, ES: esClient, Index: "products",
		},
		BlogHandler:   &handlers.BlogHandler{DB: db},
		ForumHandler:  &handlers.ForumHandler{DB: db},
		ExpertHandler: &handlers.ExpertHandler{DB: db},
		ConsultationHandler: &handlers.ConsultationHandler{
			DB: db, Svc: &consult.Service{DB: db}, Producer: prod,
		},
		SearchHandler: &handlers.SearchHandler{DB: db, ES: esClient, Index: "products"},
		ChatHandler:   handlers.NewChatHandler(configuration.CHAT_API_URL, configuration.CHAT_API_KEY),
		CartHandler: &cart.CartHandler{
			DB:       db,
			Cart:     &cartsvc.Service{DB: db},
			Orders:   &ordersvc.Service{DB: db},
			Producer: prod,
		},
		TokenService: &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
