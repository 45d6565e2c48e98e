package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dteller/pixelforge/internal/api"
	"github.com/dteller/pixelforge/internal/config"
	"github.com/dteller/pixelforge/internal/logging"
	"github.com/dteller/pixelforge/internal/search"
	"github.com/dteller/pixelforge/internal/service"
	"github.com/dteller/pixelforge/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewJSON(os.Stdout)
	ctx := context.Background()

	if err := store.MigrateUp(ctx, cfg.DBSource); err != nil {
		log.Fatalf("Unable to migrate database: %v", err)
	}

	st, err := store.NewStore(ctx, cfg.DBSource)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer st.Close()

	// Initialize Layers
	users := service.NewUsers(st, logger)
	images := service.NewImages(st, logger)
	listing := service.NewListing(st, search.NewClient(cfg.SearchBaseURL, cfg.SearchAPIKey), logger)
	recorder := service.NewRecorder(st, logger)

	handler := api.NewHandler(users, images, listing, recorder, logger)
	identity := api.NewIdentity(users, cfg.AuthJWTSecret, logger)

	// Router
	r := mux.NewRouter()
	r.Use(api.RequestID)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	r.HandleFunc("/webhooks/payments", api.WebhookToken(cfg.WebhookToken, handler.PaymentWebhook)).Methods("POST")
	r.HandleFunc("/webhooks/identity", api.WebhookToken(cfg.WebhookToken, handler.IdentityWebhook)).Methods("POST")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/images", handler.ListImages).Methods("GET")
	apiV1.HandleFunc("/images", identity.Require(handler.CreateImage)).Methods("POST")
	apiV1.HandleFunc("/images/{id}", handler.GetImage).Methods("GET")
	apiV1.HandleFunc("/images/{id}", identity.Require(handler.UpdateImage)).Methods("PUT")
	apiV1.HandleFunc("/images/{id}", identity.Require(handler.DeleteImage)).Methods("DELETE")
	apiV1.HandleFunc("/users/me", identity.Require(handler.Me)).Methods("GET")
	apiV1.HandleFunc("/users/me/images", identity.Require(handler.MyImages)).Methods("GET")

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info(ctx, "server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "shutdown failed", "error", err)
	}
}
