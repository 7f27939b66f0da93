package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/joho/godotenv"

	"snackbar-web/handlers"
	"snackbar-web/internal/auth"
	"snackbar-web/internal/consul"
	"snackbar-web/internal/draft"
	"snackbar-web/internal/gateway"
	"snackbar-web/internal/stores/kafka"
	"snackbar-web/pkg/logkey"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on process environment")
	}

	if err := run(); err != nil {
		slog.Error("service stopped", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	keys, err := loadAuthKeys()
	if err != nil {
		return err
	}

	base, err := apiBase()
	if err != nil {
		return err
	}
	gw := gateway.NewClient(base, envDuration("API_TIMEOUT", 10*time.Second))

	store := draft.NewStore(envDuration("DRAFT_TTL", time.Hour))
	flow := draft.NewWorkflow(store, gw)

	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return fmt.Errorf("setting up kafka: %w", err)
		}
		defer kafkaConf.Close()
	} else {
		slog.Info("KAFKA_BROKERS not set, event publishing disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Drop drafts abandoned mid-build so the store cannot grow without bound.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.Sweep(); removed > 0 {
					slog.Info("swept abandoned drafts", slog.Int("REMOVED", removed))
				}
			}
		}
	}()

	r := handlers.API(keys, gw, flow, kafkaConf, "templates/*.html")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting snackbar web service", slog.String("ADDR", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func loadAuthKeys() (*auth.Keys, error) {
	keyFile := os.Getenv("AUTH_PUBLIC_KEY_FILE")
	if keyFile == "" {
		return nil, fmt.Errorf("AUTH_PUBLIC_KEY_FILE is not set")
	}
	pem, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("reading auth public key: %w", err)
	}
	return auth.NewKeys(pem)
}

// apiBase picks how the remote data API is located: a fixed API_BASE_URL for
// development, consul discovery otherwise.
func apiBase() (func() (string, error), error) {
	if baseURL := os.Getenv("API_BASE_URL"); baseURL != "" {
		return gateway.StaticBase(baseURL), nil
	}

	client, err := consulapi.NewClient(consulapi.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("creating consul client: %w", err)
	}

	serviceName := os.Getenv("API_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "snackbar-api"
	}
	return func() (string, error) {
		address, port, err := consul.GetServiceAddress(client, serviceName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("http://%s:%d", address, port), nil
	}, nil
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration, using fallback", slog.String("KEY", key), slog.String(logkey.ERROR, err.Error()))
		return fallback
	}
	return d
}
