package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"backoffice/catalog/internal/config"
	"backoffice/catalog/internal/httpserver"
	"backoffice/catalog/internal/infrastructure/token"
	"backoffice/catalog/internal/obs"
	authusecase "backoffice/catalog/internal/usecase/auth"
	productusecase "backoffice/catalog/internal/usecase/product"
	"backoffice/catalog/internal/usecase/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	obs.InitLogger(obs.ParseLevel(cfg.LogLevel))

	rootCtx := context.Background()
	stores, err := openStores(rootCtx, cfg)
	if err != nil {
		obs.Logger.Error("store_open_failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer stores.close()
	obs.Logger.Info("store_ready", "driver", cfg.StoreDriver, "unique_codes", cfg.UniqueCodes)

	tokenManager := token.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
	authService := authusecase.NewService(stores.users, tokenManager, token.NewFileCache(cfg.SessionFile), cfg.MinPasswordLength)

	tracker := session.NewTracker(authService)
	defer tracker.Close()

	metrics := obs.NewMetrics()
	catalog := productusecase.NewCatalog(stores.products, tracker, metrics)

	server := httpserver.NewServer(cfg, authService, tracker, catalog, metrics)
	if stores.ping != nil {
		server.UseHealthCheck(stores.ping)
	}
	go authService.Restore(rootCtx, "")

	obs.Logger.Info("http_listening", "addr", server.Addr())
	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				obs.Logger.Info("http_closed")
				return
			}
			obs.Logger.Error("http_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		obs.Logger.Error("graceful_shutdown_failed", "error", err)
	} else {
		obs.Logger.Info("graceful_shutdown_completed")
	}
}
