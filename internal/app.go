package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"ratingd/internal/controllers"
	"ratingd/internal/providers"
	"ratingd/internal/services"
	"ratingd/internal/storage"
	"ratingd/internal/structures"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	WebServer *http.Server
}

// NewHandler assembles the HTTP surface: instrumented API routes plus the
// health and metrics endpoints.
func NewHandler(healthController *controllers.HealthController, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) http.Handler {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	instrumentedAPI := providers.MetricsMiddleware(metrics, logger, apiMux)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)
	return mux
}

// listenPort prefers the daemon config and falls back to the port stored
// in the settings document.
func listenPort(conf *structures.Config, settings services.SettingsServiceInterface) int {
	if conf.WebServer.Port > 0 {
		return conf.WebServer.Port
	}
	return settings.Port()
}

func NewApp(
	handler http.Handler,
	store storage.RatingStoreInterface,
	settings services.SettingsServiceInterface,
	archiver *storage.Archiver,
	conf *structures.Config,
	logger providers.Logger,
) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	defer archiver.Close()

	if err := store.EnsureAll(); err != nil {
		return nil, fmt.Errorf("rating files integrity: %w", err)
	}

	addr := conf.WebServer.Host + ":" + strconv.Itoa(listenPort(conf, settings))
	app := &App{
		WebServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", addr)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return nil, fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
