package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"volumescope/internal/config"
	"volumescope/internal/controllers"
	"volumescope/internal/logger"
	"volumescope/internal/middleware"
	"volumescope/internal/routes"
	"volumescope/internal/services"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// NewRouter assembles the HTTP surface for cfg
func NewRouter(cfg *config.Config, scans *services.ScanService) *gin.Engine {
	gin.DefaultWriter = logger.Writer()
	gin.DefaultErrorWriter = logger.Writer()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.TelemetryMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	routes.RegisterAPIRoutes(r, controllers.NewScanController(scans), middleware.RateLimitMiddleware(limiter))
	routes.RegisterLiveRoutes(r, cfg.AllowedOrigins)
	routes.RegisterStaticRoutes(r, cfg.StaticDir)

	return r
}

// NewScanService builds the scan service described by cfg
func NewScanService(cfg *config.Config) *services.ScanService {
	return services.NewScanService(services.ScanOptions{
		DefaultRoot: cfg.ScanRoot,
		Concurrency: cfg.ScanConcurrency,
		WalkWorkers: cfg.WalkWorkers,
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	if cfg.VolumeInterval > 0 {
		services.SetCacheTTL(cfg.VolumeInterval)
	}
	services.InitWebSocketHub(cfg.ScanRoot, cfg.VolumeInterval)
	defer services.StopWebSocketHub()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(cfg, NewScanService(cfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[SERVER] volumescope running on %s", cfg.Addr())
		logger.Info("[SERVER] Scanning path: %s (concurrency %d)", cfg.ScanRoot, cfg.ScanConcurrency)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("[SERVER] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
