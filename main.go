package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	v1 "salesdash/api/v1"
	"salesdash/database"
	analyticsapp "salesdash/internal/analytics/application"
	"salesdash/internal/config"
	exportapp "salesdash/internal/export/application"
	salesinfra "salesdash/internal/sales/infrastructure"
	sharedinfra "salesdash/internal/shared/infrastructure"
)

func main() {
	cfg, err := config.Load("config.toml")
	if err != nil {
		log.Fatalf("[Server] configuration: %v", err)
	}

	staging, err := openStaging(cfg)
	if err != nil {
		log.Fatalf("[Server] staging: %v", err)
	}
	defer database.Close()

	cache := sharedinfra.NewShardedCache(16)
	defer cache.Close()

	router := newRouter(cfg, newHandlers(cfg, staging, cache))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[Server] listening on %s (staging: %s)", cfg.Addr(), cfg.Staging.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Server] %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] shutdown: %v", err)
	}
}

// openStaging choisit le stockage du jeu actif selon la configuration
func openStaging(cfg *config.AppConfig) (salesinfra.Staging, error) {
	driver := cfg.Staging.Driver
	if driver == config.DriverMemory {
		return salesinfra.NewMemoryStaging(), nil
	}
	if driver == config.DriverSQLite {
		if _, err := config.EnsureDataDir(cfg); err != nil {
			return nil, err
		}
	}

	if err := database.Init(driver, cfg.StagingDSN()); err != nil {
		return nil, fmt.Errorf("connexion %s: %w", driver, err)
	}
	dialect, err := database.DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return salesinfra.NewStagingRepository(database.DB, dialect), nil
}

func newHandlers(cfg *config.AppConfig, staging salesinfra.Staging, cache sharedinfra.Cache) *v1.Handlers {
	dashboard := analyticsapp.NewDashboardService(staging, cache, cfg.CacheTTL())
	return v1.NewHandlers(
		dashboard,
		exportapp.NewExportService(dashboard),
		exportapp.NewChartService(dashboard, cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight),
		cfg.MaxUploadBytes(),
		cfg.Dashboard.PreviewRows,
	)
}

func newRouter(cfg *config.AppConfig, h *v1.Handlers) *gin.Engine {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	router.GET("/api/health", healthHandler)
	h.RegisterRoutes(router.Group("/api/v1"))
	h.RegisterPage(router)

	// Profilage (net/http/pprof) exposé en développement uniquement
	if cfg.Server.DevMode {
		router.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}
	return router
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "API v1 disponible",
	})
}
