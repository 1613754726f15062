package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/encetamasb/TheSpaghettiDetective/internal/handlers"
	"github.com/encetamasb/TheSpaghettiDetective/internal/logger"
	"github.com/encetamasb/TheSpaghettiDetective/internal/repository"
	"github.com/encetamasb/TheSpaghettiDetective/internal/repository/db"
	"github.com/encetamasb/TheSpaghettiDetective/internal/server"
	"github.com/encetamasb/TheSpaghettiDetective/internal/service"
	"github.com/encetamasb/TheSpaghettiDetective/internal/statuscache"
)

const janitorInterval = 30 * time.Second

// @title TheSpaghettiDetective Telemetry API
// @version 1.0
// @description Print telemetry ingestion, lifecycle tracking and monitoring for 3D printers.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log.level"))

	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	repos := repository.NewRepository(sqlDB)
	cache := statuscache.New()
	services := service.NewService(repos, cache, service.Config{
		StatusTTL:         viper.GetDuration("status_ttl"),
		WebhookURL:        viper.GetString("webhook.url"),
		WebhookRatePerMin: viper.GetInt("webhook.rate_per_minute"),
		JWTSigningKey:     viper.GetString("auth.jwt_signing_key"),
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go cache.RunJanitor(ctx, janitorInterval)
	go services.Webhooks.Run(ctx)

	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "spaghetti.db")
		dbPath = "spaghetti.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the janitor and webhook delivery loop
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
