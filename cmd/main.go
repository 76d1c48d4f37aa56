package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "campus_parking/docs"
	"campus_parking/internal/gateway"
	"campus_parking/internal/handlers"
	"campus_parking/internal/logger"
	"campus_parking/internal/repository"
	"campus_parking/internal/repository/db"
	"campus_parking/internal/server"
	"campus_parking/internal/service"

	"github.com/spf13/viper"
)

const (
	defaultPort   = "8080"
	defaultDBPath = "parking.db"
)

// @title           Campus Parking API
// @version         1.0
// @description     Parking reservation service with a demo-friendly remote gateway: backend failures degrade to mock data instead of error screens.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfgErr := loadConfig()
	log := logger.Get(viper.GetString("log_level"))
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	gw := gateway.New(gateway.Config{
		BaseURL: viper.GetString("gateway.base_url"),
		Timeout: viper.GetDuration("gateway.timeout"),
		Strict:  viper.GetBool("gateway.strict"),
	}, log.Component("gateway"), repos.EventRepo)
	services := service.NewService(repos, gw, log, service.Config{
		PollInterval: viper.GetDuration("board.poll_interval"),
		SigningKey:   viper.GetString("auth.signing_key"),
		TokenTTL:     viper.GetDuration("auth.token_ttl"),
	})
	apiHandler := handlers.NewHandler(services, gw, log)

	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	waitForShutdown(srv, services, log)
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
		log.Infow("db.path not set in config; using default file", "default", defaultDBPath)
		dbPath = defaultDBPath
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = defaultPort
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the board poller before dropping the listener
	services.Board.Deactivate()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
