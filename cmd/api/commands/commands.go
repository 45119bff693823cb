package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tododash/core/internal/adapters/todoist"
	"github.com/tododash/core/internal/application/services"
	"github.com/tododash/core/internal/infrastructure/config"
	"github.com/tododash/core/internal/infrastructure/database"
	"github.com/tododash/core/internal/infrastructure/logger"
	"github.com/tododash/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard view server",
		Long:  "Start the HTTP server and the periodic Todoist refresh loop",
		Run: func(cmd *cobra.Command, args []string) {
			configFile, _ := cmd.Flags().GetString("config")
			runServer(configFile)
		},
	}
	cmd.Flags().String("config", "", "Path to the config file")
	return cmd
}

// NewRefreshCommand creates the one-shot refresh command: fetch once, run
// the engine, print the resulting views as JSON.
func NewRefreshCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch and filter once, printing the views as JSON",
		Run: func(cmd *cobra.Command, args []string) {
			configFile, _ := cmd.Flags().GetString("config")
			runOnce(configFile)
		},
	}
	cmd.Flags().String("config", "", "Path to the config file")
	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print tododash version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("tododash v1.0.0")
		},
	}
}

func runServer(configFile string) {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	var db *database.DB
	if cfg.Snapshot.Enabled {
		db, err = database.New(cfg.Snapshot)
		if err != nil {
			appLogger.Fatal("Failed to connect to snapshot database", "error", err)
		}
		defer db.Close()
	}

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting tododash server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"filters", len(cfg.Dashboard.Filters),
	)

	go func() {
		if err := srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)); err != nil {
			appLogger.Info("Server stopped", "reason", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Graceful shutdown failed", "error", err)
	}
}

func runOnce(configFile string) {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Todoist.Timeout)
	defer cancel()

	fetcher := todoist.NewClient(cfg.Todoist, appLogger)
	payload, err := fetcher.Fetch(ctx)
	if err != nil {
		appLogger.Fatal("Fetch failed", "error", err)
	}

	views := services.NewFilterService(appLogger).BuildViews(payload, cfg.Dashboard.Filters)

	out, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		appLogger.Fatal("Failed to encode views", "error", err)
	}
	fmt.Println(string(out))
}
