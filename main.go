package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrops-br/food-catalog-api/internal/app/seed"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/migrations"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/repository/mysql"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/telemetry"
	"github.com/urfave/cli/v2"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	app := &cli.App{
		Name:  "food-catalog-api",
		Usage: "Food catalog service: batch ingestion, search and unit conversion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "optional dotenv file loaded before the environment",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:      "migrate",
				Usage:     "apply or revert the MySQL schema",
				ArgsUsage: "[up|down]",
				Action:    migrate,
			},
			{
				Name:  "seed",
				Usage: "load a seed data file once",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    `JSON file shaped {"processed": bool, "data": [...]}`,
						Required: true,
					},
				},
				Action: runSeed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("food-catalog-api: %v", err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("env-file"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func closeApplication(app *application) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApplication(app)

	logger := app.logger
	logger.Info("Starting Food Catalog API")

	if app.db != nil && cfg.Store.MigrateOnStart {
		if err := migrations.Run(ctx, app.db.DB, migrations.Up, logger); err != nil {
			return err
		}
	}

	foodItemHandler := handler.NewFoodItemHandler(app.foodItems, app.batches, app.search, logger)
	server := http.NewServer(&cfg.Server, foodItemHandler, logger, app.telemetry)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server gracefully", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	direction, err := migrations.ParseDirection(c.Args().First())
	if err != nil {
		return err
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	logger := telemetry.NewLogger(&cfg.OTLP, level)

	db, err := mysql.Open(c.Context, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrations.Run(c.Context, db.DB, direction, logger)
}

func runSeed(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	app, err := newApplication(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeApplication(app)

	if app.db != nil && cfg.Store.MigrateOnStart {
		if err := migrations.Run(c.Context, app.db.DB, migrations.Up, app.logger); err != nil {
			return err
		}
	}

	seeder := seed.NewSeeder(app.batches, app.tracer, app.logger)
	status, result, err := seeder.Run(c.Context, c.String("file"))
	if err != nil {
		return err
	}

	attrs := []any{slog.String("status", string(status))}
	if result != nil {
		attrs = append(attrs,
			slog.Int("processed", len(result.Items())),
			slog.Int("rejected", len(result.Errors)),
		)
	}
	app.logger.Info("Seeding finished", attrs...)
	return nil
}
