package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/mrops-br/food-catalog-api/internal/app/service"
	"github.com/mrops-br/food-catalog-api/internal/domain"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/messaging"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/repository/mysql"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "food-catalog-api"

// application wires the repository, services and optional publisher
// selected by configuration
type application struct {
	cfg       *config.Config
	telemetry *telemetry.Telemetry
	logger    *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter

	db        *sqlx.DB
	publisher *messaging.BatchEventPublisher

	foodItems *service.FoodItemService
	batches   *service.BatchProcessor
	search    *service.SearchService
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}

	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(ctx, &cfg.OTLP, level)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP, level)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	app := &application{
		cfg:       cfg,
		telemetry: telem,
		logger:    telem.Logger,
		tracer:    telem.TracerProvider.Tracer(instrumentationName),
		meter:     telem.MeterProvider.Meter(instrumentationName),
	}

	repo, err := app.newRepository(ctx)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	var publisher service.EventPublisher
	if cfg.Kafka.Enabled() {
		producer, err := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.OTLP.ServiceName, telem.TracerProvider)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.publisher = messaging.NewBatchEventPublisher(producer, app.tracer, app.logger)
		publisher = app.publisher
		app.logger.Info("Publishing batch events to Kafka",
			slog.Any("brokers", cfg.Kafka.Brokers),
			slog.String("topic", cfg.Kafka.Topic),
		)
	}

	app.foodItems = service.NewFoodItemService(repo, app.tracer, app.meter, app.logger)
	app.batches = service.NewBatchProcessor(repo, publisher, app.tracer, app.meter, app.logger)
	app.search = service.NewSearchService(repo, app.tracer, app.meter, app.logger)

	return app, nil
}

func (a *application) newRepository(ctx context.Context) (domain.FoodItemRepository, error) {
	switch a.cfg.Store.Driver {
	case config.DriverMySQL:
		db, err := mysql.Open(ctx, a.cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.logger.Info("Using MySQL food item repository")
		return mysql.NewFoodItemRepository(db, a.tracer, a.logger), nil
	default:
		a.logger.Info("Using in-memory food item repository")
		return memory.NewFoodItemRepository(a.tracer, a.logger), nil
	}
}

// Close releases the publisher, database and telemetry in that order
func (a *application) Close(ctx context.Context) error {
	var errs []error

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kafka publisher: %w", err))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown telemetry: %w", err))
	}

	return errors.Join(errs...)
}
