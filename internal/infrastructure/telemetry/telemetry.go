package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/food-catalog-api/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Telemetry holds all OpenTelemetry components
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	conn *grpc.ClientConn
}

// NewTelemetry initializes tracing, metrics and logging with OTLP export
func NewTelemetry(ctx context.Context, cfg *config.OTLPConfig, level slog.Level) (*Telemetry, error) {
	logger := NewLogger(cfg, level)

	logger.Info("Initializing OpenTelemetry",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("protocol", cfg.Protocol),
		slog.String("service_name", cfg.ServiceName),
	)

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var conn *grpc.ClientConn
	if cfg.Protocol == config.ProtocolGRPC {
		conn, err = grpc.NewClient(cfg.Endpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
		}
	}

	tp, err := initTracerProvider(ctx, cfg, conn, res)
	if err != nil {
		closeConn(conn)
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	logger.Info("Tracer provider initialized successfully")

	mp, registry, err := initMeterProvider(ctx, conn, res)
	if err != nil {
		closeConn(conn)
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	logger.Info("Meter provider initialized successfully",
		slog.Bool("otlp", conn != nil),
		slog.Bool("prometheus", true),
	)

	t := &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Registry:       registry,
		Logger:         logger,
		conn:           conn,
	}
	t.setGlobals()
	return t, nil
}

// NewNoOpTelemetry creates SDK providers that never export. Prometheus
// metrics are still served.
func NewNoOpTelemetry(cfg *config.OTLPConfig, level slog.Level) (*Telemetry, error) {
	logger := NewLogger(cfg, level)

	mp, registry, err := initMeterProvider(context.Background(), nil, resource.Empty())
	if err != nil {
		return nil, err
	}

	t := &Telemetry{
		TracerProvider: sdktrace.NewTracerProvider(),
		MeterProvider:  mp,
		Registry:       registry,
		Logger:         logger,
	}
	t.setGlobals()

	logger.Info("Telemetry initialized in no-op mode (export disabled)")
	return t, nil
}

func (t *Telemetry) setGlobals() {
	otel.SetTracerProvider(t.TracerProvider)
	otel.SetMeterProvider(t.MeterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Shutdown flushes and stops every telemetry component
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.Logger.Info("Shutting down OpenTelemetry")

	var errs []error
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		t.Logger.Error("Failed to shutdown tracer provider", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		t.Logger.Error("Failed to shutdown meter provider", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	t.Logger.Info("OpenTelemetry shutdown successfully")
	return nil
}

func closeConn(conn *grpc.ClientConn) {
	if conn != nil {
		_ = conn.Close()
	}
}
