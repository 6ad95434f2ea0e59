package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mrops-br/food-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BatchRunner processes a batch of raw records
type BatchRunner interface {
	Process(ctx context.Context, rawItems []domain.RawFoodItem, forced *domain.Category) (*domain.BatchResult, error)
}

// Status describes what a seeding run did
type Status string

const (
	StatusSeeded           Status = "seeded"
	StatusAlreadyProcessed Status = "already_processed"
	StatusNothingAccepted  Status = "nothing_accepted"
)

// File is the on-disk layout of a seed data file
type File struct {
	Processed bool                 `json:"processed"`
	Data      []domain.RawFoodItem `json:"data"`
}

// Seeder loads a seed file once into the catalog
type Seeder struct {
	runner BatchRunner
	tracer trace.Tracer
	logger *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(runner BatchRunner, tracer trace.Tracer, logger *slog.Logger) *Seeder {
	return &Seeder{
		runner: runner,
		tracer: tracer,
		logger: logger,
	}
}

// Run processes the file at path unless it is already marked processed. The
// file is marked processed when at least one record was accepted.
func (s *Seeder) Run(ctx context.Context, path string) (Status, *domain.BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "Seeder.Run")
	defer span.End()

	span.SetAttributes(attribute.String("seed.file", path))

	file, err := readFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to read seed file")
		return "", nil, err
	}

	if file.Processed {
		s.logger.InfoContext(ctx, "Seed file already processed",
			slog.String("file", path),
		)
		span.SetStatus(codes.Ok, "Already processed")
		return StatusAlreadyProcessed, nil, nil
	}

	result, err := s.runner.Process(ctx, file.Data, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to process seed data")
		return "", nil, fmt.Errorf("failed to process seed data: %w", err)
	}

	for _, itemErr := range result.Errors {
		s.logger.WarnContext(ctx, "Seed record rejected",
			slog.Int("index", itemErr.Index),
			slog.String("field", itemErr.Field),
			slog.String("error", itemErr.Message),
		)
	}

	if !result.Successful {
		span.SetStatus(codes.Ok, "Nothing accepted")
		return StatusNothingAccepted, result, nil
	}

	file.Processed = true
	if err := writeFile(path, file); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to mark seed file processed")
		return "", result, err
	}

	s.logger.InfoContext(ctx, "Seed file processed",
		slog.String("file", path),
		slog.Int("processed", len(result.Items())),
		slog.Int("rejected", len(result.Errors)),
	)

	span.SetStatus(codes.Ok, "Seeded")
	return StatusSeeded, result, nil
}

func readFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &file, nil
}

func writeFile(path string, file *File) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat seed file: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode seed file: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	return nil
}
