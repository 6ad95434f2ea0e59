package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mrops-br/food-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	selectFoodItems = `SELECT id, name, type, quantity_in_grams, created_at FROM food_items`

	insertFoodItem = `INSERT INTO food_items (id, name, type, quantity_in_grams, created_at)
VALUES (:id, :name, :type, :quantity_in_grams, :created_at)`

	deleteFoodItem = `DELETE FROM food_items WHERE id = ?`
)

type foodItemRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Type            string    `db:"type"`
	QuantityInGrams float64   `db:"quantity_in_grams"`
	CreatedAt       time.Time `db:"created_at"`
}

func (row foodItemRow) toDomain() *domain.FoodItem {
	return &domain.FoodItem{
		ID:            row.ID,
		Name:          row.Name,
		Category:      domain.Category(row.Type),
		QuantityGrams: row.QuantityInGrams,
		CreatedAt:     row.CreatedAt,
	}
}

// FoodItemRepository stores food items in the food_items table
type FoodItemRepository struct {
	db     *sqlx.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewFoodItemRepository creates a MySQL backed food item repository
func NewFoodItemRepository(db *sqlx.DB, tracer trace.Tracer, logger *slog.Logger) *FoodItemRepository {
	return &FoodItemRepository{
		db:     db,
		tracer: tracer,
		logger: logger,
	}
}

// Open connects to MySQL and verifies the connection
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func (r *FoodItemRepository) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := r.tracer.Start(ctx, "MySQLFoodItemRepository."+name)
	span.SetAttributes(
		attribute.String("db.system", "mysql"),
		attribute.String("db.sql.table", "food_items"),
	)
	return ctx, span
}

// Save stores a single item
func (r *FoodItemRepository) Save(ctx context.Context, item *domain.FoodItem) error {
	return r.SaveAll(ctx, []*domain.FoodItem{item})
}

// SaveAll inserts every item in one transaction. Ids are written back to the
// items only after the commit succeeds.
func (r *FoodItemRepository) SaveAll(ctx context.Context, items []*domain.FoodItem) error {
	ctx, span := r.startSpan(ctx, "SaveAll")
	defer span.End()

	span.SetAttributes(attribute.Int("food_item.count", len(items)))

	rows := make([]foodItemRow, len(items))
	now := time.Now().UTC().Truncate(time.Microsecond)
	for i, item := range items {
		if err := item.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid food item")
			return err
		}
		rows[i] = foodItemRow{
			ID:              uuid.NewString(),
			Name:            item.Name,
			Type:            item.Category.String(),
			QuantityInGrams: item.QuantityGrams,
			CreatedAt:       now,
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insertFoodItem, row); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.ErrorContext(ctx, "Failed to roll back food item insert",
					slog.String("error", rbErr.Error()),
				)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to insert food item")
			return fmt.Errorf("failed to insert food item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to commit transaction")
		return fmt.Errorf("failed to commit food items: %w", err)
	}

	for i, item := range items {
		item.ID = rows[i].ID
		item.CreatedAt = rows[i].CreatedAt
	}

	r.logger.InfoContext(ctx, "Food items stored in mysql",
		slog.Int("count", len(items)),
	)

	span.SetStatus(codes.Ok, "Food items stored")
	return nil
}

// Remove deletes an item permanently
func (r *FoodItemRepository) Remove(ctx context.Context, item *domain.FoodItem) error {
	ctx, span := r.startSpan(ctx, "Remove")
	defer span.End()

	span.SetAttributes(attribute.String("food_item.id", item.ID))

	res, err := r.db.ExecContext(ctx, deleteFoodItem, item.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete food item")
		return fmt.Errorf("failed to delete food item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to read affected rows")
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "Food item not found")
		return domain.ErrFoodItemNotFound
	}

	r.logger.InfoContext(ctx, "Food item removed from mysql",
		slog.String("food_item_id", item.ID),
	)

	span.SetStatus(codes.Ok, "Food item removed")
	return nil
}

// FindByID retrieves an item by id
func (r *FoodItemRepository) FindByID(ctx context.Context, id string) (*domain.FoodItem, error) {
	ctx, span := r.startSpan(ctx, "FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("food_item.id", id))

	var row foodItemRow
	err := r.db.GetContext(ctx, &row, selectFoodItems+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "Food item not found")
		r.logger.WarnContext(ctx, "Food item not found",
			slog.String("food_item_id", id),
		)
		return nil, domain.ErrFoodItemNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to query food item")
		return nil, fmt.Errorf("failed to query food item: %w", err)
	}

	span.SetStatus(codes.Ok, "Food item found")
	return row.toDomain(), nil
}

// FindByCategory lists every item of a category in insertion order
func (r *FoodItemRepository) FindByCategory(ctx context.Context, category domain.Category) ([]*domain.FoodItem, error) {
	return r.FindByCategoryAndCriteria(ctx, category, domain.SearchCriteria{})
}

// FindByCategoryAndCriteria lists the items of a category matching criteria
// in insertion order
func (r *FoodItemRepository) FindByCategoryAndCriteria(ctx context.Context, category domain.Category, criteria domain.SearchCriteria) ([]*domain.FoodItem, error) {
	ctx, span := r.startSpan(ctx, "FindByCategoryAndCriteria")
	defer span.End()

	span.SetAttributes(
		attribute.String("food_item.category", category.String()),
		attribute.String("search.name", criteria.Name),
	)

	query, args, err := buildCriteriaQuery(category, criteria)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unsupported criteria")
		return nil, err
	}

	var rows []foodItemRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to query food items")
		return nil, fmt.Errorf("failed to query food items: %w", err)
	}

	items := make([]*domain.FoodItem, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}

	span.SetAttributes(attribute.Int("food_item.count", len(items)))
	span.SetStatus(codes.Ok, "Food items retrieved")
	return items, nil
}

// buildCriteriaQuery renders criteria as a WHERE clause with positional args
func buildCriteriaQuery(category domain.Category, criteria domain.SearchCriteria) (string, []any, error) {
	var b strings.Builder
	b.WriteString(selectFoodItems)
	b.WriteString(` WHERE type = ?`)
	args := []any{category.String()}

	if criteria.Name != "" {
		b.WriteString(` AND LOWER(name) LIKE ?`)
		args = append(args, "%"+escapeLike(strings.ToLower(criteria.Name))+"%")
	}

	if p := criteria.Quantity; p != nil {
		switch p.Operator {
		case domain.OpEqual, domain.OpLess, domain.OpGreater:
			b.WriteString(` AND quantity_in_grams ` + string(p.Operator) + ` ?`)
			args = append(args, p.Low)
		case domain.OpBetween:
			b.WriteString(` AND quantity_in_grams BETWEEN ? AND ?`)
			args = append(args, p.Low, p.High)
		default:
			return "", nil, fmt.Errorf("unsupported quantity operator %q", p.Operator)
		}
	}

	b.WriteString(` ORDER BY seq`)
	return b.String(), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
