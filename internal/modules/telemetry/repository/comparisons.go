package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stationwatch/internal/modules/telemetry/types"
)

//go:embed sql/get-comparisons.sql
var getComparisonsSQL string

//go:embed sql/get-comparison.sql
var getComparisonSQL string

//go:embed sql/insert-comparison.sql
var insertComparisonSQL string

//go:embed sql/update-comparison.sql
var updateComparisonSQL string

//go:embed sql/delete-comparison.sql
var deleteComparisonSQL string

// ComparisonRepository persists comparison definitions. Sensors are stored
// as a JSON array and returned exactly as saved.
type ComparisonRepository interface {
	ListComparisons(ctx context.Context) ([]types.Comparison, error)
	GetComparison(ctx context.Context, id string) (types.Comparison, error)
	CreateComparison(ctx context.Context, c types.Comparison) error
	UpdateComparison(ctx context.Context, c types.Comparison) error
	DeleteComparison(ctx context.Context, id string) error
}

func (r *repositoryImpl) ListComparisons(ctx context.Context) ([]types.Comparison, error) {
	rows, err := r.db.QueryContext(ctx, getComparisonsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close comparisons rows", "error", err)
		}
	}()
	out := []types.Comparison{}
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetComparison(ctx context.Context, id string) (types.Comparison, error) {
	c, err := scanComparison(r.db.QueryRowContext(ctx, getComparisonSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Comparison{}, fmt.Errorf("comparison %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Comparison{}, fmt.Errorf("get comparison %q: %w", id, err)
	}
	return c, nil
}

func (r *repositoryImpl) CreateComparison(ctx context.Context, c types.Comparison) error {
	sensors, err := json.Marshal(c.Sensors)
	if err != nil {
		return fmt.Errorf("encode sensors: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertComparisonSQL,
		c.ID,
		c.Name,
		string(sensors),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
		c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert comparison: %w", err)
	}
	return nil
}

func (r *repositoryImpl) UpdateComparison(ctx context.Context, c types.Comparison) error {
	sensors, err := json.Marshal(c.Sensors)
	if err != nil {
		return fmt.Errorf("encode sensors: %w", err)
	}
	res, err := r.db.ExecContext(ctx, updateComparisonSQL,
		c.Name,
		string(sensors),
		c.UpdatedAt.UTC().Format(time.RFC3339Nano),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update comparison: %w", err)
	}
	return requireAffected(res, "comparison", c.ID)
}

func (r *repositoryImpl) DeleteComparison(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteComparisonSQL, id)
	if err != nil {
		return fmt.Errorf("delete comparison: %w", err)
	}
	return requireAffected(res, "comparison", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComparison(row rowScanner) (types.Comparison, error) {
	var c types.Comparison
	var sensors, created, updated string
	if err := row.Scan(&c.ID, &c.Name, &sensors, &created, &updated); err != nil {
		return types.Comparison{}, err
	}
	if err := json.Unmarshal([]byte(sensors), &c.Sensors); err != nil {
		return types.Comparison{}, fmt.Errorf("decode sensors of comparison %q: %w", c.ID, err)
	}
	var err error
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return types.Comparison{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return types.Comparison{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return c, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}
