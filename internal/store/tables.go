package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx/types"

	"github.com/playmatatu/pinball/internal/models"
	"github.com/playmatatu/pinball/internal/table"
)

// ListTables returns every stored table without its layout body.
func (s *Store) ListTables(ctx context.Context) ([]models.TableRecord, error) {
	var out []models.TableRecord
	err := s.db.SelectContext(ctx, &out, `SELECT id, name, created_at, updated_at FROM table_layouts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return out, nil
}

func (s *Store) GetTable(ctx context.Context, id int64) (*models.TableRecord, error) {
	var rec models.TableRecord
	err := s.db.GetContext(ctx, &rec, `SELECT id, name, layout, created_at, updated_at FROM table_layouts WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get table %d: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) GetTableByName(ctx context.Context, name string) (*models.TableRecord, error) {
	var rec models.TableRecord
	err := s.db.GetContext(ctx, &rec, `SELECT id, name, layout, created_at, updated_at FROM table_layouts WHERE name=$1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get table %q: %w", name, err)
	}
	return &rec, nil
}

// SaveTable validates the layout and inserts it, replacing any table with
// the same name.
func (s *Store) SaveTable(ctx context.Context, l *table.Layout) (*models.TableRecord, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	data, err := l.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}

	var rec models.TableRecord
	err = s.db.GetContext(ctx, &rec, `
		INSERT INTO table_layouts (name, layout, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			layout = EXCLUDED.layout,
			updated_at = NOW()
		RETURNING id, name, layout, created_at, updated_at
	`, l.Name, types.JSONText(data))
	if err != nil {
		return nil, fmt.Errorf("save table %q: %w", l.Name, err)
	}
	return &rec, nil
}

// LoadLayout decodes a stored table.
func LoadLayout(rec *models.TableRecord) (*table.Layout, error) {
	return table.Parse(rec.Layout)
}
