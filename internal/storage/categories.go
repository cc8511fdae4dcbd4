package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

const categoryColumns = `id, nombre, icono, color, user_id, created_at`

func scanCategory(row rowScanner) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Nombre, &c.Icono, &c.Color, &c.UserID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	query := `INSERT INTO categories (nombre, icono, color, user_id) VALUES ($1, $2, $3, $4) RETURNING ` + categoryColumns
	created, err := scanCategory(s.pool.QueryRow(ctx, query, c.Nombre, c.Icono, c.Color, c.UserID))
	if err != nil {
		return nil, mapError(err, "categoría")
	}
	return created, nil
}

func (s *Storage) UpdateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	query := `UPDATE categories SET nombre = $2, icono = $3, color = $4 WHERE id = $1 RETURNING ` + categoryColumns
	updated, err := scanCategory(s.pool.QueryRow(ctx, query, c.ID, c.Nombre, c.Icono, c.Color))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, "categoría")
	}
	return updated, nil
}

func (s *Storage) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return mapError(err, "categoría")
}

func (s *Storage) CategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading category: %w", err)
	}
	return c, nil
}

// CategoriesForUser returns the default categories followed by the user's own.
func (s *Storage) CategoriesForUser(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE user_id IS NULL OR user_id = $1
		ORDER BY user_id NULLS FIRST, nombre`
	return s.queryCategories(ctx, query, userID)
}

func (s *Storage) DefaultCategories(ctx context.Context) ([]model.Category, error) {
	return s.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id IS NULL ORDER BY nombre`)
}

func (s *Storage) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}
