package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

const userColumns = `id, auth_id, telegram_id, email, nombre, COALESCE(telefono, ''), sueldo,
	profesion, estado_civil, provincia, municipio, localidad, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.AuthID, &u.TelegramID, &u.Email, &u.Nombre, &u.Telefono, &u.Sueldo,
		&u.Profesion, &u.EstadoCivil, &u.Ubicacion.Provincia, &u.Ubicacion.Municipio, &u.Ubicacion.Localidad,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	query := `INSERT INTO users (auth_id, telegram_id, email, nombre, telefono, sueldo, profesion, estado_civil,
			provincia, municipio, localidad)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns
	created, err := scanUser(s.pool.QueryRow(ctx, query,
		u.AuthID, u.TelegramID, u.Email, u.Nombre, u.Telefono, u.Sueldo, u.Profesion, u.EstadoCivil,
		u.Ubicacion.Provincia, u.Ubicacion.Municipio, u.Ubicacion.Localidad,
	))
	if err != nil {
		return nil, mapError(err, "usuario")
	}
	return created, nil
}

// UpdateUser rewrites the mutable profile columns. auth_id is never touched.
func (s *Storage) UpdateUser(ctx context.Context, u model.User) (*model.User, error) {
	query := `UPDATE users SET telegram_id = $2, email = $3, nombre = $4, telefono = NULLIF($5, ''), sueldo = $6,
			profesion = $7, estado_civil = $8, provincia = $9, municipio = $10, localidad = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	updated, err := scanUser(s.pool.QueryRow(ctx, query,
		u.ID, u.TelegramID, u.Email, u.Nombre, u.Telefono, u.Sueldo, u.Profesion, u.EstadoCivil,
		u.Ubicacion.Provincia, u.Ubicacion.Municipio, u.Ubicacion.Localidad,
	))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, "usuario")
	}
	return updated, nil
}

func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.oneUser(ctx, `id = $1`, id)
}

func (s *Storage) UserByAuthID(ctx context.Context, authID string) (*model.User, error) {
	return s.oneUser(ctx, `auth_id = $1`, authID)
}

func (s *Storage) UserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.oneUser(ctx, `telegram_id = $1`, telegramID)
}

func (s *Storage) UserByPhone(ctx context.Context, phone string) (*model.User, error) {
	return s.oneUser(ctx, `telefono = $1`, phone)
}

// oneUser returns nil without error when no row matches.
func (s *Storage) oneUser(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

// SimilarUsers runs one search for every similarity criterion set on q.
func (s *Storage) SimilarUsers(ctx context.Context, q model.SimilarityQuery) ([]model.User, error) {
	query, args := buildSimilarQuery(q)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching similar users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func buildSimilarQuery(q model.SimilarityQuery) (string, []any) {
	args := []any{q.ExcludeUserID}
	where := []string{"id <> $1"}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Profession != nil {
		where = append(where, "profesion = "+arg(*q.Profession))
	}
	if q.Location != nil {
		values := map[string]string{
			"provincia": q.Location.Provincia,
			"municipio": q.Location.Municipio,
			"localidad": q.Location.Localidad,
		}
		for _, field := range q.Precision.MatchFields() {
			where = append(where, field+" = "+arg(values[field]))
		}
	}

	var order string
	if q.RequireSalary {
		where = append(where, "sueldo IS NOT NULL")
	}
	if q.Salary != nil {
		order = " ORDER BY abs(sueldo - " + arg(*q.Salary) + ") NULLS LAST"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 3
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(where, " AND ") + order + " LIMIT " + arg(limit)
	return query, args
}
