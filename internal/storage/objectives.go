package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

const objectiveColumns = `id, nombre, monto_objetivo, monto_actual, estado, fecha_inicio, fecha_esperada, fecha_fin,
	user_id, category_id, wallet_id, created_at, updated_at`

func scanObjective(row rowScanner) (*model.Objective, error) {
	var o model.Objective
	err := row.Scan(&o.ID, &o.Nombre, &o.MontoObjetivo, &o.MontoActual, &o.Estado, &o.FechaInicio, &o.FechaEsperada,
		&o.FechaFin, &o.UserID, &o.CategoryID, &o.WalletID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Storage) CreateObjective(ctx context.Context, o model.Objective) (*model.Objective, error) {
	query := `INSERT INTO objectives (nombre, monto_objetivo, monto_actual, estado, fecha_inicio, fecha_esperada,
			fecha_fin, user_id, category_id, wallet_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + objectiveColumns
	created, err := scanObjective(s.pool.QueryRow(ctx, query,
		o.Nombre, o.MontoObjetivo, o.MontoActual, o.Estado, o.FechaInicio, o.FechaEsperada, o.FechaFin,
		o.UserID, o.CategoryID, o.WalletID,
	))
	if err != nil {
		return nil, mapError(err, "objetivo")
	}
	return created, nil
}

func (s *Storage) UpdateObjective(ctx context.Context, o model.Objective) (*model.Objective, error) {
	query := `UPDATE objectives SET nombre = $2, monto_objetivo = $3, monto_actual = $4, estado = $5, fecha_inicio = $6,
			fecha_esperada = $7, fecha_fin = $8, category_id = $9, wallet_id = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + objectiveColumns
	updated, err := scanObjective(s.pool.QueryRow(ctx, query,
		o.ID, o.Nombre, o.MontoObjetivo, o.MontoActual, o.Estado, o.FechaInicio, o.FechaEsperada, o.FechaFin,
		o.CategoryID, o.WalletID,
	))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, "objetivo")
	}
	return updated, nil
}

// DeleteObjective removes the objective; linked operations keep existing with objective_id set to NULL.
func (s *Storage) DeleteObjective(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM objectives WHERE id = $1`, id)
	return mapError(err, "objetivo")
}

func (s *Storage) ObjectiveByID(ctx context.Context, id uuid.UUID) (*model.Objective, error) {
	o, err := scanObjective(s.pool.QueryRow(ctx, `SELECT `+objectiveColumns+` FROM objectives WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading objective: %w", err)
	}
	return o, nil
}

func (s *Storage) ObjectivesByUser(ctx context.Context, userID uuid.UUID) ([]model.Objective, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+objectiveColumns+` FROM objectives WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading objectives: %w", err)
	}
	defer rows.Close()

	var objectives []model.Objective
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			return nil, err
		}
		objectives = append(objectives, *o)
	}
	return objectives, rows.Err()
}
