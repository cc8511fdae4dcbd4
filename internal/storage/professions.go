package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

func (s *Storage) CreateProfession(ctx context.Context, nombre string) (*model.Profession, error) {
	var p model.Profession
	err := s.pool.QueryRow(ctx, `INSERT INTO professions (nombre) VALUES ($1) RETURNING id, nombre`, nombre).Scan(&p.ID, &p.Nombre)
	if err != nil {
		return nil, mapError(err, "profesión")
	}
	return &p, nil
}

func (s *Storage) UpdateProfession(ctx context.Context, p model.Profession) (*model.Profession, error) {
	var updated model.Profession
	err := s.pool.QueryRow(ctx, `UPDATE professions SET nombre = $2 WHERE id = $1 RETURNING id, nombre`, p.ID, p.Nombre).
		Scan(&updated.ID, &updated.Nombre)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, "profesión")
	}
	return &updated, nil
}

func (s *Storage) DeleteProfession(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM professions WHERE id = $1`, id)
	if err != nil {
		return false, mapError(err, "profesión")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Storage) Professions(ctx context.Context) ([]model.Profession, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, nombre FROM professions ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("error loading professions: %w", err)
	}
	defer rows.Close()

	var professions []model.Profession
	for rows.Next() {
		var p model.Profession
		if err := rows.Scan(&p.ID, &p.Nombre); err != nil {
			return nil, err
		}
		professions = append(professions, p)
	}
	return professions, rows.Err()
}
