package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

// Provinces loads the whole province -> municipality -> locality tree.
func (s *Storage) Provinces(ctx context.Context) ([]model.Province, error) {
	return s.provinceTree(ctx, nil)
}

func (s *Storage) ProvinceByID(ctx context.Context, id uuid.UUID) (*model.Province, error) {
	provinces, err := s.provinceTree(ctx, &id)
	if err != nil {
		return nil, err
	}
	if len(provinces) == 0 {
		return nil, nil
	}
	return &provinces[0], nil
}

func (s *Storage) provinceTree(ctx context.Context, provinceID *uuid.UUID) ([]model.Province, error) {
	query := `SELECT p.id, p.nombre, m.id, m.nombre, l.id, l.nombre
		FROM provinces p
		LEFT JOIN municipalities m ON m.province_id = p.id
		LEFT JOIN localities l ON l.municipality_id = m.id
		WHERE $1::uuid IS NULL OR p.id = $1
		ORDER BY p.nombre, m.nombre, l.nombre`
	rows, err := s.pool.Query(ctx, query, provinceID)
	if err != nil {
		return nil, fmt.Errorf("error loading provinces: %w", err)
	}
	defer rows.Close()

	var provinces []model.Province
	for rows.Next() {
		var (
			pID              uuid.UUID
			pNombre          string
			mID, lID         *uuid.UUID
			mNombre, lNombre *string
		)
		if err := rows.Scan(&pID, &pNombre, &mID, &mNombre, &lID, &lNombre); err != nil {
			return nil, err
		}

		if len(provinces) == 0 || provinces[len(provinces)-1].ID != pID {
			provinces = append(provinces, model.Province{ID: pID, Nombre: pNombre, Municipios: []model.Municipality{}})
		}
		p := &provinces[len(provinces)-1]
		if mID == nil {
			continue
		}
		if len(p.Municipios) == 0 || p.Municipios[len(p.Municipios)-1].ID != *mID {
			p.Municipios = append(p.Municipios, model.Municipality{ID: *mID, Nombre: *mNombre, Localidades: []model.Locality{}})
		}
		m := &p.Municipios[len(p.Municipios)-1]
		if lID != nil {
			m.Localidades = append(m.Localidades, model.Locality{ID: *lID, Nombre: *lNombre})
		}
	}
	return provinces, rows.Err()
}
