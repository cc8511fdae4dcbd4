package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

type Locations struct {
	repo LocationRepository
}

func NewLocations(repo LocationRepository) *Locations {
	return &Locations{repo: repo}
}

func (s *Locations) Provinces(ctx context.Context) ([]model.Province, error) {
	return s.repo.Provinces(ctx)
}

func (s *Locations) Province(ctx context.Context, id uuid.UUID) (*model.Province, error) {
	p, err := s.repo.ProvinceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("provincia", id)
	}
	return p, nil
}
