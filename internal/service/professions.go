package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

type Professions struct {
	repo ProfessionRepository
}

func NewProfessions(repo ProfessionRepository) *Professions {
	return &Professions{repo: repo}
}

func (s *Professions) List(ctx context.Context) ([]model.Profession, error) {
	return s.repo.Professions(ctx)
}

func (s *Professions) Create(ctx context.Context, in model.ProfessionInput) (*model.Profession, error) {
	name := strings.TrimSpace(in.Nombre)
	if name == "" {
		return nil, apperr.Validation("el nombre de la profesión es obligatorio")
	}
	return s.repo.CreateProfession(ctx, name)
}

func (s *Professions) Update(ctx context.Context, id uuid.UUID, in model.ProfessionInput) (*model.Profession, error) {
	name := strings.TrimSpace(in.Nombre)
	if name == "" {
		return nil, apperr.Validation("el nombre de la profesión es obligatorio")
	}
	p, err := s.repo.UpdateProfession(ctx, model.Profession{ID: id, Nombre: name})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("profesión", id)
	}
	return p, nil
}

func (s *Professions) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.DeleteProfession(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("profesión", id)
	}
	return nil
}
