package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

type Operations struct {
	repo       OperationRepository
	categories *Categories
	wallets    *Wallets
	objectives *Objectives
	now        func() time.Time
}

func NewOperations(repo OperationRepository, categories *Categories, wallets *Wallets, objectives *Objectives) *Operations {
	return &Operations{repo: repo, categories: categories, wallets: wallets, objectives: objectives, now: time.Now}
}

// Create validates in, records the operation and its wallet effect, then refreshes a linked objective.
func (s *Operations) Create(ctx context.Context, userID uuid.UUID, in model.OperationInput) (*model.Operation, error) {
	if err := validateOperation(in); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, userID, in); err != nil {
		return nil, err
	}

	op := s.fromInput(userID, in)
	created, err := s.repo.CreateOperation(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := s.recalculate(ctx, created.ObjectiveID); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Operations) Update(ctx context.Context, userID, id uuid.UUID, in model.OperationInput) (*model.Operation, error) {
	old, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateOperation(in); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, userID, in); err != nil {
		return nil, err
	}

	op := s.fromInput(userID, in)
	op.ID = id
	updated, err := s.repo.UpdateOperation(ctx, *old, op)
	if err != nil {
		return nil, err
	}
	if err := s.recalculate(ctx, old.ObjectiveID); err != nil {
		return nil, err
	}
	if !sameObjective(old.ObjectiveID, updated.ObjectiveID) {
		if err := s.recalculate(ctx, updated.ObjectiveID); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (s *Operations) Delete(ctx context.Context, userID, id uuid.UUID) error {
	op, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteOperation(ctx, *op); err != nil {
		return err
	}
	return s.recalculate(ctx, op.ObjectiveID)
}

func (s *Operations) Get(ctx context.Context, userID, id uuid.UUID) (*model.Operation, error) {
	op, err := s.repo.OperationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil || op.UserID != userID {
		return nil, apperr.NotFound("operación", id)
	}
	return op, nil
}

func (s *Operations) List(ctx context.Context, userID uuid.UUID, f model.OperationFilter) ([]model.Operation, error) {
	if f.Tipo != "" && !f.Tipo.Valid() {
		return nil, apperr.Validation("tipo debe ser Ingreso o Egreso")
	}
	if f.Desde != nil && f.Hasta != nil && f.Hasta.Before(*f.Desde) {
		return nil, apperr.Validation("hasta no puede ser anterior a desde")
	}
	return s.repo.OperationsByUser(ctx, userID, f)
}

func (s *Operations) fromInput(userID uuid.UUID, in model.OperationInput) model.Operation {
	op := model.Operation{
		Monto:       in.Monto,
		Tipo:        in.Tipo,
		Fecha:       in.Fecha,
		Descripcion: strings.TrimSpace(in.Descripcion),
		UserID:      userID,
		CategoryID:  in.CategoriaID,
		WalletID:    in.BilleteraID,
		ObjectiveID: in.ObjetivoID,
	}
	if op.Fecha.IsZero() {
		op.Fecha = s.now()
	}
	return op
}

// validateOperation runs before any lookup so malformed input never reaches the store.
func validateOperation(in model.OperationInput) error {
	var errs *multierror.Error
	if in.Monto <= 0 {
		errs = multierror.Append(errs, errors.New("monto debe ser mayor a 0"))
	}
	if in.Monto > model.MaxMonto {
		errs = multierror.Append(errs, fmt.Errorf("monto no puede superar %.2f", model.MaxMonto))
	}
	if !in.Tipo.Valid() {
		errs = multierror.Append(errs, errors.New("tipo debe ser Ingreso o Egreso"))
	}
	if in.CategoriaID == uuid.Nil {
		errs = multierror.Append(errs, errors.New("categoriaId es obligatorio"))
	}
	if in.BilleteraID == uuid.Nil {
		errs = multierror.Append(errs, errors.New("billeteraId es obligatorio"))
	}
	return apperr.Collect("operación inválida", errs)
}

func (s *Operations) checkReferences(ctx context.Context, userID uuid.UUID, in model.OperationInput) error {
	if _, err := s.categories.Get(ctx, userID, in.CategoriaID); err != nil {
		return err
	}
	if _, err := s.wallets.Get(ctx, userID, in.BilleteraID); err != nil {
		return err
	}
	if in.ObjetivoID != nil {
		if _, err := s.objectives.Get(ctx, userID, *in.ObjetivoID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Operations) recalculate(ctx context.Context, objectiveID *uuid.UUID) error {
	if objectiveID == nil {
		return nil
	}
	_, err := s.objectives.Recalculate(ctx, *objectiveID)
	if apperr.IsNotFound(err) {
		return nil
	}
	return err
}

func sameObjective(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
