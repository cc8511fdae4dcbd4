package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

type linkedOperations interface {
	OperationsByObjective(ctx context.Context, objectiveID uuid.UUID) ([]model.Operation, error)
}

type Objectives struct {
	repo       ObjectiveRepository
	operations linkedOperations
	categories *Categories
	wallets    *Wallets
	now        func() time.Time
}

func NewObjectives(repo ObjectiveRepository, operations linkedOperations, categories *Categories, wallets *Wallets) *Objectives {
	return &Objectives{repo: repo, operations: operations, categories: categories, wallets: wallets, now: time.Now}
}

func (s *Objectives) List(ctx context.Context, userID uuid.UUID) ([]model.Objective, error) {
	return s.repo.ObjectivesByUser(ctx, userID)
}

func (s *Objectives) Get(ctx context.Context, userID, id uuid.UUID) (*model.Objective, error) {
	o, err := s.repo.ObjectiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID != userID {
		return nil, apperr.NotFound("objetivo", id)
	}
	return o, nil
}

func (s *Objectives) Create(ctx context.Context, userID uuid.UUID, in model.ObjectiveInput) (*model.Objective, error) {
	if err := validateObjective(in); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, userID, in); err != nil {
		return nil, err
	}
	o := model.Objective{
		Nombre:        strings.TrimSpace(in.Nombre),
		MontoObjetivo: in.MontoObjetivo,
		Estado:        model.ObjectivePending,
		FechaInicio:   s.now(),
		FechaEsperada: in.FechaEsperada,
		UserID:        userID,
		CategoryID:    in.CategoriaID,
		WalletID:      in.BilleteraID,
	}
	if in.FechaInicio != nil {
		o.FechaInicio = *in.FechaInicio
	}
	if in.Estado != nil && *in.Estado == model.ObjectiveCancelled {
		o.Estado = model.ObjectiveCancelled
	}
	return s.repo.CreateObjective(ctx, o)
}

func (s *Objectives) Update(ctx context.Context, userID, id uuid.UUID, in model.ObjectiveInput) (*model.Objective, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateObjective(in); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, userID, in); err != nil {
		return nil, err
	}
	current.Nombre = strings.TrimSpace(in.Nombre)
	current.MontoObjetivo = in.MontoObjetivo
	current.CategoryID = in.CategoriaID
	current.WalletID = in.BilleteraID
	current.FechaEsperada = in.FechaEsperada
	if in.FechaInicio != nil {
		current.FechaInicio = *in.FechaInicio
	}
	if in.Estado != nil {
		current.Estado = *in.Estado
	}
	if _, err := s.repo.UpdateObjective(ctx, *current); err != nil {
		return nil, err
	}
	return s.Recalculate(ctx, id)
}

// Delete removes the objective. Linked operations stay, unlinked.
func (s *Objectives) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteObjective(ctx, id)
}

// Recalculate derives the current amount and state from the linked operations.
func (s *Objectives) Recalculate(ctx context.Context, id uuid.UUID) (*model.Objective, error) {
	o, err := s.repo.ObjectiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("objetivo", id)
	}
	ops, err := s.operations.OperationsByObjective(ctx, id)
	if err != nil {
		return nil, err
	}

	applyProgress(o, ops, s.now())
	updated, err := s.repo.UpdateObjective(ctx, *o)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("objetivo", id)
	}
	return updated, nil
}

// applyProgress sets MontoActual to the sum of ops and moves Estado accordingly.
// A cancelled objective stays cancelled.
func applyProgress(o *model.Objective, ops []model.Operation, now time.Time) {
	total := decimal.Zero
	for _, op := range ops {
		total = total.Add(decimal.NewFromFloat(op.Monto))
	}
	o.MontoActual = total.Round(2).InexactFloat64()

	if o.Estado == model.ObjectiveCancelled {
		return
	}
	if total.GreaterThanOrEqual(decimal.NewFromFloat(o.MontoObjetivo)) {
		if o.Estado != model.ObjectiveCompleted || o.FechaFin == nil {
			o.FechaFin = &now
		}
		o.Estado = model.ObjectiveCompleted
		return
	}
	o.Estado = model.ObjectivePending
	o.FechaFin = nil
}

func validateObjective(in model.ObjectiveInput) error {
	var errs *multierror.Error
	if strings.TrimSpace(in.Nombre) == "" {
		errs = multierror.Append(errs, errors.New("nombre es obligatorio"))
	}
	if in.MontoObjetivo <= 0 {
		errs = multierror.Append(errs, errors.New("montoObjetivo debe ser mayor a 0"))
	}
	if in.Estado != nil && !in.Estado.Valid() {
		errs = multierror.Append(errs, errors.New("estado debe ser PENDIENTE, COMPLETADO o CANCELADO"))
	}
	if in.FechaInicio != nil && in.FechaEsperada != nil && in.FechaEsperada.Before(*in.FechaInicio) {
		errs = multierror.Append(errs, errors.New("fechaEsperada no puede ser anterior a fechaInicio"))
	}
	return apperr.Collect("objetivo inválido", errs)
}

func (s *Objectives) checkReferences(ctx context.Context, userID uuid.UUID, in model.ObjectiveInput) error {
	if _, err := s.categories.Get(ctx, userID, in.CategoriaID); err != nil {
		return err
	}
	_, err := s.wallets.Get(ctx, userID, in.BilleteraID)
	return err
}
