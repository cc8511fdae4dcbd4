package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

type Categories struct {
	repo CategoryRepository
}

func NewCategories(repo CategoryRepository) *Categories {
	return &Categories{repo: repo}
}

// List returns the default categories plus the user's own.
func (s *Categories) List(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	return s.repo.CategoriesForUser(ctx, userID)
}

func (s *Categories) Defaults(ctx context.Context) ([]model.Category, error) {
	return s.repo.DefaultCategories(ctx)
}

// Get returns a category visible to the user: a default one or one they own.
func (s *Categories) Get(ctx context.Context, userID, id uuid.UUID) (*model.Category, error) {
	c, err := s.repo.CategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || (!c.IsDefault() && *c.UserID != userID) {
		return nil, apperr.NotFound("categoría", id)
	}
	return c, nil
}

func (s *Categories) Create(ctx context.Context, userID uuid.UUID, in model.CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Nombre)
	if name == "" {
		return nil, apperr.Validation("el nombre de la categoría es obligatorio")
	}
	if err := s.ensureUniqueName(ctx, userID, name, uuid.Nil); err != nil {
		return nil, err
	}
	owner := userID
	return s.repo.CreateCategory(ctx, model.Category{Nombre: name, Icono: in.Icono, Color: in.Color, UserID: &owner})
}

func (s *Categories) Update(ctx context.Context, userID, id uuid.UUID, in model.CategoryInput) (*model.Category, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Nombre)
	if name == "" {
		return nil, apperr.Validation("el nombre de la categoría es obligatorio")
	}
	if err := s.ensureUniqueName(ctx, userID, name, id); err != nil {
		return nil, err
	}
	c.Nombre, c.Icono, c.Color = name, in.Icono, in.Color
	updated, err := s.repo.UpdateCategory(ctx, *c)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("categoría", id)
	}
	return updated, nil
}

func (s *Categories) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}

// Names lists the names the user can pick from, own categories first.
func (s *Categories) Names(ctx context.Context, userID uuid.UUID) ([]string, error) {
	categories, err := s.repo.CategoriesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		if !c.IsDefault() {
			names = append(names, c.Nombre)
		}
	}
	for _, c := range categories {
		if c.IsDefault() {
			names = append(names, c.Nombre)
		}
	}
	return names, nil
}

// ByName resolves a name case-insensitively, preferring the user's own category.
func (s *Categories) ByName(ctx context.Context, userID uuid.UUID, name string) (*model.Category, error) {
	categories, err := s.repo.CategoriesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	var fallback *model.Category
	for i := range categories {
		c := &categories[i]
		if !strings.EqualFold(c.Nombre, name) {
			continue
		}
		if !c.IsDefault() {
			return c, nil
		}
		if fallback == nil {
			fallback = c
		}
	}
	if fallback == nil {
		return nil, apperr.NotFound("categoría", name)
	}
	return fallback, nil
}

func (s *Categories) owned(ctx context.Context, userID, id uuid.UUID) (*model.Category, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if c.IsDefault() {
		return nil, apperr.Validation("las categorías por defecto no se pueden modificar")
	}
	return c, nil
}

func (s *Categories) ensureUniqueName(ctx context.Context, userID uuid.UUID, name string, except uuid.UUID) error {
	categories, err := s.repo.CategoriesForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c.ID != except && strings.EqualFold(c.Nombre, name) {
			return apperr.Conflict("ya existe una categoría llamada %q", c.Nombre)
		}
	}
	return nil
}
