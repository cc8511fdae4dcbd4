package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

type Users struct {
	repo UserRepository
}

func NewUsers(repo UserRepository) *Users {
	return &Users{repo: repo}
}

// Register creates the user behind an authenticated identity.
func (s *Users) Register(ctx context.Context, id model.Identity, in model.ProfileInput) (*model.User, error) {
	if strings.TrimSpace(id.Subject) == "" {
		return nil, apperr.Validation("usuario no autenticado")
	}
	existing, err := s.repo.UserByAuthID(ctx, id.Subject)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("el usuario ya está registrado")
	}
	if err := validateProfile(in); err != nil {
		return nil, err
	}

	u := model.User{AuthID: id.Subject, Email: id.Email}
	applyProfile(&u, in)
	return s.repo.CreateUser(ctx, u)
}

func (s *Users) ByAuthID(ctx context.Context, authID string) (*model.User, error) {
	u, err := s.repo.UserByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("usuario", nil)
	}
	return u, nil
}

func (s *Users) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("usuario", id)
	}
	return u, nil
}

// UpdateProfile rewrites the profile attributes of u. Identity fields are kept.
func (s *Users) UpdateProfile(ctx context.Context, u *model.User, in model.ProfileInput) (*model.User, error) {
	if u == nil {
		return nil, apperr.Validation("usuario no autenticado")
	}
	if err := validateProfile(in); err != nil {
		return nil, err
	}
	updated := *u
	applyProfile(&updated, in)
	res, err := s.repo.UpdateUser(ctx, updated)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperr.NotFound("usuario", u.ID)
	}
	return res, nil
}

func (s *Users) ByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	u, err := s.repo.UserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("usuario", nil)
	}
	return u, nil
}

// LinkTelegramByPhone binds a Telegram account to the user registered with phone.
func (s *Users) LinkTelegramByPhone(ctx context.Context, phone string, telegramID int64) (*model.User, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return nil, apperr.Validation("teléfono inválido")
	}
	u, err := s.repo.UserByPhone(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("usuario con teléfono", normalized)
	}
	if u.TelegramID != nil && *u.TelegramID == telegramID {
		return u, nil
	}
	u.TelegramID = &telegramID
	res, err := s.repo.UpdateUser(ctx, *u)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperr.NotFound("usuario", u.ID)
	}
	return res, nil
}

// NormalizePhone keeps only the digits of phone.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}

func validateProfile(in model.ProfileInput) error {
	var errs *multierror.Error
	if in.Sueldo != nil && *in.Sueldo < 0 {
		errs = multierror.Append(errs, errors.New("sueldo no puede ser negativo"))
	}
	if in.Telefono != "" && NormalizePhone(in.Telefono) == "" {
		errs = multierror.Append(errs, errors.New("teléfono inválido"))
	}
	if in.Ubicacion.Localidad != "" && (in.Ubicacion.Municipio == "" || in.Ubicacion.Provincia == "") {
		errs = multierror.Append(errs, errors.New("localidad requiere municipio y provincia"))
	}
	if in.Ubicacion.Municipio != "" && in.Ubicacion.Provincia == "" {
		errs = multierror.Append(errs, errors.New("municipio requiere provincia"))
	}
	return apperr.Collect("perfil inválido", errs)
}

func applyProfile(u *model.User, in model.ProfileInput) {
	u.Nombre = strings.TrimSpace(in.Nombre)
	if in.Email != "" {
		u.Email = strings.TrimSpace(in.Email)
	}
	u.Telefono = NormalizePhone(in.Telefono)
	u.Sueldo = in.Sueldo
	u.Profesion = strings.TrimSpace(in.Profesion)
	u.EstadoCivil = strings.TrimSpace(in.EstadoCivil)
	u.Ubicacion = model.Location{
		Provincia: strings.TrimSpace(in.Ubicacion.Provincia),
		Municipio: strings.TrimSpace(in.Ubicacion.Municipio),
		Localidad: strings.TrimSpace(in.Ubicacion.Localidad),
	}
}
