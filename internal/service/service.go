// Package service holds the business rules on top of the repositories.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

// Repository lookups return (nil, nil) when the row is absent.

type UserRepository interface {
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	UpdateUser(ctx context.Context, u model.User) (*model.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UserByAuthID(ctx context.Context, authID string) (*model.User, error)
	UserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UserByPhone(ctx context.Context, phone string) (*model.User, error)
}

type SimilarUserFinder interface {
	SimilarUsers(ctx context.Context, q model.SimilarityQuery) ([]model.User, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, c model.Category) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	CategoriesForUser(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	DefaultCategories(ctx context.Context) ([]model.Category, error)
}

type WalletRepository interface {
	CreateWallet(ctx context.Context, w model.Wallet) (*model.Wallet, error)
	UpdateWallet(ctx context.Context, w model.Wallet) (*model.Wallet, error)
	DeleteWallet(ctx context.Context, id uuid.UUID) error
	WalletByID(ctx context.Context, id uuid.UUID) (*model.Wallet, error)
	WalletsByUser(ctx context.Context, userID uuid.UUID) ([]model.Wallet, error)
}

type OperationRepository interface {
	CreateOperation(ctx context.Context, op model.Operation) (*model.Operation, error)
	UpdateOperation(ctx context.Context, old, op model.Operation) (*model.Operation, error)
	DeleteOperation(ctx context.Context, op model.Operation) error
	OperationByID(ctx context.Context, id uuid.UUID) (*model.Operation, error)
	OperationsByUser(ctx context.Context, userID uuid.UUID, f model.OperationFilter) ([]model.Operation, error)
	OperationsByObjective(ctx context.Context, objectiveID uuid.UUID) ([]model.Operation, error)
}

type ObjectiveRepository interface {
	CreateObjective(ctx context.Context, o model.Objective) (*model.Objective, error)
	UpdateObjective(ctx context.Context, o model.Objective) (*model.Objective, error)
	DeleteObjective(ctx context.Context, id uuid.UUID) error
	ObjectiveByID(ctx context.Context, id uuid.UUID) (*model.Objective, error)
	ObjectivesByUser(ctx context.Context, userID uuid.UUID) ([]model.Objective, error)
}

type ProfessionRepository interface {
	CreateProfession(ctx context.Context, nombre string) (*model.Profession, error)
	UpdateProfession(ctx context.Context, p model.Profession) (*model.Profession, error)
	DeleteProfession(ctx context.Context, id uuid.UUID) (bool, error)
	Professions(ctx context.Context) ([]model.Profession, error)
}

type LocationRepository interface {
	Provinces(ctx context.Context) ([]model.Province, error)
	ProvinceByID(ctx context.Context, id uuid.UUID) (*model.Province, error)
}

// Random is the source behind candidate selection. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}
