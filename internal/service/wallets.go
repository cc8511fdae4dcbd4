package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

// DefaultWalletName is used when a user without wallets records an operation from the bot.
const DefaultWalletName = "Principal"

type Wallets struct {
	repo WalletRepository
}

func NewWallets(repo WalletRepository) *Wallets {
	return &Wallets{repo: repo}
}

func (s *Wallets) List(ctx context.Context, userID uuid.UUID) ([]model.Wallet, error) {
	return s.repo.WalletsByUser(ctx, userID)
}

func (s *Wallets) Get(ctx context.Context, userID, id uuid.UUID) (*model.Wallet, error) {
	w, err := s.repo.WalletByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil || w.UserID != userID {
		return nil, apperr.NotFound("billetera", id)
	}
	return w, nil
}

func (s *Wallets) Create(ctx context.Context, userID uuid.UUID, in model.WalletInput) (*model.Wallet, error) {
	name := strings.TrimSpace(in.Nombre)
	if name == "" {
		return nil, apperr.Validation("el nombre de la billetera es obligatorio")
	}
	w := model.Wallet{UserID: userID, Nombre: name}
	if in.Saldo != nil {
		w.Saldo = *in.Saldo
	}
	return s.repo.CreateWallet(ctx, w)
}

// Update edits name and balance explicitly. Income and expense totals are left alone.
func (s *Wallets) Update(ctx context.Context, userID, id uuid.UUID, in model.WalletInput) (*model.Wallet, error) {
	w, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Nombre); name != "" {
		w.Nombre = name
	}
	if in.Saldo != nil {
		w.Saldo = *in.Saldo
	}
	updated, err := s.repo.UpdateWallet(ctx, *w)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("billetera", id)
	}
	return updated, nil
}

func (s *Wallets) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteWallet(ctx, id)
}

// Default returns the user's oldest wallet, creating one when there is none.
func (s *Wallets) Default(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	wallets, err := s.repo.WalletsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(wallets) > 0 {
		return &wallets[0], nil
	}
	return s.repo.CreateWallet(ctx, model.Wallet{UserID: userID, Nombre: DefaultWalletName})
}
