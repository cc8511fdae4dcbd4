package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

const walletColumns = `id, user_id, nombre, saldo, total_ingresos, total_egresos, created_at, updated_at`

func scanWallet(row rowScanner) (*model.Wallet, error) {
	var w model.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Nombre, &w.Saldo, &w.TotalIngresos, &w.TotalEgresos, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Storage) CreateWallet(ctx context.Context, w model.Wallet) (*model.Wallet, error) {
	query := `INSERT INTO wallets (user_id, nombre, saldo) VALUES ($1, $2, $3) RETURNING ` + walletColumns
	created, err := scanWallet(s.pool.QueryRow(ctx, query, w.UserID, w.Nombre, w.Saldo))
	if err != nil {
		return nil, mapError(err, "billetera")
	}
	return created, nil
}

// UpdateWallet is the explicit edit path; totals stay owned by operations.
func (s *Storage) UpdateWallet(ctx context.Context, w model.Wallet) (*model.Wallet, error) {
	query := `UPDATE wallets SET nombre = $2, saldo = $3, updated_at = NOW() WHERE id = $1 RETURNING ` + walletColumns
	updated, err := scanWallet(s.pool.QueryRow(ctx, query, w.ID, w.Nombre, w.Saldo))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, "billetera")
	}
	return updated, nil
}

func (s *Storage) DeleteWallet(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	return mapError(err, "billetera")
}

func (s *Storage) WalletByID(ctx context.Context, id uuid.UUID) (*model.Wallet, error) {
	w, err := scanWallet(s.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading wallet: %w", err)
	}
	return w, nil
}

func (s *Storage) WalletsByUser(ctx context.Context, userID uuid.UUID) ([]model.Wallet, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading wallets: %w", err)
	}
	defer rows.Close()

	var wallets []model.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}
