package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

const operationColumns = `id, monto, tipo, fecha, descripcion, user_id, category_id, wallet_id, objective_id, created_at`

func scanOperation(row rowScanner) (*model.Operation, error) {
	var o model.Operation
	err := row.Scan(&o.ID, &o.Monto, &o.Tipo, &o.Fecha, &o.Descripcion, &o.UserID, &o.CategoryID, &o.WalletID,
		&o.ObjectiveID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOperation inserts op and applies it to its wallet in one transaction.
func (s *Storage) CreateOperation(ctx context.Context, op model.Operation) (*model.Operation, error) {
	var created *model.Operation
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query := `INSERT INTO operations (monto, tipo, fecha, descripcion, user_id, category_id, wallet_id, objective_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + operationColumns
		var err error
		created, err = scanOperation(tx.QueryRow(ctx, query,
			op.Monto, op.Tipo, op.Fecha, op.Descripcion, op.UserID, op.CategoryID, op.WalletID, op.ObjectiveID,
		))
		if err != nil {
			return mapError(err, "operación")
		}
		return applyToWallet(ctx, tx, *created, 1)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateOperation reverses old on its wallet, rewrites the row and applies the new values.
func (s *Storage) UpdateOperation(ctx context.Context, old, op model.Operation) (*model.Operation, error) {
	var updated *model.Operation
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := applyToWallet(ctx, tx, old, -1); err != nil {
			return err
		}
		query := `UPDATE operations SET monto = $2, tipo = $3, fecha = $4, descripcion = $5, category_id = $6,
				wallet_id = $7, objective_id = $8
			WHERE id = $1
			RETURNING ` + operationColumns
		var err error
		updated, err = scanOperation(tx.QueryRow(ctx, query,
			old.ID, op.Monto, op.Tipo, op.Fecha, op.Descripcion, op.CategoryID, op.WalletID, op.ObjectiveID,
		))
		if isNoRows(err) {
			return apperr.NotFound("operación", old.ID)
		}
		if err != nil {
			return mapError(err, "operación")
		}
		return applyToWallet(ctx, tx, *updated, 1)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteOperation(ctx context.Context, op model.Operation) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM operations WHERE id = $1`, op.ID)
		if err != nil {
			return mapError(err, "operación")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("operación", op.ID)
		}
		return applyToWallet(ctx, tx, op, -1)
	})
}

// applyToWallet adds (sign 1) or reverses (sign -1) op on the wallet balance and totals.
func applyToWallet(ctx context.Context, tx pgx.Tx, op model.Operation, sign float64) error {
	amount := sign * op.Monto
	var income, expense float64
	balance := amount
	if op.Tipo == model.OperationExpense {
		expense = amount
		balance = -amount
	} else {
		income = amount
	}

	query := `UPDATE wallets SET saldo = saldo + $2, total_ingresos = total_ingresos + $3,
			total_egresos = total_egresos + $4, updated_at = NOW()
		WHERE id = $1`
	tag, err := tx.Exec(ctx, query, op.WalletID, balance, income, expense)
	if err != nil {
		return fmt.Errorf("error updating wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("billetera", op.WalletID)
	}
	return nil
}

func (s *Storage) OperationByID(ctx context.Context, id uuid.UUID) (*model.Operation, error) {
	o, err := scanOperation(s.pool.QueryRow(ctx, `SELECT `+operationColumns+` FROM operations WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading operation: %w", err)
	}
	return o, nil
}

// OperationsByUser lists a user's operations, newest first. Hasta is exclusive.
func (s *Storage) OperationsByUser(ctx context.Context, userID uuid.UUID, f model.OperationFilter) ([]model.Operation, error) {
	args := []any{userID}
	where := []string{"user_id = $1"}
	if f.Tipo != "" {
		args = append(args, f.Tipo)
		where = append(where, fmt.Sprintf("tipo = $%d", len(args)))
	}
	if f.Desde != nil {
		args = append(args, *f.Desde)
		where = append(where, fmt.Sprintf("fecha >= $%d", len(args)))
	}
	if f.Hasta != nil {
		args = append(args, *f.Hasta)
		where = append(where, fmt.Sprintf("fecha < $%d", len(args)))
	}
	query := `SELECT ` + operationColumns + ` FROM operations WHERE ` + strings.Join(where, " AND ") + ` ORDER BY fecha DESC, created_at DESC`
	return s.queryOperations(ctx, query, args...)
}

func (s *Storage) OperationsByObjective(ctx context.Context, objectiveID uuid.UUID) ([]model.Operation, error) {
	return s.queryOperations(ctx, `SELECT `+operationColumns+` FROM operations WHERE objective_id = $1 ORDER BY fecha`, objectiveID)
}

func (s *Storage) queryOperations(ctx context.Context, query string, args ...any) ([]model.Operation, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading operations: %w", err)
	}
	defer rows.Close()

	var operations []model.Operation
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		operations = append(operations, *o)
	}
	return operations, rows.Err()
}
