package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(ctx context.Context, postgresDsn string) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(postgresDsn)
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging pool: %w", err)
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// mapError turns constraint violations into the shared error taxonomy.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Conflict("%s ya existe", entity)
		case pgForeignKeyViolation:
			return apperr.Conflict("%s está referenciado por otros registros o referencia datos inexistentes", entity)
		case pgNumericOutOfRange:
			return apperr.Validation(fmt.Sprintf("%s tiene un valor numérico fuera de rango", entity))
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

type rowScanner interface {
	Scan(dest ...any) error
}
