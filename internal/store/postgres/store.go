// Package postgres is the PostgreSQL core.Store. Lock primitives are
// SELECT … ORDER BY id FOR UPDATE inside one pgx transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(tx core.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Constraint names that surface as conflicts, mapped to messages.
var conflictMessages = map[string]string{
	"warehouse_receipts_wr_number_key":        "warehouse receipt number already exists",
	"uq_wr_client_tracking":                   "tracking number already exists for this client",
	"uq_balance_wr":                           "warehouse receipt already has an inventory balance",
	"uq_balance_location_wr":                  "warehouse receipt already has a balance at this location",
	"uq_repack_op_input":                      "warehouse receipt is already an input of this repack operation",
	"shipments_shipment_number_key":           "shipment number already exists",
	"uq_shipment_item":                        "warehouse receipt is already on this shipment",
	"storage_locations_warehouse_id_code_key": "location code already exists in this warehouse",
}

// mapError converts constraint violations into rejections and wraps
// everything else in the usual "failed to" form.
func mapError(err error, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			msg, ok := conflictMessages[pgErr.ConstraintName]
			if !ok {
				msg = fmt.Sprintf("unique constraint %s violated", pgErr.ConstraintName)
			}
			return core.Conflict("%s", msg)
		case "23503":
			return &core.RejectionError{
				Kind:    core.ErrNotFound,
				Message: fmt.Sprintf("referenced row does not exist (%s)", pgErr.ConstraintName),
			}
		case "23514":
			return &core.RejectionError{
				Kind:    core.ErrInvalidArgument,
				Message: fmt.Sprintf("check constraint %s violated", pgErr.ConstraintName),
			}
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// notFound maps pgx.ErrNoRows to a NotFound rejection.
func notFound(err error, entity string, id int64, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.NotFound(entity, id)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
