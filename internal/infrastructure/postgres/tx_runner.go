package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ ordenes.OrdenTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunOrden inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// La solicitud se bloquea con GetForUpdate dentro de fn; el índice único sobre ordenes.solicitud_id
// cubre el resto de carreras.
func (r *TxRunner) RunOrden(ctx context.Context, fn func(
	solicitudRepo repository.SolicitudRepository,
	ordenRepo repository.OrdenRepository,
	catalogoRepo repository.CatalogoRepository,
	reglaRepo repository.ReglaTarifaRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewSolicitudRepository(tx),
		NewOrdenRepository(tx),
		NewCatalogoRepository(tx),
		NewReglaTarifaRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
