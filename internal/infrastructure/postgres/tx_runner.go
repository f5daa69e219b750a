package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grupodelsur/distribuidora-api/internal/application/inventory"
	"github.com/grupodelsur/distribuidora-api/internal/application/pricing"
	"github.com/grupodelsur/distribuidora-api/internal/application/purchasing"
	"github.com/grupodelsur/distribuidora-api/internal/application/reservation"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ reservation.TxRunner = (*TxRunner)(nil)
var _ purchasing.TxRunner = (*TxRunner)(nil)
var _ pricing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos de inventario y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	loteRepo repository.LoteRepository,
) error) error {
	return r.enTx(ctx, func(tx Querier) error {
		return fn(NewMovimientoRepository(tx), NewPosicionStockRepository(tx), NewLoteRepository(tx))
	})
}

// RunReservas inicia una transacción con los repos del motor de reservas.
func (r *TxRunner) RunReservas(ctx context.Context, fn func(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	reservaRepo repository.ReservaRepository,
) error) error {
	return r.enTx(ctx, func(tx Querier) error {
		return fn(NewMovimientoRepository(tx), NewPosicionStockRepository(tx), NewReservaRepository(tx))
	})
}

// RunCompras inicia una transacción con los repos del circuito de compras.
func (r *TxRunner) RunCompras(ctx context.Context, fn func(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	loteRepo repository.LoteRepository,
	compraRepo repository.CompraRepository,
	recepcionRepo repository.RecepcionRepository,
) error) error {
	return r.enTx(ctx, func(tx Querier) error {
		return fn(
			NewMovimientoRepository(tx),
			NewPosicionStockRepository(tx),
			NewLoteRepository(tx),
			NewCompraRepository(tx),
			NewRecepcionRepository(tx),
		)
	})
}

// RunPrecios inicia una transacción con el repo de historial de precios.
func (r *TxRunner) RunPrecios(ctx context.Context, fn func(
	histRepo repository.HistorialPrecioRepository,
) error) error {
	return r.enTx(ctx, func(tx Querier) error {
		return fn(NewHistorialPrecioRepository(tx))
	})
}

func (r *TxRunner) enTx(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
