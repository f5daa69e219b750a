package purchasing

import (
	"context"

	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del circuito de compras atados a esa tx. Una recepción escribe
// lote, posición, movimiento, detalle y avance de la orden como una sola
// unidad.
type TxRunner interface {
	RunCompras(ctx context.Context, fn func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		loteRepo repository.LoteRepository,
		compraRepo repository.CompraRepository,
		recepcionRepo repository.RecepcionRepository,
	) error) error
}
