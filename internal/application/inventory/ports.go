package inventory

import (
	"context"

	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el alta del movimiento y la
// actualización de la posición sean una sola unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		loteRepo repository.LoteRepository,
	) error) error
}
