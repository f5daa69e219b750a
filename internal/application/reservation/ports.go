package reservation

import (
	"context"

	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del motor de reservas atados a esa tx. La confirmación del plan
// FEFO, los movimientos y la reserva se escriben como una sola unidad.
type TxRunner interface {
	RunReservas(ctx context.Context, fn func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		reservaRepo repository.ReservaRepository,
	) error) error
}
