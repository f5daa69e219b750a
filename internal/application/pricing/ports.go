package pricing

import (
	"context"

	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con el
// repositorio de historial atado a esa tx. El recálculo masivo confirma todas
// sus ventanas nuevas como una sola unidad.
type TxRunner interface {
	RunPrecios(ctx context.Context, fn func(
		histRepo repository.HistorialPrecioRepository,
	) error) error
}
