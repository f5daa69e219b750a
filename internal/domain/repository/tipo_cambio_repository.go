package repository

import (
	"time"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
)

// TipoCambioRepository define el puerto del almacén de tipos de cambio.
// Append-only: nunca se actualizan ni eliminan tasas.
type TipoCambioRepository interface {
	Create(tc *entity.TipoCambio) error
	// ExisteEnFecha indica si ya hay una tasa del par con esa fecha de
	// vigencia (mismo día), para la variante crear-si-no-existe.
	ExisteEnFecha(origenID, destinoID string, fecha time.Time) (bool, error)
	// Vigente devuelve la tasa con mayor fecha de vigencia <= fecha para el
	// par. Nil si aún no hay ninguna registrada.
	Vigente(origenID, destinoID string, fecha time.Time) (*entity.TipoCambio, error)
	// Historial lista tasas por fecha de vigencia descendente; origen/destino
	// vacíos listan todos los pares.
	Historial(origenID, destinoID string, limit, offset int) ([]*entity.TipoCambio, int, error)
}
