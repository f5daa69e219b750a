package repository

import (
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
)

// CompraRepository define el puerto de persistencia de órdenes de compra.
type CompraRepository interface {
	Create(compra *entity.Compra) error
	// GetByID carga la compra con sus detalles. Nil si no existe.
	GetByID(id string) (*entity.Compra, error)
	// GetForUpdate bloquea la fila de la compra para serializar los cambios de
	// estado y las recepciones contra ella.
	GetForUpdate(id string) (*entity.Compra, error)
	UpdateEstado(id, estado string) error
	// Delete elimina la compra; el caso de uso garantiza que no tenga detalles.
	Delete(id string) error
	AgregarDetalle(detalle *entity.CompraDetalle) error
	EliminarDetalle(detalleID string) error
	// ActualizarRecibido fija el acumulado recibido de una línea.
	ActualizarRecibido(detalleID string, cantidadRecibida decimal.Decimal) error
}
