package repository

import "github.com/grupodelsur/distribuidora-api/internal/domain/entity"

// ReservaRepository define el puerto de persistencia de reservas y sus
// asignaciones por lote.
type ReservaRepository interface {
	// Create persiste la reserva con sus asignaciones.
	Create(reserva *entity.Reserva) error
	GetByID(id string) (*entity.Reserva, error)
	// GetForUpdate carga la reserva con sus lotes bloqueando la fila
	// (SELECT FOR UPDATE) para serializar liberaciones y aplicaciones.
	GetForUpdate(id string) (*entity.Reserva, error)
	// Update persiste estado, totales y restantes por lote.
	Update(reserva *entity.Reserva) error
	// GetByOrigen devuelve la reserva más reciente de un documento dueño
	// (anticipo o venta). Nil si no hay ninguna.
	GetByOrigen(origenTipo, origenID string) (*entity.Reserva, error)
}
