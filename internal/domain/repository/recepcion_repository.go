package repository

import "github.com/grupodelsur/distribuidora-api/internal/domain/entity"

// RecepcionRepository define el puerto de persistencia de recepciones.
type RecepcionRepository interface {
	Create(recepcion *entity.Recepcion) error
	GetByID(id string) (*entity.Recepcion, error)
	// GetForUpdate bloquea la recepción para serializar ítems nuevos y cierre.
	GetForUpdate(id string) (*entity.Recepcion, error)
	UpdateEstado(id, estado string) error
	AgregarDetalle(detalle *entity.RecepcionDetalle) error
}
