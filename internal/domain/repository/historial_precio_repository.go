package repository

import (
	"time"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
)

// FiltroHistorialPrecios filtros del buscador de historial.
type FiltroHistorialPrecios struct {
	SKU     string
	Desde   *time.Time
	Hasta   *time.Time
	Motivo  string // coincidencia parcial
	Usuario string // coincidencia parcial sobre created_by
}

// HistorialPrecioRepository define el puerto del historial de precios.
// Append-only salvo el cierre de la ventana vigente (fijar vigente_hasta).
type HistorialPrecioRepository interface {
	Create(h *entity.HistorialPrecio) error
	GetByID(id string) (*entity.HistorialPrecio, error)
	// GetVigente devuelve la ventana abierta de una presentación. Nil si la
	// presentación nunca tuvo precio.
	GetVigente(presentacionID string) (*entity.HistorialPrecio, error)
	// GetVigenteForUpdate bloquea la fila vigente para serializar cambios de
	// precio concurrentes sobre la misma presentación.
	GetVigenteForUpdate(presentacionID string) (*entity.HistorialPrecio, error)
	// CerrarVigente fija vigente_hasta de la fila indicada.
	CerrarVigente(id string, hasta time.Time) error
	// Buscar devuelve la página del historial (todas las presentaciones) y el
	// total de filas que cumplen el filtro, ordenado por inicio descendente.
	Buscar(filtro FiltroHistorialPrecios, limit, offset int) ([]*entity.HistorialPrecio, int, error)
}
