package repository

import (
	"time"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/inventory"
)

// FiltroPosiciones filtros del listado de posiciones por lote.
// Q se compara sin acentos contra SKU, nombre y número de lote.
type FiltroPosiciones struct {
	AlmacenID   string
	Q           string
	VenceAntes  *time.Time
	SoloAlertas bool // solo filas con vencimiento registrado o stock mínimo > 0
}

// PosicionStockRepository define el puerto para consultar y actualizar las
// posiciones materializadas por lote. Usado dentro de transacciones para
// garantizar consistencia con el log de movimientos.
type PosicionStockRepository interface {
	Get(loteID string) (*entity.PosicionStock, error)
	// GetForUpdate bloquea la fila de la posición (SELECT FOR UPDATE).
	GetForUpdate(loteID string) (*entity.PosicionStock, error)
	Upsert(pos *entity.PosicionStock) error
	// Candidatos devuelve los lotes con disponible > 0 de una presentación en
	// un almacén, insumo del planificador FEFO.
	Candidatos(presentacionID, almacenID string) ([]inventory.Candidato, error)
	// CandidatosForUpdate es la variante con bloqueo de filas, usada para
	// revalidar el plan dentro de la transacción que lo confirma.
	CandidatosForUpdate(presentacionID, almacenID string) ([]inventory.Candidato, error)
	// Listar devuelve la página de posiciones ordenada por vencimiento y SKU,
	// junto con el total de filas que cumplen el filtro.
	Listar(filtro FiltroPosiciones, limit, offset int) ([]*entity.PosicionLote, int, error)
}
