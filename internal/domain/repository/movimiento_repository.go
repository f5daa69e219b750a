package repository

import "github.com/grupodelsur/distribuidora-api/internal/domain/entity"

// MovimientoRepository define el puerto del log append-only de movimientos.
// No hay update ni delete: el log es la fuente de verdad de los saldos.
type MovimientoRepository interface {
	Create(mov *entity.Movimiento) error
	// Recientes lista los últimos movimientos de un lote, el más nuevo primero.
	// almacenID vacío = todos los almacenes.
	Recientes(loteID, almacenID string, limit int) ([]*entity.Movimiento, error)
	// ListByLote devuelve todos los movimientos de un lote en orden de
	// inserción, para reconstruir su posición por replay.
	ListByLote(loteID string) ([]*entity.Movimiento, error)
}
