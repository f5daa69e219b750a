package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

// MovimientoRepo implementación del log de movimientos sobre PostgreSQL
// (usable con pool o tx). El log es append-only: solo INSERT y SELECT.
type MovimientoRepo struct {
	q Querier
}

// NewMovimientoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovimientoRepository(q Querier) *MovimientoRepo {
	return &MovimientoRepo{q: q}
}

// Create persiste un movimiento.
func (r *MovimientoRepo) Create(mov *entity.Movimiento) error {
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movimientos_inventario (id, lote_id, almacen_id, almacen_destino_id, tipo, cantidad, modulo_origen, referencia_id, nota, fecha, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	nota := (*string)(nil)
	if mov.Nota != "" {
		nota = &mov.Nota
	}
	createdBy := (*string)(nil)
	if mov.CreatedBy != "" {
		createdBy = &mov.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		mov.ID, mov.LoteID, mov.AlmacenID, mov.AlmacenDestinoID, mov.Tipo,
		mov.Cantidad, mov.ModuloOrigen, mov.ReferenciaID, nota, mov.Fecha,
		mov.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create movimiento: %w", err)
	}
	return nil
}

// Recientes lista los últimos movimientos de un lote, el más nuevo primero.
// almacenID vacío no filtra por almacén.
func (r *MovimientoRepo) Recientes(loteID, almacenID string, limit int) ([]*entity.Movimiento, error) {
	query := `
		SELECT id, lote_id, almacen_id, almacen_destino_id, tipo, cantidad, modulo_origen, referencia_id, nota, fecha, created_at, created_by
		FROM movimientos_inventario WHERE lote_id = $1`
	args := []any{loteID}
	pos := 2
	if almacenID != "" {
		query += fmt.Sprintf(" AND almacen_id = $%d", pos)
		args = append(args, almacenID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY fecha DESC, created_at DESC LIMIT $%d", pos)
	args = append(args, limit)
	return r.listar(query, args, "movimientos recientes")
}

// ListByLote lista todos los movimientos de un lote en orden de inserción,
// el insumo del replay de su posición.
func (r *MovimientoRepo) ListByLote(loteID string) ([]*entity.Movimiento, error) {
	query := `
		SELECT id, lote_id, almacen_id, almacen_destino_id, tipo, cantidad, modulo_origen, referencia_id, nota, fecha, created_at, created_by
		FROM movimientos_inventario WHERE lote_id = $1
		ORDER BY created_at ASC, id ASC`
	return r.listar(query, []any{loteID}, "movimientos por lote")
}

func (r *MovimientoRepo) listar(query string, args []any, op string) ([]*entity.Movimiento, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Movimiento
	for rows.Next() {
		var m entity.Movimiento
		var nota, createdBy *string
		if err := rows.Scan(&m.ID, &m.LoteID, &m.AlmacenID, &m.AlmacenDestinoID, &m.Tipo,
			&m.Cantidad, &m.ModuloOrigen, &m.ReferenciaID, &nota, &m.Fecha,
			&m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		if nota != nil {
			m.Nota = *nota
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
