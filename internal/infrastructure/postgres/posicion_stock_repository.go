package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/inventory"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.PosicionStockRepository = (*PosicionStockRepo)(nil)

// PosicionStockRepo implementación de PosicionStockRepository sobre PostgreSQL
// (usable con pool o tx).
type PosicionStockRepo struct {
	q Querier
}

// NewPosicionStockRepository construye el adaptador de posiciones. Pasar pool o tx (Querier).
func NewPosicionStockRepository(q Querier) *PosicionStockRepo {
	return &PosicionStockRepo{q: q}
}

// Get obtiene la posición de un lote. Una fila inexistente es saldo cero.
func (r *PosicionStockRepo) Get(loteID string) (*entity.PosicionStock, error) {
	query := `
		SELECT lote_id, almacen_id, disponible, reservada, stock_minimo, updated_at
		FROM posiciones_stock WHERE lote_id = $1`
	return r.scanUna(r.q.QueryRow(context.Background(), query, loteID), loteID, "get posicion")
}

// GetForUpdate obtiene la posición y bloquea la fila (SELECT FOR UPDATE).
func (r *PosicionStockRepo) GetForUpdate(loteID string) (*entity.PosicionStock, error) {
	query := `
		SELECT lote_id, almacen_id, disponible, reservada, stock_minimo, updated_at
		FROM posiciones_stock WHERE lote_id = $1
		FOR UPDATE`
	return r.scanUna(r.q.QueryRow(context.Background(), query, loteID), loteID, "get posicion for update")
}

// Upsert inserta o actualiza la posición de un lote.
func (r *PosicionStockRepo) Upsert(pos *entity.PosicionStock) error {
	query := `
		INSERT INTO posiciones_stock (lote_id, almacen_id, disponible, reservada, stock_minimo, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (lote_id)
		DO UPDATE SET disponible = EXCLUDED.disponible, reservada = EXCLUDED.reservada,
		              stock_minimo = EXCLUDED.stock_minimo, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		pos.LoteID, pos.AlmacenID, pos.Disponible, pos.Reservada, pos.StockMinimo,
	)
	if err != nil {
		return fmt.Errorf("upsert posicion: %w", err)
	}
	return nil
}

// Candidatos devuelve los lotes con disponible > 0 de una presentación en un
// almacén, en el orden FEFO canónico: vencimiento ascendente con nulos al
// final y el id de lote como desempate.
func (r *PosicionStockRepo) Candidatos(presentacionID, almacenID string) ([]inventory.Candidato, error) {
	return r.candidatos(presentacionID, almacenID, false)
}

// CandidatosForUpdate es la variante con bloqueo de filas, usada para
// revalidar el plan dentro de la transacción que lo confirma. El orden fijo
// del FOR UPDATE evita deadlocks entre reservas concurrentes.
func (r *PosicionStockRepo) CandidatosForUpdate(presentacionID, almacenID string) ([]inventory.Candidato, error) {
	return r.candidatos(presentacionID, almacenID, true)
}

func (r *PosicionStockRepo) candidatos(presentacionID, almacenID string, lock bool) ([]inventory.Candidato, error) {
	query := `
		SELECT l.id, l.fecha_vencimiento, p.disponible
		FROM posiciones_stock p
		JOIN lotes l ON l.id = p.lote_id
		WHERE l.presentacion_id = $1 AND l.almacen_id = $2 AND p.disponible > 0
		ORDER BY l.fecha_vencimiento ASC NULLS LAST, l.id ASC`
	if lock {
		query += `
		FOR UPDATE OF p`
	}
	rows, err := r.q.Query(context.Background(), query, presentacionID, almacenID)
	if err != nil {
		return nil, fmt.Errorf("candidatos: %w", err)
	}
	defer rows.Close()
	var list []inventory.Candidato
	for rows.Next() {
		var c inventory.Candidato
		if err := rows.Scan(&c.LoteID, &c.FechaVencimiento, &c.Disponible); err != nil {
			return nil, fmt.Errorf("scan candidato: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Listar devuelve la página de posiciones con datos de lote y presentación,
// ordenada por vencimiento (nulos al final) y SKU, junto con el total.
func (r *PosicionStockRepo) Listar(filtro repository.FiltroPosiciones, limit, offset int) ([]*entity.PosicionLote, int, error) {
	base := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select().
		From("posiciones_stock p").
		Join("lotes l ON l.id = p.lote_id").
		Join("presentaciones pr ON pr.id = l.presentacion_id")

	if filtro.AlmacenID != "" {
		base = base.Where(sq.Eq{"l.almacen_id": filtro.AlmacenID})
	}
	if filtro.Q != "" {
		like := "%" + filtro.Q + "%"
		base = base.Where(sq.Or{
			sq.ILike{"pr.sku": like},
			sq.ILike{"pr.nombre_normalizado": like},
			sq.ILike{"l.numero_lote": like},
		})
	}
	if filtro.VenceAntes != nil {
		base = base.Where(sq.LtOrEq{"l.fecha_vencimiento": *filtro.VenceAntes})
	}
	if filtro.SoloAlertas {
		base = base.Where(sq.Or{
			sq.NotEq{"l.fecha_vencimiento": nil},
			sq.Gt{"p.stock_minimo": 0},
		})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("armar count posiciones: %w", err)
	}
	var total int
	if err := r.q.QueryRow(context.Background(), countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posiciones: %w", err)
	}

	query, args, err := base.
		Columns(
			"l.id", "pr.id", "pr.sku", "pr.nombre", "l.almacen_id", "l.numero_lote",
			"l.fecha_vencimiento", "p.disponible", "p.reservada", "p.stock_minimo",
		).
		OrderBy("l.fecha_vencimiento ASC NULLS LAST", "pr.sku ASC", "l.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("armar listado posiciones: %w", err)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listar posiciones: %w", err)
	}
	defer rows.Close()
	var list []*entity.PosicionLote
	for rows.Next() {
		var p entity.PosicionLote
		if err := rows.Scan(
			&p.LoteID, &p.PresentacionID, &p.SKU, &p.Nombre, &p.AlmacenID, &p.NumeroLote,
			&p.FechaVencimiento, &p.Disponible, &p.Reservada, &p.StockMinimo,
		); err != nil {
			return nil, 0, fmt.Errorf("scan posicion: %w", err)
		}
		list = append(list, &p)
	}
	return list, total, rows.Err()
}

func (r *PosicionStockRepo) scanUna(row pgx.Row, loteID, op string) (*entity.PosicionStock, error) {
	var p entity.PosicionStock
	err := row.Scan(&p.LoteID, &p.AlmacenID, &p.Disponible, &p.Reservada, &p.StockMinimo, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.PosicionStock{
				LoteID:      loteID,
				Disponible:  decimal.Zero,
				Reservada:   decimal.Zero,
				StockMinimo: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}
