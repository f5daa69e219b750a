package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.HistorialPrecioRepository = (*HistorialPrecioRepo)(nil)

// HistorialPrecioRepo implementación del historial de precios sobre PostgreSQL
// (usable con pool o tx). Append-only salvo el cierre de la ventana vigente.
type HistorialPrecioRepo struct {
	q Querier
}

// NewHistorialPrecioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHistorialPrecioRepository(q Querier) *HistorialPrecioRepo {
	return &HistorialPrecioRepo{q: q}
}

// Create persiste una ventana nueva.
func (r *HistorialPrecioRepo) Create(h *entity.HistorialPrecio) error {
	query := `
		INSERT INTO historial_precios (id, presentacion_id, precio, vigente_desde, vigente_hasta, motivo, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	createdBy := (*string)(nil)
	if h.CreatedBy != "" {
		createdBy = &h.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		h.ID, h.PresentacionID, h.Precio, h.VigenteDesde, h.VigenteHasta,
		h.Motivo, createdBy, h.CreatedAt,
	)
	if err != nil {
		// El índice único parcial sobre (presentacion_id) WHERE vigente_hasta IS NULL
		// garantiza a lo sumo una ventana abierta por presentación.
		if isUniqueViolation(err) {
			return fmt.Errorf("create historial precio: %w", errDuplicado(err))
		}
		return fmt.Errorf("create historial precio: %w", err)
	}
	return nil
}

// GetByID obtiene una fila del historial. Nil si no existe.
func (r *HistorialPrecioRepo) GetByID(id string) (*entity.HistorialPrecio, error) {
	query := `
		SELECT id, presentacion_id, precio, vigente_desde, vigente_hasta, motivo, created_by, created_at
		FROM historial_precios WHERE id = $1`
	return r.scanUno(r.q.QueryRow(context.Background(), query, id), "get historial precio")
}

// GetVigente devuelve la ventana abierta de una presentación. Nil si nunca
// tuvo precio.
func (r *HistorialPrecioRepo) GetVigente(presentacionID string) (*entity.HistorialPrecio, error) {
	query := `
		SELECT id, presentacion_id, precio, vigente_desde, vigente_hasta, motivo, created_by, created_at
		FROM historial_precios WHERE presentacion_id = $1 AND vigente_hasta IS NULL`
	return r.scanUno(r.q.QueryRow(context.Background(), query, presentacionID), "get precio vigente")
}

// GetVigenteForUpdate bloquea la ventana abierta para serializar cambios de
// precio concurrentes sobre la misma presentación.
func (r *HistorialPrecioRepo) GetVigenteForUpdate(presentacionID string) (*entity.HistorialPrecio, error) {
	query := `
		SELECT id, presentacion_id, precio, vigente_desde, vigente_hasta, motivo, created_by, created_at
		FROM historial_precios WHERE presentacion_id = $1 AND vigente_hasta IS NULL
		FOR UPDATE`
	return r.scanUno(r.q.QueryRow(context.Background(), query, presentacionID), "get precio vigente for update")
}

// CerrarVigente fija vigente_hasta de la fila indicada.
func (r *HistorialPrecioRepo) CerrarVigente(id string, hasta time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE historial_precios SET vigente_hasta = $2 WHERE id = $1 AND vigente_hasta IS NULL`,
		id, hasta)
	if err != nil {
		return fmt.Errorf("cerrar precio vigente: %w", err)
	}
	return nil
}

// Buscar devuelve la página del historial filtrada, más reciente primero.
func (r *HistorialPrecioRepo) Buscar(filtro repository.FiltroHistorialPrecios, limit, offset int) ([]*entity.HistorialPrecio, int, error) {
	base := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select().
		From("historial_precios h").
		Join("presentaciones pr ON pr.id = h.presentacion_id")

	if filtro.SKU != "" {
		base = base.Where(sq.ILike{"pr.sku": "%" + filtro.SKU + "%"})
	}
	if filtro.Desde != nil {
		base = base.Where(sq.GtOrEq{"h.vigente_desde": *filtro.Desde})
	}
	if filtro.Hasta != nil {
		base = base.Where(sq.LtOrEq{"h.vigente_desde": *filtro.Hasta})
	}
	if filtro.Motivo != "" {
		base = base.Where(sq.ILike{"h.motivo": "%" + filtro.Motivo + "%"})
	}
	if filtro.Usuario != "" {
		base = base.Where(sq.ILike{"h.created_by": "%" + filtro.Usuario + "%"})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("armar count historial: %w", err)
	}
	var total int
	if err := r.q.QueryRow(context.Background(), countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count historial: %w", err)
	}

	query, args, err := base.
		Columns("h.id", "h.presentacion_id", "h.precio", "h.vigente_desde", "h.vigente_hasta", "h.motivo", "h.created_by", "h.created_at").
		OrderBy("h.vigente_desde DESC", "h.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("armar búsqueda historial: %w", err)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("buscar historial: %w", err)
	}
	defer rows.Close()
	var list []*entity.HistorialPrecio
	for rows.Next() {
		var h entity.HistorialPrecio
		var createdBy *string
		if err := rows.Scan(&h.ID, &h.PresentacionID, &h.Precio, &h.VigenteDesde,
			&h.VigenteHasta, &h.Motivo, &createdBy, &h.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan historial precio: %w", err)
		}
		if createdBy != nil {
			h.CreatedBy = *createdBy
		}
		list = append(list, &h)
	}
	return list, total, rows.Err()
}

func (r *HistorialPrecioRepo) scanUno(row pgx.Row, op string) (*entity.HistorialPrecio, error) {
	var h entity.HistorialPrecio
	var createdBy *string
	err := row.Scan(&h.ID, &h.PresentacionID, &h.Precio, &h.VigenteDesde,
		&h.VigenteHasta, &h.Motivo, &createdBy, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if createdBy != nil {
		h.CreatedBy = *createdBy
	}
	return &h, nil
}
