package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.PresentacionRepository = (*PresentacionRepo)(nil)
var _ repository.AlmacenRepository = (*AlmacenRepo)(nil)
var _ repository.MonedaRepository = (*MonedaRepo)(nil)

// PresentacionRepo consulta el directorio de presentaciones sobre PostgreSQL.
type PresentacionRepo struct {
	q Querier
}

// NewPresentacionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPresentacionRepository(q Querier) *PresentacionRepo {
	return &PresentacionRepo{q: q}
}

// GetByID obtiene una presentación. Nil si no existe.
func (r *PresentacionRepo) GetByID(id string) (*entity.Presentacion, error) {
	query := `
		SELECT id, sku, nombre, moneda_costo_id, costo_origen, created_at
		FROM presentaciones WHERE id = $1`
	var p entity.Presentacion
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.SKU, &p.Nombre, &p.MonedaCostoID, &p.CostoOrigen, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get presentacion: %w", err)
	}
	return &p, nil
}

// ListByMonedaCosto devuelve las presentaciones con costo base en la moneda
// indicada, ordenadas por SKU para que el recálculo sea determinista.
func (r *PresentacionRepo) ListByMonedaCosto(monedaID string) ([]*entity.Presentacion, error) {
	query := `
		SELECT id, sku, nombre, moneda_costo_id, costo_origen, created_at
		FROM presentaciones WHERE moneda_costo_id = $1
		ORDER BY sku ASC`
	rows, err := r.q.Query(context.Background(), query, monedaID)
	if err != nil {
		return nil, fmt.Errorf("list presentaciones por moneda: %w", err)
	}
	defer rows.Close()
	var list []*entity.Presentacion
	for rows.Next() {
		var p entity.Presentacion
		if err := rows.Scan(&p.ID, &p.SKU, &p.Nombre, &p.MonedaCostoID, &p.CostoOrigen, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan presentacion: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// AlmacenRepo consulta el directorio de almacenes sobre PostgreSQL.
type AlmacenRepo struct {
	q Querier
}

// NewAlmacenRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlmacenRepository(q Querier) *AlmacenRepo {
	return &AlmacenRepo{q: q}
}

// GetByID obtiene un almacén. Nil si no existe.
func (r *AlmacenRepo) GetByID(id string) (*entity.Almacen, error) {
	query := `SELECT id, codigo, nombre FROM almacenes WHERE id = $1`
	var a entity.Almacen
	err := r.q.QueryRow(context.Background(), query, id).Scan(&a.ID, &a.Codigo, &a.Nombre)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get almacen: %w", err)
	}
	return &a, nil
}

// MonedaRepo consulta el directorio de monedas sobre PostgreSQL.
type MonedaRepo struct {
	q Querier
}

// NewMonedaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMonedaRepository(q Querier) *MonedaRepo {
	return &MonedaRepo{q: q}
}

// GetByID obtiene una moneda. Nil si no existe.
func (r *MonedaRepo) GetByID(id string) (*entity.Moneda, error) {
	query := `SELECT id, codigo, nombre, simbolo FROM monedas WHERE id = $1`
	var m entity.Moneda
	err := r.q.QueryRow(context.Background(), query, id).Scan(&m.ID, &m.Codigo, &m.Nombre, &m.Simbolo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get moneda: %w", err)
	}
	return &m, nil
}
