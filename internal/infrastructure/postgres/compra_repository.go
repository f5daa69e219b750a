package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.CompraRepository = (*CompraRepo)(nil)

// CompraRepo implementación de CompraRepository sobre PostgreSQL (usable con pool o tx).
type CompraRepo struct {
	q Querier
}

// NewCompraRepository construye el adaptador de compras. Pasar pool o tx (Querier).
func NewCompraRepository(q Querier) *CompraRepo {
	return &CompraRepo{q: q}
}

// Create persiste el encabezado de la orden.
func (r *CompraRepo) Create(compra *entity.Compra) error {
	query := `
		INSERT INTO compras (id, proveedor_id, moneda_id, tipo_cambio, estado, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	createdBy := (*string)(nil)
	if compra.CreatedBy != "" {
		createdBy = &compra.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		compra.ID, compra.ProveedorID, compra.MonedaID, compra.TipoCambio,
		compra.Estado, compra.CreatedAt, compra.UpdatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create compra: %w", err)
	}
	return nil
}

// GetByID carga la orden con sus líneas. Nil si no existe.
func (r *CompraRepo) GetByID(id string) (*entity.Compra, error) {
	query := `
		SELECT id, proveedor_id, moneda_id, tipo_cambio, estado, created_at, updated_at, created_by
		FROM compras WHERE id = $1`
	return r.cargar(query, id, "get compra")
}

// GetForUpdate carga la orden bloqueando su fila, para serializar cambios de
// estado y recepciones contra ella.
func (r *CompraRepo) GetForUpdate(id string) (*entity.Compra, error) {
	query := `
		SELECT id, proveedor_id, moneda_id, tipo_cambio, estado, created_at, updated_at, created_by
		FROM compras WHERE id = $1
		FOR UPDATE`
	return r.cargar(query, id, "get compra for update")
}

// UpdateEstado fija el estado de la orden.
func (r *CompraRepo) UpdateEstado(id, estado string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE compras SET estado = $2, updated_at = now() WHERE id = $1`, id, estado)
	if err != nil {
		return fmt.Errorf("update estado compra: %w", err)
	}
	return nil
}

// Delete elimina la orden. El caso de uso garantiza que no tenga líneas.
func (r *CompraRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM compras WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete compra: %w", err)
	}
	return nil
}

// AgregarDetalle persiste una línea de la orden.
func (r *CompraRepo) AgregarDetalle(detalle *entity.CompraDetalle) error {
	query := `
		INSERT INTO compra_detalles (id, compra_id, presentacion_id, cantidad, costo_unitario, fecha_estimada_llegada, cantidad_recibida)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		detalle.ID, detalle.CompraID, detalle.PresentacionID, detalle.Cantidad,
		detalle.CostoUnitario, detalle.FechaEstimadaLlegada, detalle.CantidadRecibida,
	)
	if err != nil {
		return fmt.Errorf("create compra detalle: %w", err)
	}
	return nil
}

// EliminarDetalle borra una línea.
func (r *CompraRepo) EliminarDetalle(detalleID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM compra_detalles WHERE id = $1`, detalleID)
	if err != nil {
		return fmt.Errorf("delete compra detalle: %w", err)
	}
	return nil
}

// ActualizarRecibido fija el acumulado recibido de una línea.
func (r *CompraRepo) ActualizarRecibido(detalleID string, cantidadRecibida decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE compra_detalles SET cantidad_recibida = $2 WHERE id = $1`, detalleID, cantidadRecibida)
	if err != nil {
		return fmt.Errorf("update recibido compra detalle: %w", err)
	}
	return nil
}

func (r *CompraRepo) cargar(query, id, op string) (*entity.Compra, error) {
	var c entity.Compra
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.ProveedorID, &c.MonedaID, &c.TipoCambio, &c.Estado,
		&c.CreatedAt, &c.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if createdBy != nil {
		c.CreatedBy = *createdBy
	}
	if err := r.cargarDetalles(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompraRepo) cargarDetalles(compra *entity.Compra) error {
	query := `
		SELECT id, compra_id, presentacion_id, cantidad, costo_unitario, fecha_estimada_llegada, cantidad_recibida
		FROM compra_detalles WHERE compra_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, compra.ID)
	if err != nil {
		return fmt.Errorf("cargar detalles de compra: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.CompraDetalle
		if err := rows.Scan(&d.ID, &d.CompraID, &d.PresentacionID, &d.Cantidad,
			&d.CostoUnitario, &d.FechaEstimadaLlegada, &d.CantidadRecibida); err != nil {
			return fmt.Errorf("scan compra detalle: %w", err)
		}
		compra.Detalles = append(compra.Detalles, d)
	}
	return rows.Err()
}
