package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.RecepcionRepository = (*RecepcionRepo)(nil)

// RecepcionRepo implementación de RecepcionRepository sobre PostgreSQL (usable con pool o tx).
type RecepcionRepo struct {
	q Querier
}

// NewRecepcionRepository construye el adaptador de recepciones. Pasar pool o tx (Querier).
func NewRecepcionRepository(q Querier) *RecepcionRepo {
	return &RecepcionRepo{q: q}
}

// Create persiste el encabezado de la recepción.
func (r *RecepcionRepo) Create(recepcion *entity.Recepcion) error {
	query := `
		INSERT INTO recepciones (id, compra_id, almacen_id, numero_documento, estado, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	numeroDoc := (*string)(nil)
	if recepcion.NumeroDocumento != "" {
		numeroDoc = &recepcion.NumeroDocumento
	}
	createdBy := (*string)(nil)
	if recepcion.CreatedBy != "" {
		createdBy = &recepcion.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		recepcion.ID, recepcion.CompraID, recepcion.AlmacenID, numeroDoc,
		recepcion.Estado, recepcion.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create recepcion: %w", err)
	}
	return nil
}

// GetByID carga la recepción con sus ítems. Nil si no existe.
func (r *RecepcionRepo) GetByID(id string) (*entity.Recepcion, error) {
	query := `
		SELECT id, compra_id, almacen_id, numero_documento, estado, created_at, created_by
		FROM recepciones WHERE id = $1`
	return r.cargar(query, id, "get recepcion")
}

// GetForUpdate carga la recepción bloqueando su fila, para serializar ítems
// nuevos y cierre.
func (r *RecepcionRepo) GetForUpdate(id string) (*entity.Recepcion, error) {
	query := `
		SELECT id, compra_id, almacen_id, numero_documento, estado, created_at, created_by
		FROM recepciones WHERE id = $1
		FOR UPDATE`
	return r.cargar(query, id, "get recepcion for update")
}

// UpdateEstado fija el estado de la recepción.
func (r *RecepcionRepo) UpdateEstado(id, estado string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE recepciones SET estado = $2 WHERE id = $1`, id, estado)
	if err != nil {
		return fmt.Errorf("update estado recepcion: %w", err)
	}
	return nil
}

// AgregarDetalle persiste un ítem de la recepción.
func (r *RecepcionRepo) AgregarDetalle(detalle *entity.RecepcionDetalle) error {
	query := `
		INSERT INTO recepcion_detalles (id, recepcion_id, compra_detalle_id, lote_id, cantidad)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		detalle.ID, detalle.RecepcionID, detalle.CompraDetalleID, detalle.LoteID, detalle.Cantidad,
	)
	if err != nil {
		return fmt.Errorf("create recepcion detalle: %w", err)
	}
	return nil
}

func (r *RecepcionRepo) cargar(query, id, op string) (*entity.Recepcion, error) {
	var rec entity.Recepcion
	var numeroDoc, createdBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.CompraID, &rec.AlmacenID, &numeroDoc, &rec.Estado,
		&rec.CreatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if numeroDoc != nil {
		rec.NumeroDocumento = *numeroDoc
	}
	if createdBy != nil {
		rec.CreatedBy = *createdBy
	}
	if err := r.cargarDetalles(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecepcionRepo) cargarDetalles(recepcion *entity.Recepcion) error {
	query := `
		SELECT id, recepcion_id, compra_detalle_id, lote_id, cantidad
		FROM recepcion_detalles WHERE recepcion_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, recepcion.ID)
	if err != nil {
		return fmt.Errorf("cargar detalles de recepcion: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.RecepcionDetalle
		if err := rows.Scan(&d.ID, &d.RecepcionID, &d.CompraDetalleID, &d.LoteID, &d.Cantidad); err != nil {
			return fmt.Errorf("scan recepcion detalle: %w", err)
		}
		recepcion.Detalles = append(recepcion.Detalles, d)
	}
	return rows.Err()
}
