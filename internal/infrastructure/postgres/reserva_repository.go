package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.ReservaRepository = (*ReservaRepo)(nil)

// ReservaRepo implementación de ReservaRepository sobre PostgreSQL (usable con pool o tx).
type ReservaRepo struct {
	q Querier
}

// NewReservaRepository construye el adaptador de reservas. Pasar pool o tx (Querier).
func NewReservaRepository(q Querier) *ReservaRepo {
	return &ReservaRepo{q: q}
}

const columnasReserva = `id, origen_tipo, origen_id, presentacion_id, almacen_id,
	cantidad_solicitada, cantidad_liberada, cantidad_aplicada, cantidad_pendiente,
	permitir_sin_stock, estado, created_at, updated_at, created_by`

// Create persiste la reserva con su desglose por lote.
func (r *ReservaRepo) Create(reserva *entity.Reserva) error {
	query := `
		INSERT INTO reservas (` + columnasReserva + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	createdBy := (*string)(nil)
	if reserva.CreatedBy != "" {
		createdBy = &reserva.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		reserva.ID, reserva.OrigenTipo, reserva.OrigenID, reserva.PresentacionID, reserva.AlmacenID,
		reserva.CantidadSolicitada, reserva.CantidadLiberada, reserva.CantidadAplicada, reserva.CantidadPendiente,
		reserva.PermitirSinStock, reserva.Estado, reserva.CreatedAt, reserva.UpdatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create reserva: %w", err)
	}
	for i := range reserva.Lotes {
		if err := r.insertLote(&reserva.Lotes[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID carga la reserva con su desglose. Nil si no existe.
func (r *ReservaRepo) GetByID(id string) (*entity.Reserva, error) {
	query := `SELECT ` + columnasReserva + ` FROM reservas WHERE id = $1`
	return r.cargar(query, id, "get reserva")
}

// GetForUpdate carga la reserva bloqueando su fila, para serializar
// liberaciones y aplicaciones concurrentes sobre la misma reserva.
func (r *ReservaRepo) GetForUpdate(id string) (*entity.Reserva, error) {
	query := `SELECT ` + columnasReserva + ` FROM reservas WHERE id = $1 FOR UPDATE`
	return r.cargar(query, id, "get reserva for update")
}

// Update persiste el encabezado y los restantes por lote.
func (r *ReservaRepo) Update(reserva *entity.Reserva) error {
	query := `
		UPDATE reservas
		SET cantidad_liberada = $2, cantidad_aplicada = $3, cantidad_pendiente = $4,
		    estado = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		reserva.ID, reserva.CantidadLiberada, reserva.CantidadAplicada, reserva.CantidadPendiente,
		reserva.Estado, reserva.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reserva: %w", err)
	}
	for _, l := range reserva.Lotes {
		_, err := r.q.Exec(context.Background(),
			`UPDATE reserva_lotes SET cantidad_restante = $2 WHERE id = $1`,
			l.ID, l.CantidadRestante,
		)
		if err != nil {
			return fmt.Errorf("update reserva lote: %w", err)
		}
	}
	return nil
}

// GetByOrigen resuelve la reserva más reciente de un documento dueño.
// Nil si el documento no tiene reservas.
func (r *ReservaRepo) GetByOrigen(origenTipo, origenID string) (*entity.Reserva, error) {
	query := `
		SELECT ` + columnasReserva + `
		FROM reservas WHERE origen_tipo = $1 AND origen_id = $2
		ORDER BY created_at DESC LIMIT 1`
	row := r.q.QueryRow(context.Background(), query, origenTipo, origenID)
	reserva, err := r.scanReserva(row, "get reserva por origen")
	if err != nil || reserva == nil {
		return reserva, err
	}
	if err := r.cargarLotes(reserva); err != nil {
		return nil, err
	}
	return reserva, nil
}

func (r *ReservaRepo) cargar(query, id, op string) (*entity.Reserva, error) {
	reserva, err := r.scanReserva(r.q.QueryRow(context.Background(), query, id), op)
	if err != nil || reserva == nil {
		return reserva, err
	}
	if err := r.cargarLotes(reserva); err != nil {
		return nil, err
	}
	return reserva, nil
}

func (r *ReservaRepo) scanReserva(row pgx.Row, op string) (*entity.Reserva, error) {
	var res entity.Reserva
	var createdBy *string
	err := row.Scan(
		&res.ID, &res.OrigenTipo, &res.OrigenID, &res.PresentacionID, &res.AlmacenID,
		&res.CantidadSolicitada, &res.CantidadLiberada, &res.CantidadAplicada, &res.CantidadPendiente,
		&res.PermitirSinStock, &res.Estado, &res.CreatedAt, &res.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if createdBy != nil {
		res.CreatedBy = *createdBy
	}
	return &res, nil
}

// cargarLotes carga el desglose en el orden de asignación FEFO original.
func (r *ReservaRepo) cargarLotes(reserva *entity.Reserva) error {
	query := `
		SELECT id, reserva_id, lote_id, cantidad, cantidad_restante
		FROM reserva_lotes WHERE reserva_id = $1
		ORDER BY orden ASC`
	rows, err := r.q.Query(context.Background(), query, reserva.ID)
	if err != nil {
		return fmt.Errorf("cargar lotes de reserva: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.ReservaLote
		if err := rows.Scan(&l.ID, &l.ReservaID, &l.LoteID, &l.Cantidad, &l.CantidadRestante); err != nil {
			return fmt.Errorf("scan reserva lote: %w", err)
		}
		reserva.Lotes = append(reserva.Lotes, l)
	}
	return rows.Err()
}

func (r *ReservaRepo) insertLote(l *entity.ReservaLote) error {
	// orden es un serial: preserva el orden de asignación del plan.
	query := `
		INSERT INTO reserva_lotes (id, reserva_id, lote_id, cantidad, cantidad_restante)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, l.ID, l.ReservaID, l.LoteID, l.Cantidad, l.CantidadRestante)
	if err != nil {
		return fmt.Errorf("create reserva lote: %w", err)
	}
	return nil
}
