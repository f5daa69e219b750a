package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.TipoCambioRepository = (*TipoCambioRepo)(nil)

// TipoCambioRepo implementación del almacén de tasas sobre PostgreSQL (usable
// con pool o tx). Append-only: solo INSERT y SELECT.
type TipoCambioRepo struct {
	q Querier
}

// NewTipoCambioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTipoCambioRepository(q Querier) *TipoCambioRepo {
	return &TipoCambioRepo{q: q}
}

// Create persiste una tasa nueva. Un duplicado exacto de par y fecha de
// vigencia viola el índice único y se devuelve como ErrDuplicate.
func (r *TipoCambioRepo) Create(tc *entity.TipoCambio) error {
	if tc.ID == "" {
		tc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO tipos_cambio (id, moneda_origen_id, moneda_destino_id, fecha_vigencia, tasa, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	createdBy := (*string)(nil)
	if tc.CreatedBy != "" {
		createdBy = &tc.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		tc.ID, tc.MonedaOrigenID, tc.MonedaDestinoID, tc.FechaVigencia, tc.Tasa,
		tc.CreatedAt, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create tipo cambio: %w", errDuplicado(err))
		}
		return fmt.Errorf("create tipo cambio: %w", err)
	}
	return nil
}

// ExisteEnFecha indica si el par ya tiene una tasa con esa fecha de vigencia.
func (r *TipoCambioRepo) ExisteEnFecha(origenID, destinoID string, fecha time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tipos_cambio
			WHERE moneda_origen_id = $1 AND moneda_destino_id = $2 AND fecha_vigencia::date = $3::date
		)`
	var existe bool
	err := r.q.QueryRow(context.Background(), query, origenID, destinoID, fecha).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("existe tipo cambio: %w", err)
	}
	return existe, nil
}

// Vigente devuelve la tasa con mayor fecha de vigencia <= fecha para el par.
// Nil si aún no hay ninguna registrada a esa fecha.
func (r *TipoCambioRepo) Vigente(origenID, destinoID string, fecha time.Time) (*entity.TipoCambio, error) {
	query := `
		SELECT id, moneda_origen_id, moneda_destino_id, fecha_vigencia, tasa, created_at, created_by
		FROM tipos_cambio
		WHERE moneda_origen_id = $1 AND moneda_destino_id = $2 AND fecha_vigencia <= $3
		ORDER BY fecha_vigencia DESC, created_at DESC
		LIMIT 1`
	var tc entity.TipoCambio
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, origenID, destinoID, fecha).Scan(
		&tc.ID, &tc.MonedaOrigenID, &tc.MonedaDestinoID, &tc.FechaVigencia, &tc.Tasa,
		&tc.CreatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("tipo cambio vigente: %w", err)
	}
	if createdBy != nil {
		tc.CreatedBy = *createdBy
	}
	return &tc, nil
}

// Historial lista tasas por fecha de vigencia descendente. Origen y destino
// vacíos listan todos los pares.
func (r *TipoCambioRepo) Historial(origenID, destinoID string, limit, offset int) ([]*entity.TipoCambio, int, error) {
	where := ""
	args := []any{}
	pos := 1
	if origenID != "" {
		where += fmt.Sprintf(" AND moneda_origen_id = $%d", pos)
		args = append(args, origenID)
		pos++
	}
	if destinoID != "" {
		where += fmt.Sprintf(" AND moneda_destino_id = $%d", pos)
		args = append(args, destinoID)
		pos++
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM tipos_cambio WHERE 1=1` + where
	if err := r.q.QueryRow(context.Background(), countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tipos cambio: %w", err)
	}

	query := `
		SELECT id, moneda_origen_id, moneda_destino_id, fecha_vigencia, tasa, created_at, created_by
		FROM tipos_cambio WHERE 1=1` + where +
		fmt.Sprintf(" ORDER BY fecha_vigencia DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("historial tipos cambio: %w", err)
	}
	defer rows.Close()
	var list []*entity.TipoCambio
	for rows.Next() {
		var tc entity.TipoCambio
		var createdBy *string
		if err := rows.Scan(&tc.ID, &tc.MonedaOrigenID, &tc.MonedaDestinoID,
			&tc.FechaVigencia, &tc.Tasa, &tc.CreatedAt, &createdBy); err != nil {
			return nil, 0, fmt.Errorf("scan tipo cambio: %w", err)
		}
		if createdBy != nil {
			tc.CreatedBy = *createdBy
		}
		list = append(list, &tc)
	}
	return list, total, rows.Err()
}
