package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

var _ repository.LoteRepository = (*LoteRepo)(nil)

// LoteRepo implementación de LoteRepository sobre PostgreSQL (usable con pool o tx).
type LoteRepo struct {
	q Querier
}

// NewLoteRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLoteRepository(q Querier) *LoteRepo {
	return &LoteRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *LoteRepo) Create(lote *entity.Lote) error {
	if lote.ID == "" {
		lote.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lotes (id, presentacion_id, almacen_id, numero_lote, fecha_fabricacion, fecha_vencimiento, cantidad_inicial, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		lote.ID, lote.PresentacionID, lote.AlmacenID, lote.NumeroLote,
		lote.FechaFabricacion, lote.FechaVencimiento, lote.CantidadInicial, lote.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create lote: %w", errDuplicado(err))
		}
		return fmt.Errorf("create lote: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID. Nil si no existe.
func (r *LoteRepo) GetByID(id string) (*entity.Lote, error) {
	query := `
		SELECT id, presentacion_id, almacen_id, numero_lote, fecha_fabricacion, fecha_vencimiento, cantidad_inicial, created_at
		FROM lotes WHERE id = $1`
	return r.scanUno(r.q.QueryRow(context.Background(), query, id), "get lote")
}

// FindByClave busca un lote por su clave natural: presentación + número de
// lote dentro de un almacén. Nil si no existe.
func (r *LoteRepo) FindByClave(presentacionID, almacenID, numeroLote string) (*entity.Lote, error) {
	query := `
		SELECT id, presentacion_id, almacen_id, numero_lote, fecha_fabricacion, fecha_vencimiento, cantidad_inicial, created_at
		FROM lotes WHERE presentacion_id = $1 AND almacen_id = $2 AND numero_lote = $3`
	return r.scanUno(r.q.QueryRow(context.Background(), query, presentacionID, almacenID, numeroLote), "find lote")
}

func (r *LoteRepo) scanUno(row pgx.Row, op string) (*entity.Lote, error) {
	var l entity.Lote
	err := row.Scan(
		&l.ID, &l.PresentacionID, &l.AlmacenID, &l.NumeroLote,
		&l.FechaFabricacion, &l.FechaVencimiento, &l.CantidadInicial, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}
