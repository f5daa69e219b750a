package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/grupodelsur/distribuidora-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// errDuplicado envuelve la violación de unicidad con el error de dominio, para
// que la capa HTTP lo clasifique sin conocer códigos de Postgres.
func errDuplicado(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
}
