package repository

import "github.com/grupodelsur/distribuidora-api/internal/domain/entity"

// LoteRepository define el puerto de persistencia de lotes.
// Los lotes son inmutables: solo se crean y consultan.
type LoteRepository interface {
	Create(lote *entity.Lote) error
	GetByID(id string) (*entity.Lote, error)
	// FindByClave busca un lote por presentación + número de lote dentro de un
	// almacén. Devuelve nil si no existe. Las fechas completan la identidad de
	// la partida: el llamador las contrasta con Lote.MismasFechas antes de
	// reutilizar el lote encontrado.
	FindByClave(presentacionID, almacenID, numeroLote string) (*entity.Lote, error)
}
