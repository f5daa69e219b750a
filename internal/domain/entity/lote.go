package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lote representa una partida recibida de una presentación en un almacén.
// Inmutable una vez creado; nunca se elimina (los movimientos lo referencian).
type Lote struct {
	ID               string
	PresentacionID   string
	AlmacenID        string
	NumeroLote       string
	FechaFabricacion *time.Time
	FechaVencimiento *time.Time // nil = sin vencimiento
	CantidadInicial  decimal.Decimal
	CreatedAt        time.Time
}

// MismasFechas indica si las fechas de fabricación y vencimiento del lote
// coinciden con las dadas. Las fechas son parte de la identidad de la partida:
// un número de lote repetido con fechas distintas no es el mismo lote.
func (l *Lote) MismasFechas(fabricacion, vencimiento *time.Time) bool {
	return fechaIgual(l.FechaFabricacion, fabricacion) && fechaIgual(l.FechaVencimiento, vencimiento)
}

func fechaIgual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
