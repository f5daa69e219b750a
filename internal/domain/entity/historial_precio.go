package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos estándar de cambio de precio.
const (
	MotivoManual          = "manual"
	MotivoRecalculoMasivo = "recalculo_masivo"
	MotivoReversion       = "reversion"
)

// HistorialPrecio es una ventana de vigencia del precio de una presentación.
// Los registros son inmutables: nunca se reescriben ni se eliminan.
// Invariantes por presentación: a lo sumo una fila con VigenteHasta nil (la
// vigente) y ventanas sin solaparse, ordenadas por inicio no decreciente.
type HistorialPrecio struct {
	ID             string
	PresentacionID string
	Precio         decimal.Decimal
	VigenteDesde   time.Time
	VigenteHasta   *time.Time // nil = precio vigente
	Motivo         string
	CreatedBy      string
	CreatedAt      time.Time
}

// Vigente indica si la fila es la ventana abierta.
func (h HistorialPrecio) Vigente() bool { return h.VigenteHasta == nil }
