package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoCambio es una tasa de conversión entre dos monedas, versionada por
// fecha de vigencia. Append-only: la vigente a una fecha D es la fila con
// mayor FechaVigencia <= D para el par.
type TipoCambio struct {
	ID              string
	MonedaOrigenID  string
	MonedaDestinoID string
	FechaVigencia   time.Time
	Tasa            decimal.Decimal // > 0
	CreatedAt       time.Time
	CreatedBy       string
}
