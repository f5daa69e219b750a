package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una recepción de mercadería.
const (
	RecepcionAbierta = "abierta"
	RecepcionCerrada = "cerrada"
)

// Recepcion es un ingreso de mercadería contra una orden de compra.
// Cada ítem crea o incrementa un Lote y registra un movimiento de ingreso.
type Recepcion struct {
	ID              string
	CompraID        string
	AlmacenID       string
	NumeroDocumento string
	Estado          string
	Detalles        []RecepcionDetalle
	CreatedAt       time.Time
	CreatedBy       string
}

// RecepcionDetalle vincula lo recibido con su línea de compra de origen para
// acotar el acumulado recibido contra lo pedido.
type RecepcionDetalle struct {
	ID              string
	RecepcionID     string
	CompraDetalleID string
	LoteID          string
	Cantidad        decimal.Decimal
}
