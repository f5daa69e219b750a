package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	CompraBorrador             = "borrador"
	CompraAprobada             = "aprobada"
	CompraParcialmenteRecibida = "parcialmente_recibida"
	CompraCerrada              = "cerrada"
	CompraAnulada              = "anulada"
)

// Compra es una orden de compra a proveedor.
// Las líneas de detalle solo son mutables en estado borrador.
type Compra struct {
	ID          string
	ProveedorID string
	MonedaID    string
	TipoCambio  decimal.Decimal // tasa usada al registrar la compra
	Estado      string
	Detalles    []CompraDetalle
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
}

// CompraDetalle es una línea de la orden: presentación, cantidad pedida y
// costo unitario. CantidadRecibida acumula las recepciones contra la línea
// y nunca supera Cantidad.
type CompraDetalle struct {
	ID                  string
	CompraID            string
	PresentacionID      string
	Cantidad            decimal.Decimal
	CostoUnitario       decimal.Decimal
	FechaEstimadaLlegada *time.Time
	CantidadRecibida    decimal.Decimal
}

// RecibidaCompleta indica si la línea ya recibió toda la cantidad pedida.
func (d CompraDetalle) RecibidaCompleta() bool {
	return d.CantidadRecibida.GreaterThanOrEqual(d.Cantidad)
}
