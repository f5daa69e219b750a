package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Presentacion es la unidad comercial de un producto (SKU vendible).
// CostoOrigen y MonedaCostoID son la base del recálculo masivo de precios:
// precio destino = CostoOrigen × tasa vigente origen→destino, redondeado.
type Presentacion struct {
	ID            string
	SKU           string
	Nombre        string
	MonedaCostoID string
	CostoOrigen   decimal.Decimal
	CreatedAt     time.Time
}

// Almacen es una bodega física.
type Almacen struct {
	ID     string
	Codigo string
	Nombre string
}

// Moneda del directorio de monedas.
type Moneda struct {
	ID      string
	Codigo  string // ISO 4217, ej. "USD"
	Nombre  string
	Simbolo string
}
