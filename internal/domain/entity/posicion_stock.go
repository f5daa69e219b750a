package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PosicionStock es el saldo actual de un lote: cantidad disponible y reservada.
// Derivada del log de movimientos; debe coincidir siempre con su replay completo.
// Invariante: Disponible >= 0 y Reservada >= 0 (el faltante permitido de una
// reserva se registra aparte, nunca como saldo negativo).
type PosicionStock struct {
	LoteID      string
	AlmacenID   string
	Disponible  decimal.Decimal
	Reservada   decimal.Decimal
	StockMinimo decimal.Decimal
	UpdatedAt   time.Time
}

// PosicionLote es la proyección de lectura de una posición con los datos del
// lote y la presentación, usada por los listados y el feed de alertas.
type PosicionLote struct {
	LoteID           string
	PresentacionID   string
	SKU              string
	Nombre           string
	AlmacenID        string
	NumeroLote       string
	FechaVencimiento *time.Time
	Disponible       decimal.Decimal
	Reservada        decimal.Decimal
	StockMinimo      decimal.Decimal
}
