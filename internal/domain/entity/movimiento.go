package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovimientoIngreso       = "ingreso"
	MovimientoSalida        = "salida"
	MovimientoTransferencia = "transferencia"
	MovimientoAjuste        = "ajuste"
	MovimientoReserva       = "reserva"
	MovimientoLiberacion    = "liberacion"
)

// Módulos que originan movimientos (campo ModuloOrigen).
const (
	ModuloInventario = "inventario"
	ModuloCompras    = "compras"
	ModuloReservas   = "reservas"
	ModuloVentas     = "ventas"
)

// Movimiento es una entrada append-only del log de inventario, fuente de
// verdad de todos los saldos.
//
// Convención de signo de Cantidad:
//   - ingreso: positivo, suma a disponible.
//   - salida: negativo; resta de disponible, salvo que ModuloOrigen sea
//     "reservas", en cuyo caso consume saldo reservado (aplicación de reserva).
//   - transferencia: dos filas con el mismo ReferenciaID, negativa en el
//     almacén origen y positiva en el destino.
//   - ajuste: con signo, afecta disponible.
//   - reserva: positivo, mueve esa cantidad de disponible a reservada.
//   - liberacion: positivo, mueve esa cantidad de reservada a disponible.
type Movimiento struct {
	ID               string
	LoteID           string
	AlmacenID        string
	AlmacenDestinoID *string // solo transferencias
	Tipo             string
	Cantidad         decimal.Decimal
	ModuloOrigen     string
	ReferenciaID     string
	Nota             string
	Fecha            time.Time
	CreatedAt        time.Time
	CreatedBy        string
}
