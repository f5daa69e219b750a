package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva.
const (
	ReservaActiva               = "activa"
	ReservaParcialmenteLiberada = "parcialmente_liberada"
	ReservaLiberada             = "liberada"
	ReservaAplicada             = "aplicada"
)

// Tipos de documento dueño de una reserva.
const (
	OrigenAnticipo = "anticipo"
	OrigenVenta    = "venta"
)

// Reserva es un apartado de cantidades sobre lotes concretos, pendiente de
// aplicarse a un documento posterior o de liberarse de vuelta a disponible.
// Invariante del ciclo de vida: CantidadLiberada + CantidadAplicada nunca
// supera CantidadSolicitada.
type Reserva struct {
	ID                 string
	OrigenTipo         string // anticipo | venta
	OrigenID           string
	PresentacionID     string
	AlmacenID          string
	CantidadSolicitada decimal.Decimal
	CantidadLiberada   decimal.Decimal
	CantidadAplicada   decimal.Decimal
	// CantidadPendiente es el faltante aceptado cuando la reserva permitió
	// reservar sin stock suficiente (backorder); nunca se refleja como saldo
	// negativo en las posiciones.
	CantidadPendiente decimal.Decimal
	PermitirSinStock  bool
	Estado            string
	Lotes             []ReservaLote
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CreatedBy         string
}

// ReservaLote es la asignación de una reserva sobre un lote concreto.
// Cantidad es lo asignado originalmente; CantidadRestante lo que sigue
// reservado sobre ese lote (baja con liberaciones y aplicaciones).
type ReservaLote struct {
	ID               string
	ReservaID        string
	LoteID           string
	Cantidad         decimal.Decimal
	CantidadRestante decimal.Decimal
}

// ReservadoRestante devuelve la cantidad que sigue reservada (suma de los
// restantes por lote).
func (r *Reserva) ReservadoRestante() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lotes {
		total = total.Add(l.CantidadRestante)
	}
	return total
}
