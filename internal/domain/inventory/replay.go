package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
)

// Saldo es el resultado de reconstruir una posición desde el log.
type Saldo struct {
	Disponible decimal.Decimal
	Reservada  decimal.Decimal
}

// ReconstruirPosicion reproduce los movimientos de un lote desde cero y
// devuelve el saldo resultante. Es la definición canónica de la posición:
// la fila materializada en posiciones_stock debe coincidir exactamente con
// este replay (aritmética decimal exacta, sin deriva).
func ReconstruirPosicion(movimientos []*entity.Movimiento) Saldo {
	s := Saldo{Disponible: decimal.Zero, Reservada: decimal.Zero}
	for _, m := range movimientos {
		switch m.Tipo {
		case entity.MovimientoIngreso, entity.MovimientoAjuste, entity.MovimientoTransferencia:
			s.Disponible = s.Disponible.Add(m.Cantidad)
		case entity.MovimientoSalida:
			if m.ModuloOrigen == entity.ModuloReservas {
				// Aplicación de reserva: consume saldo reservado.
				s.Reservada = s.Reservada.Add(m.Cantidad)
			} else {
				s.Disponible = s.Disponible.Add(m.Cantidad)
			}
		case entity.MovimientoReserva:
			s.Disponible = s.Disponible.Sub(m.Cantidad)
			s.Reservada = s.Reservada.Add(m.Cantidad)
		case entity.MovimientoLiberacion:
			s.Reservada = s.Reservada.Sub(m.Cantidad)
			s.Disponible = s.Disponible.Add(m.Cantidad)
		}
	}
	return s
}
