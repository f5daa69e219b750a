package pricing

import (
	"github.com/shopspring/decimal"
)

// Modos de redondeo del precio calculado.
const (
	RedondeoNinguno   = "ninguno"
	RedondeoEntero    = "entero"
	RedondeoMultiplo  = "multiplo"
	RedondeoDecimales = "decimales"
)

// PoliticaRedondeo gobierna el redondeo final de todo precio calculado, antes
// de compararlo o escribirlo. Configuración única de proceso.
type PoliticaRedondeo struct {
	Modo      string
	Multiplo  decimal.Decimal // modo "multiplo": redondea al múltiplo más cercano
	Decimales int32           // modo "decimales": cantidad fija de decimales
}

// Aplicar redondea el valor según el modo. Con modo desconocido o parámetros
// inválidos (múltiplo <= 0) devuelve el valor sin tocar.
func (p PoliticaRedondeo) Aplicar(valor decimal.Decimal) decimal.Decimal {
	switch p.Modo {
	case RedondeoEntero:
		return valor.Round(0)
	case RedondeoMultiplo:
		if !p.Multiplo.GreaterThan(decimal.Zero) {
			return valor
		}
		return valor.Div(p.Multiplo).Round(0).Mul(p.Multiplo)
	case RedondeoDecimales:
		if p.Decimales < 0 {
			return valor
		}
		return valor.Round(p.Decimales)
	default:
		return valor
	}
}
