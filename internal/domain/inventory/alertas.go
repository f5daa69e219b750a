package inventory

import (
	"sort"
	"time"

	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Severidades de alerta, de mayor a menor prioridad.
const (
	SeveridadUrgente     = "urgente"
	SeveridadAdvertencia = "advertencia"
	SeveridadProximo     = "proximo"
)

// Tipos de alerta.
const (
	AlertaVencimiento = "vencimiento"
	AlertaStockMinimo = "stock_minimo"
)

// Umbrales de proximidad de vencimiento, en días.
const (
	diasUrgente     = 7
	diasAdvertencia = 30
	diasProximo     = 90
)

// Alerta clasifica un lote por vencimiento próximo o stock bajo mínimo.
type Alerta struct {
	LoteID           string
	PresentacionID   string
	SKU              string
	Nombre           string
	AlmacenID        string
	NumeroLote       string
	Tipo             string
	Severidad        string
	FechaVencimiento *time.Time
	DiasParaVencer   int // negativo = ya vencido; solo tipo vencimiento
	Disponible       decimal.Decimal
	Reservada        decimal.Decimal
	StockMinimo      decimal.Decimal
}

// ResumenAlertas agrega conteos por severidad y por tipo.
type ResumenAlertas struct {
	Total        int
	PorSeveridad map[string]int
	PorTipo      map[string]int
}

// ClasificarAlertas evalúa cada posición y emite las alertas aplicables,
// ordenadas por prioridad: severidad, luego días para vencer, luego SKU.
// Un mismo lote puede emitir una alerta de vencimiento y otra de stock mínimo.
//
// Vencimiento (solo lotes con fecha y existencia > 0): vencido o <= 7 días es
// urgente, <= 30 advertencia, <= 90 próximo. Stock mínimo (umbral > 0 y
// disponible <= umbral): disponible cero es urgente, el resto advertencia.
func ClasificarAlertas(posiciones []*entity.PosicionLote, ahora time.Time) []Alerta {
	var alertas []Alerta
	for _, p := range posiciones {
		existencia := p.Disponible.Add(p.Reservada)

		if p.FechaVencimiento != nil && existencia.GreaterThan(decimal.Zero) {
			dias := diasHasta(ahora, *p.FechaVencimiento)
			var sev string
			switch {
			case dias <= diasUrgente:
				sev = SeveridadUrgente
			case dias <= diasAdvertencia:
				sev = SeveridadAdvertencia
			case dias <= diasProximo:
				sev = SeveridadProximo
			}
			if sev != "" {
				alertas = append(alertas, construirAlerta(p, AlertaVencimiento, sev, dias))
			}
		}

		if p.StockMinimo.GreaterThan(decimal.Zero) && p.Disponible.LessThanOrEqual(p.StockMinimo) {
			sev := SeveridadAdvertencia
			if p.Disponible.IsZero() {
				sev = SeveridadUrgente
			}
			alertas = append(alertas, construirAlerta(p, AlertaStockMinimo, sev, 0))
		}
	}

	sort.SliceStable(alertas, func(i, j int) bool {
		ri, rj := rangoSeveridad(alertas[i].Severidad), rangoSeveridad(alertas[j].Severidad)
		if ri != rj {
			return ri < rj
		}
		if alertas[i].Tipo == AlertaVencimiento && alertas[j].Tipo == AlertaVencimiento &&
			alertas[i].DiasParaVencer != alertas[j].DiasParaVencer {
			return alertas[i].DiasParaVencer < alertas[j].DiasParaVencer
		}
		return alertas[i].SKU < alertas[j].SKU
	})
	return alertas
}

// Resumir calcula los agregados del feed de alertas.
func Resumir(alertas []Alerta) ResumenAlertas {
	r := ResumenAlertas{
		Total:        len(alertas),
		PorSeveridad: map[string]int{},
		PorTipo:      map[string]int{},
	}
	for _, a := range alertas {
		r.PorSeveridad[a.Severidad]++
		r.PorTipo[a.Tipo]++
	}
	return r
}

func construirAlerta(p *entity.PosicionLote, tipo, severidad string, dias int) Alerta {
	return Alerta{
		LoteID:           p.LoteID,
		PresentacionID:   p.PresentacionID,
		SKU:              p.SKU,
		Nombre:           p.Nombre,
		AlmacenID:        p.AlmacenID,
		NumeroLote:       p.NumeroLote,
		Tipo:             tipo,
		Severidad:        severidad,
		FechaVencimiento: p.FechaVencimiento,
		DiasParaVencer:   dias,
		Disponible:       p.Disponible,
		Reservada:        p.Reservada,
		StockMinimo:      p.StockMinimo,
	}
}

func rangoSeveridad(s string) int {
	switch s {
	case SeveridadUrgente:
		return 0
	case SeveridadAdvertencia:
		return 1
	default:
		return 2
	}
}

func diasHasta(desde, hasta time.Time) int {
	d0 := time.Date(desde.Year(), desde.Month(), desde.Day(), 0, 0, 0, 0, time.UTC)
	d1 := time.Date(hasta.Year(), hasta.Month(), hasta.Day(), 0, 0, 0, 0, time.UTC)
	return int(d1.Sub(d0).Hours() / 24)
}
