package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/domain"
)

// Candidato es un lote elegible para asignación: identidad, vencimiento y
// cantidad disponible. Lo producen los repositorios de posiciones.
type Candidato struct {
	LoteID           string
	FechaVencimiento *time.Time
	Disponible       decimal.Decimal
}

// Asignacion es la cantidad tomada de un lote dentro de un plan.
type Asignacion struct {
	LoteID   string
	Cantidad decimal.Decimal
}

// Plan es el resultado de la planificación FEFO. Faltante es la cantidad no
// cubierta cuando se permitió reservar sin stock suficiente.
type Plan struct {
	Asignaciones []Asignacion
	Faltante     decimal.Decimal
}

// Asignado devuelve la cantidad total cubierta por el plan.
func (p *Plan) Asignado() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Asignaciones {
		total = total.Add(a.Cantidad)
	}
	return total
}

// PlanificarFEFO arma un plan de asignación primero-en-vencer-primero-en-salir.
// Los candidatos con Disponible <= 0 se descartan; el resto se ordena por
// fecha de vencimiento ascendente (sin vencimiento al final) con desempate por
// LoteID ascendente para que el resultado sea determinista. Consume en orden
// hasta cubrir lo solicitado.
//
// Si los lotes se agotan y permitirFaltante es false, devuelve
// ErrInsufficientStock sin plan. Con permitirFaltante devuelve la asignación
// parcial y el faltante. Nunca muta estado: planificar y confirmar son pasos
// separados y el plan se revalida al confirmar.
func PlanificarFEFO(candidatos []Candidato, solicitado decimal.Decimal, permitirFaltante bool) (*Plan, error) {
	if !solicitado.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	elegibles := make([]Candidato, 0, len(candidatos))
	for _, c := range candidatos {
		if c.Disponible.GreaterThan(decimal.Zero) {
			elegibles = append(elegibles, c)
		}
	}
	sort.SliceStable(elegibles, func(i, j int) bool {
		vi, vj := elegibles[i].FechaVencimiento, elegibles[j].FechaVencimiento
		switch {
		case vi == nil && vj == nil:
			return elegibles[i].LoteID < elegibles[j].LoteID
		case vi == nil:
			return false
		case vj == nil:
			return true
		case !vi.Equal(*vj):
			return vi.Before(*vj)
		default:
			return elegibles[i].LoteID < elegibles[j].LoteID
		}
	})

	plan := &Plan{Faltante: decimal.Zero}
	restante := solicitado
	for _, c := range elegibles {
		if !restante.GreaterThan(decimal.Zero) {
			break
		}
		toma := decimal.Min(restante, c.Disponible)
		plan.Asignaciones = append(plan.Asignaciones, Asignacion{LoteID: c.LoteID, Cantidad: toma})
		restante = restante.Sub(toma)
	}

	if restante.GreaterThan(decimal.Zero) {
		if !permitirFaltante {
			return nil, domain.ErrInsufficientStock
		}
		plan.Faltante = restante
	}
	return plan, nil
}
