package pricing

import (
	"sync/atomic"

	"github.com/shopspring/decimal"

	domainpricing "github.com/grupodelsur/distribuidora-api/internal/domain/pricing"
	"github.com/grupodelsur/distribuidora-api/pkg/config"
)

// PoliticaHolder mantiene la política de redondeo vigente del proceso.
// Cargar puede llamarse en caliente al recargar configuración; los recálculos
// en curso siguen con la política con la que arrancaron.
type PoliticaHolder struct {
	actual atomic.Value
}

// NewPoliticaHolder construye el holder con la política inicial.
func NewPoliticaHolder(p domainpricing.PoliticaRedondeo) *PoliticaHolder {
	h := &PoliticaHolder{}
	h.Cargar(p)
	return h
}

// Cargar reemplaza la política vigente.
func (h *PoliticaHolder) Cargar(p domainpricing.PoliticaRedondeo) {
	h.actual.Store(p)
}

// Actual devuelve la política vigente.
func (h *PoliticaHolder) Actual() domainpricing.PoliticaRedondeo {
	return h.actual.Load().(domainpricing.PoliticaRedondeo)
}

// PoliticaDesdeConfig traduce el bloque de configuración a la política de
// dominio. Un múltiplo ilegible deja el modo sin efecto.
func PoliticaDesdeConfig(cfg config.RedondeoConfig) domainpricing.PoliticaRedondeo {
	multiplo := decimal.Zero
	if cfg.Multiplo != "" {
		if v, err := decimal.NewFromString(cfg.Multiplo); err == nil {
			multiplo = v
		}
	}
	return domainpricing.PoliticaRedondeo{
		Modo:      cfg.Modo,
		Multiplo:  multiplo,
		Decimales: int32(cfg.Decimales),
	}
}
