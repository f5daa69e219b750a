package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/inventory"
)

func fecha(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Escenario base: lote X vence antes que Y; pedir 15 debe tomar todo X y el
// resto de Y, sin importar el orden de los candidatos.
func TestPlanificarFEFO_ConsumePrimeroElQueVencePrimero(t *testing.T) {
	candidatos := []inventory.Candidato{
		{LoteID: "Y", FechaVencimiento: fecha("2025-02-01"), Disponible: qty("10")},
		{LoteID: "X", FechaVencimiento: fecha("2025-01-01"), Disponible: qty("10")},
	}

	plan, err := inventory.PlanificarFEFO(candidatos, qty("15"), false)
	require.NoError(t, err)

	require.Len(t, plan.Asignaciones, 2)
	assert.Equal(t, "X", plan.Asignaciones[0].LoteID)
	assert.True(t, plan.Asignaciones[0].Cantidad.Equal(qty("10")))
	assert.Equal(t, "Y", plan.Asignaciones[1].LoteID)
	assert.True(t, plan.Asignaciones[1].Cantidad.Equal(qty("5")))
	assert.True(t, plan.Faltante.IsZero())
	assert.True(t, plan.Asignado().Equal(qty("15")))
}

// Sin faltante permitido y con stock total insuficiente: error y ningún plan.
func TestPlanificarFEFO_StockInsuficienteSinFaltantePermitido(t *testing.T) {
	candidatos := []inventory.Candidato{
		{LoteID: "X", FechaVencimiento: fecha("2025-01-01"), Disponible: qty("10")},
		{LoteID: "Y", FechaVencimiento: fecha("2025-02-01"), Disponible: qty("10")},
	}

	plan, err := inventory.PlanificarFEFO(candidatos, qty("25"), false)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, plan)
}

// Con faltante permitido devuelve la asignación parcial y el remanente.
func TestPlanificarFEFO_FaltantePermitidoDevuelveRemanente(t *testing.T) {
	candidatos := []inventory.Candidato{
		{LoteID: "X", FechaVencimiento: fecha("2025-01-01"), Disponible: qty("10")},
		{LoteID: "Y", FechaVencimiento: fecha("2025-02-01"), Disponible: qty("10")},
	}

	plan, err := inventory.PlanificarFEFO(candidatos, qty("25"), true)
	require.NoError(t, err)
	assert.True(t, plan.Asignado().Equal(qty("20")))
	assert.True(t, plan.Faltante.Equal(qty("5")))
}

// Lotes sin vencimiento van al final; empate de fechas desempata por ID.
func TestPlanificarFEFO_OrdenDeterminista(t *testing.T) {
	candidatos := []inventory.Candidato{
		{LoteID: "C", FechaVencimiento: nil, Disponible: qty("5")},
		{LoteID: "B", FechaVencimiento: fecha("2025-03-01"), Disponible: qty("5")},
		{LoteID: "A", FechaVencimiento: fecha("2025-03-01"), Disponible: qty("5")},
	}

	plan, err := inventory.PlanificarFEFO(candidatos, qty("12"), false)
	require.NoError(t, err)
	require.Len(t, plan.Asignaciones, 3)
	assert.Equal(t, "A", plan.Asignaciones[0].LoteID)
	assert.Equal(t, "B", plan.Asignaciones[1].LoteID)
	assert.Equal(t, "C", plan.Asignaciones[2].LoteID)
	assert.True(t, plan.Asignaciones[2].Cantidad.Equal(qty("2")))
}

// Los candidatos sin disponible se descartan y no aparecen en el plan.
func TestPlanificarFEFO_IgnoraLotesSinDisponible(t *testing.T) {
	candidatos := []inventory.Candidato{
		{LoteID: "X", FechaVencimiento: fecha("2025-01-01"), Disponible: decimal.Zero},
		{LoteID: "Y", FechaVencimiento: fecha("2025-02-01"), Disponible: qty("8")},
	}

	plan, err := inventory.PlanificarFEFO(candidatos, qty("5"), false)
	require.NoError(t, err)
	require.Len(t, plan.Asignaciones, 1)
	assert.Equal(t, "Y", plan.Asignaciones[0].LoteID)
}

// Cantidad solicitada inválida.
func TestPlanificarFEFO_CantidadCeroEsInvalida(t *testing.T) {
	_, err := inventory.PlanificarFEFO(nil, decimal.Zero, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
