package pricing_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupodelsur/distribuidora-api/internal/application/pricing"
	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	domainpricing "github.com/grupodelsur/distribuidora-api/internal/domain/pricing"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type histRepoFake struct {
	filas []*entity.HistorialPrecio
}

func (f *histRepoFake) Create(h *entity.HistorialPrecio) error {
	c := *h
	f.filas = append(f.filas, &c)
	return nil
}

func (f *histRepoFake) GetByID(id string) (*entity.HistorialPrecio, error) {
	for _, h := range f.filas {
		if h.ID == id {
			c := *h
			return &c, nil
		}
	}
	return nil, nil
}

func (f *histRepoFake) GetVigente(presentacionID string) (*entity.HistorialPrecio, error) {
	for _, h := range f.filas {
		if h.PresentacionID == presentacionID && h.VigenteHasta == nil {
			c := *h
			return &c, nil
		}
	}
	return nil, nil
}

func (f *histRepoFake) GetVigenteForUpdate(presentacionID string) (*entity.HistorialPrecio, error) {
	return f.GetVigente(presentacionID)
}

func (f *histRepoFake) CerrarVigente(id string, hasta time.Time) error {
	for _, h := range f.filas {
		if h.ID == id {
			t := hasta
			h.VigenteHasta = &t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *histRepoFake) Buscar(filtro repository.FiltroHistorialPrecios, limit, offset int) ([]*entity.HistorialPrecio, int, error) {
	var filtradas []*entity.HistorialPrecio
	for _, h := range f.filas {
		if filtro.Motivo != "" && !strings.Contains(h.Motivo, filtro.Motivo) {
			continue
		}
		if filtro.Usuario != "" && !strings.Contains(h.CreatedBy, filtro.Usuario) {
			continue
		}
		filtradas = append(filtradas, h)
	}
	sort.Slice(filtradas, func(i, j int) bool {
		return filtradas[i].VigenteDesde.After(filtradas[j].VigenteDesde)
	})
	total := len(filtradas)
	if offset > total {
		offset = total
	}
	fin := offset + limit
	if fin > total {
		fin = total
	}
	return filtradas[offset:fin], total, nil
}

type presRepoFake struct {
	presentaciones map[string]*entity.Presentacion
}

func (f *presRepoFake) GetByID(id string) (*entity.Presentacion, error) {
	return f.presentaciones[id], nil
}

func (f *presRepoFake) ListByMonedaCosto(monedaID string) ([]*entity.Presentacion, error) {
	var out []*entity.Presentacion
	for _, p := range f.presentaciones {
		if p.MonedaCostoID == monedaID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

type tcRepoFake struct {
	tasas []*entity.TipoCambio
}

func (f *tcRepoFake) Create(tc *entity.TipoCambio) error {
	f.tasas = append(f.tasas, tc)
	return nil
}

func (f *tcRepoFake) ExisteEnFecha(origenID, destinoID string, fecha time.Time) (bool, error) {
	for _, tc := range f.tasas {
		if tc.MonedaOrigenID == origenID && tc.MonedaDestinoID == destinoID &&
			tc.FechaVigencia.Format("2006-01-02") == fecha.Format("2006-01-02") {
			return true, nil
		}
	}
	return false, nil
}

func (f *tcRepoFake) Vigente(origenID, destinoID string, fecha time.Time) (*entity.TipoCambio, error) {
	var mejor *entity.TipoCambio
	for _, tc := range f.tasas {
		if tc.MonedaOrigenID != origenID || tc.MonedaDestinoID != destinoID {
			continue
		}
		if tc.FechaVigencia.After(fecha) {
			continue
		}
		if mejor == nil || tc.FechaVigencia.After(mejor.FechaVigencia) {
			mejor = tc
		}
	}
	return mejor, nil
}

func (f *tcRepoFake) Historial(origenID, destinoID string, limit, offset int) ([]*entity.TipoCambio, int, error) {
	return nil, 0, nil
}

// txRunnerFake simula la atomicidad: ante error restaura el historial previo.
// alAbrirTx, si está seteado, corre antes del cuerpo y simula escrituras
// concurrentes que ganaron el lock entre la proyección y el commit.
type txRunnerFake struct {
	hist      *histRepoFake
	alAbrirTx func()
}

func (t *txRunnerFake) RunPrecios(_ context.Context, fn func(repository.HistorialPrecioRepository) error) error {
	antes := make([]*entity.HistorialPrecio, len(t.hist.filas))
	for i, h := range t.hist.filas {
		c := *h
		antes[i] = &c
	}
	if t.alAbrirTx != nil {
		t.alAbrirTx()
		t.alAbrirTx = nil
	}
	if err := fn(t.hist); err != nil {
		t.hist.filas = antes
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fecha(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const (
	presA     = "pres-a"
	presB     = "pres-b"
	presC     = "pres-c"
	monedaUSD = "mon-usd"
	monedaGTQ = "mon-gtq"
)

var ahora = fecha("2025-06-01")

type banco struct {
	hist   *histRepoFake
	tc     *tcRepoFake
	runner *txRunnerFake
	uc     *pricing.UseCase
}

func nuevoBanco(politica domainpricing.PoliticaRedondeo) *banco {
	hist := &histRepoFake{}
	tc := &tcRepoFake{}
	pres := &presRepoFake{presentaciones: map[string]*entity.Presentacion{
		presA: {ID: presA, SKU: "SKU-A", Nombre: "Aceite 1L", MonedaCostoID: monedaUSD, CostoOrigen: qty("2.50")},
		presB: {ID: presB, SKU: "SKU-B", Nombre: "Azúcar 1kg", MonedaCostoID: monedaUSD, CostoOrigen: qty("1.10")},
		presC: {ID: presC, SKU: "SKU-C", Nombre: "Café 500g", MonedaCostoID: monedaUSD, CostoOrigen: qty("4.00")},
	}}
	runner := &txRunnerFake{hist: hist}
	uc := pricing.NewUseCase(
		runner,
		hist,
		pres,
		tc,
		pricing.NewPoliticaHolder(politica),
		func() time.Time { return ahora },
	)
	return &banco{hist: hist, tc: tc, runner: runner, uc: uc}
}

func sinRedondeo() domainpricing.PoliticaRedondeo {
	return domainpricing.PoliticaRedondeo{Modo: domainpricing.RedondeoNinguno}
}

func (b *banco) conPrecioVigente(presID, precio, desde string) *entity.HistorialPrecio {
	h := &entity.HistorialPrecio{
		ID:             "hist-" + presID + "-" + desde,
		PresentacionID: presID,
		Precio:         qty(precio),
		VigenteDesde:   fecha(desde),
		Motivo:         entity.MotivoManual,
		CreatedBy:      "u-0",
	}
	b.hist.filas = append(b.hist.filas, h)
	return h
}

func (b *banco) conTasa(tasa, desde string) {
	b.tc.tasas = append(b.tc.tasas, &entity.TipoCambio{
		ID:              "tc-" + desde,
		MonedaOrigenID:  monedaUSD,
		MonedaDestinoID: monedaGTQ,
		FechaVigencia:   fecha(desde),
		Tasa:            qty(tasa),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Cambio manual
// ──────────────────────────────────────────────────────────────────────────────

// Un cambio manual sobre un precio vigente deja dos filas: la vieja cerrada
// exactamente donde arranca la nueva, y la nueva abierta.
func TestCambioManual_CierraLaVentanaAnterior(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	viejo := b.conPrecioVigente(presA, "100", "2025-01-01")

	nuevo, err := b.uc.CambioManual(context.Background(), pricing.CambioManualInput{
		PresentacionID: presA,
		Precio:         qty("150"),
		UserID:         "u-1",
	})
	require.NoError(t, err)

	require.Len(t, b.hist.filas, 2)
	cerrado, err := b.hist.GetByID(viejo.ID)
	require.NoError(t, err)
	require.NotNil(t, cerrado.VigenteHasta)
	assert.True(t, cerrado.VigenteHasta.Equal(nuevo.VigenteDesde))

	vigente, err := b.hist.GetVigente(presA)
	require.NoError(t, err)
	assert.Equal(t, nuevo.ID, vigente.ID)
	assert.True(t, vigente.Precio.Equal(qty("150")))
	assert.Equal(t, entity.MotivoManual, vigente.Motivo)
}

func TestCambioManual_PrimerPrecioDeLaPresentacion(t *testing.T) {
	b := nuevoBanco(sinRedondeo())

	nuevo, err := b.uc.CambioManual(context.Background(), pricing.CambioManualInput{
		PresentacionID: presA,
		Precio:         qty("99.90"),
		UserID:         "u-1",
	})
	require.NoError(t, err)
	require.Len(t, b.hist.filas, 1)
	assert.Nil(t, nuevo.VigenteHasta)
}

// Fecha efectiva anterior al inicio de la ventana vigente: solaparía ventanas.
func TestCambioManual_RetroactivoEsConflicto(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	b.conPrecioVigente(presA, "100", "2025-05-01")

	retro := fecha("2025-04-01")
	_, err := b.uc.CambioManual(context.Background(), pricing.CambioManualInput{
		PresentacionID: presA,
		Precio:         qty("150"),
		EfectivaEn:     &retro,
		UserID:         "u-1",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	// Sin efectos: la ventana vigente sigue abierta.
	vigente, err := b.hist.GetVigente(presA)
	require.NoError(t, err)
	assert.True(t, vigente.Precio.Equal(qty("100")))
	assert.Len(t, b.hist.filas, 1)
}

func TestCambioManual_Validaciones(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	ctx := context.Background()

	_, err := b.uc.CambioManual(ctx, pricing.CambioManualInput{
		PresentacionID: presA, Precio: qty("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.uc.CambioManual(ctx, pricing.CambioManualInput{
		PresentacionID: "pres-nope", Precio: qty("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCambioManual_AplicaPoliticaDeRedondeo(t *testing.T) {
	b := nuevoBanco(domainpricing.PoliticaRedondeo{
		Modo:     domainpricing.RedondeoMultiplo,
		Multiplo: qty("0.50"),
	})

	nuevo, err := b.uc.CambioManual(context.Background(), pricing.CambioManualInput{
		PresentacionID: presA,
		Precio:         qty("12.30"),
		UserID:         "u-1",
	})
	require.NoError(t, err)
	assert.True(t, nuevo.Precio.Equal(qty("12.50")), "quedó %s", nuevo.Precio)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recálculo masivo
// ──────────────────────────────────────────────────────────────────────────────

// Simular es una proyección pura: dos corridas dan el mismo resultado y el
// historial no cambia.
func TestRecalculo_SimularEsIdempotenteYNoEscribe(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	b.conTasa("8", "2025-05-01")
	b.conPrecioVigente(presA, "100", "2025-01-01") // nuevo: 2.50*8 = 20
	b.conPrecioVigente(presB, "8.80", "2025-01-01") // nuevo: 1.10*8 = 8.80, sin cambio
	// presC sin precio vigente: omitida.
	filasAntes := len(b.hist.filas)

	primera, err := b.uc.RecalculoMasivo(context.Background(), pricing.RecalculoInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, Simular: true, UserID: "u-1",
	})
	require.NoError(t, err)
	segunda, err := b.uc.RecalculoMasivo(context.Background(), pricing.RecalculoInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, Simular: true, UserID: "u-1",
	})
	require.NoError(t, err)

	assert.Equal(t, primera, segunda)
	assert.True(t, primera.Simulado)
	assert.Equal(t, 1, primera.Cambiados)
	assert.Equal(t, 1, primera.SinCambio)
	assert.Equal(t, 1, primera.Omitidos)
	assert.True(t, primera.TasaUsada.Equal(qty("8")))
	require.Len(t, primera.Detalle, 1)
	assert.Equal(t, presA, primera.Detalle[0].PresentacionID)
	assert.True(t, primera.Detalle[0].PrecioAnterior.Equal(qty("100")))
	assert.True(t, primera.Detalle[0].PrecioNuevo.Equal(qty("20")))

	assert.Len(t, b.hist.filas, filasAntes, "la simulación no escribe")
}

// Confirmar escribe solo las presentaciones con cambio, todas en una unidad.
func TestRecalculo_ConfirmarEscribeSoloCambios(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	b.conTasa("8", "2025-05-01")
	b.conPrecioVigente(presA, "100", "2025-01-01")
	b.conPrecioVigente(presB, "8.80", "2025-01-01")

	resp, err := b.uc.RecalculoMasivo(context.Background(), pricing.RecalculoInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, UserID: "u-1",
	})
	require.NoError(t, err)
	assert.False(t, resp.Simulado)
	assert.Equal(t, 1, resp.Cambiados)

	vigenteA, err := b.hist.GetVigente(presA)
	require.NoError(t, err)
	assert.True(t, vigenteA.Precio.Equal(qty("20")))
	assert.Equal(t, entity.MotivoRecalculoMasivo, vigenteA.Motivo)

	// La presentación sin cambio conserva su ventana original abierta.
	vigenteB, err := b.hist.GetVigente(presB)
	require.NoError(t, err)
	assert.True(t, vigenteB.VigenteDesde.Equal(fecha("2025-01-01")))

	// 2 originales + 1 ventana nueva.
	assert.Len(t, b.hist.filas, 3)
}

// Un cambio manual que se cuela entre la proyección y el commit puede dejar el
// precio ya en el valor recalculado; el commit relee bajo lock y no abre una
// ventana redundante encima.
func TestRecalculo_CambioConcurrenteNoAbreVentanaRedundante(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	b.conTasa("8", "2025-05-01")
	b.conPrecioVigente(presA, "100", "2025-01-01") // recalculado: 2.50*8 = 20

	b.runner.alAbrirTx = func() {
		// Otro proceso deja el precio en 20 antes de que el recálculo tome el lock.
		viejo, _ := b.hist.GetVigente(presA)
		_ = b.hist.CerrarVigente(viejo.ID, fecha("2025-05-20"))
		_ = b.hist.Create(&entity.HistorialPrecio{
			ID:             "hist-colado",
			PresentacionID: presA,
			Precio:         qty("20"),
			VigenteDesde:   fecha("2025-05-20"),
			Motivo:         entity.MotivoManual,
			CreatedBy:      "u-9",
		})
	}

	_, err := b.uc.RecalculoMasivo(context.Background(), pricing.RecalculoInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, UserID: "u-1",
	})
	require.NoError(t, err)

	// Quedan la fila original cerrada y la del cambio manual, nada más.
	assert.Len(t, b.hist.filas, 2)
	vigente, err := b.hist.GetVigente(presA)
	require.NoError(t, err)
	assert.Equal(t, "hist-colado", vigente.ID)
	assert.Equal(t, entity.MotivoManual, vigente.Motivo)
}

func TestRecalculo_SinTasaVigenteEsNotFound(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	b.conTasa("8", "2025-07-01") // posterior a la fecha de corte
	b.conPrecioVigente(presA, "100", "2025-01-01")

	_, err := b.uc.RecalculoMasivo(context.Background(), pricing.RecalculoInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, UserID: "u-1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecalculo_UsaLaTasaVigenteALaFecha(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	b.conTasa("7", "2025-01-01")
	b.conTasa("8", "2025-05-01")
	b.conTasa("9", "2025-07-01")
	b.conPrecioVigente(presA, "100", "2025-01-01")

	corte := fecha("2025-05-15")
	resp, err := b.uc.RecalculoMasivo(context.Background(), pricing.RecalculoInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, Fecha: &corte, Simular: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.TasaUsada.Equal(qty("8")))
}

func TestRecalculo_RedondeaAntesDeComparar(t *testing.T) {
	b := nuevoBanco(domainpricing.PoliticaRedondeo{Modo: domainpricing.RedondeoEntero})
	b.conTasa("8", "2025-05-01")
	// 2.50*8 = 20 exacto; vigente ya en 20: el redondeo lo deja sin cambio.
	b.conPrecioVigente(presA, "20", "2025-01-01")
	// 1.10*8 = 8.80 redondea a 9.
	b.conPrecioVigente(presB, "8.80", "2025-01-01")

	resp, err := b.uc.RecalculoMasivo(context.Background(), pricing.RecalculoInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, Simular: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SinCambio)
	assert.Equal(t, 1, resp.Cambiados)
	require.Len(t, resp.Detalle, 1)
	assert.True(t, resp.Detalle[0].PrecioNuevo.Equal(qty("9")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversión y consulta
// ──────────────────────────────────────────────────────────────────────────────

func TestRevertir_CopiaElRegistroHistorico(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	viejo := b.conPrecioVigente(presA, "100", "2025-01-01")

	_, err := b.uc.CambioManual(context.Background(), pricing.CambioManualInput{
		PresentacionID: presA, Precio: qty("150"), UserID: "u-1",
	})
	require.NoError(t, err)

	revertido, err := b.uc.Revertir(context.Background(), viejo.ID, "u-2")
	require.NoError(t, err)
	assert.True(t, revertido.Precio.Equal(qty("100")))
	assert.Equal(t, entity.MotivoReversion, revertido.Motivo)
	assert.Nil(t, revertido.VigenteHasta)

	// El registro original sigue intacto (cerrado, no reescrito).
	original, err := b.hist.GetByID(viejo.ID)
	require.NoError(t, err)
	assert.NotNil(t, original.VigenteHasta)
	assert.True(t, original.Precio.Equal(qty("100")))
	assert.Len(t, b.hist.filas, 3)
}

func TestRevertir_RegistroInexistente(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	_, err := b.uc.Revertir(context.Background(), "nope", "u-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVigenteYBuscar(t *testing.T) {
	b := nuevoBanco(sinRedondeo())
	b.conPrecioVigente(presA, "100", "2025-01-01")
	_, err := b.uc.CambioManual(context.Background(), pricing.CambioManualInput{
		PresentacionID: presA, Precio: qty("150"), UserID: "u-1",
	})
	require.NoError(t, err)

	vigente, err := b.uc.Vigente(context.Background(), presA)
	require.NoError(t, err)
	assert.True(t, vigente.Precio.Equal(qty("150")))

	_, err = b.uc.Vigente(context.Background(), presB)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resp, err := b.uc.Buscar(context.Background(), pricing.BuscarInput{Motivo: entity.MotivoManual})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Page.Total)
	// Más reciente primero.
	assert.True(t, resp.Historial[0].Precio.Equal(qty("150")))
}
