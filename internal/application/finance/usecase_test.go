package finance_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	"github.com/grupodelsur/distribuidora-api/internal/application/finance"
	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
)

type tcRepoFake struct {
	tasas []*entity.TipoCambio
}

func (f *tcRepoFake) Create(tc *entity.TipoCambio) error {
	existe, _ := f.ExisteEnFecha(tc.MonedaOrigenID, tc.MonedaDestinoID, tc.FechaVigencia)
	if existe {
		return domain.ErrDuplicate
	}
	c := *tc
	f.tasas = append(f.tasas, &c)
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
	if mejor == nil {
		return nil, nil
	}
	c := *mejor
	return &c, nil
}

func (f *tcRepoFake) Historial(origenID, destinoID string, limit, offset int) ([]*entity.TipoCambio, int, error) {
	var filtradas []*entity.TipoCambio
	for _, tc := range f.tasas {
		if origenID != "" && tc.MonedaOrigenID != origenID {
			continue
		}
		if destinoID != "" && tc.MonedaDestinoID != destinoID {
			continue
		}
		filtradas = append(filtradas, tc)
	}
	sort.Slice(filtradas, func(i, j int) bool {
		return filtradas[i].FechaVigencia.After(filtradas[j].FechaVigencia)
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

type monedaRepoFake struct{ monedas map[string]*entity.Moneda }

func (f *monedaRepoFake) GetByID(id string) (*entity.Moneda, error) { return f.monedas[id], nil }

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fecha(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const (
	monedaUSD = "mon-usd"
	monedaGTQ = "mon-gtq"
)

var ahora = fecha("2025-06-01")

func nuevoUseCase() (*finance.UseCase, *tcRepoFake) {
	tc := &tcRepoFake{}
	monedas := &monedaRepoFake{monedas: map[string]*entity.Moneda{
		monedaUSD: {ID: monedaUSD, Codigo: "USD"},
		monedaGTQ: {ID: monedaGTQ, Codigo: "GTQ"},
	}}
	return finance.NewUseCase(tc, monedas, func() time.Time { return ahora }), tc
}

func TestCrear_Validaciones(t *testing.T) {
	uc, _ := nuevoUseCase()
	ctx := context.Background()

	casos := []struct {
		nombre string
		input  finance.CrearInput
		want   error
	}{
		{"tasa cero", finance.CrearInput{MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, FechaVigencia: ahora, Tasa: decimal.Zero}, domain.ErrInvalidInput},
		{"misma moneda", finance.CrearInput{MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaUSD, FechaVigencia: ahora, Tasa: qty("1")}, domain.ErrInvalidInput},
		{"sin fecha", finance.CrearInput{MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ, Tasa: qty("1")}, domain.ErrInvalidInput},
		{"moneda inexistente", finance.CrearInput{MonedaOrigenID: monedaUSD, MonedaDestinoID: "mon-nope", FechaVigencia: ahora, Tasa: qty("1")}, domain.ErrNotFound},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := uc.Crear(ctx, c.input)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestCrear_DuplicadoExacto(t *testing.T) {
	uc, _ := nuevoUseCase()
	ctx := context.Background()
	input := finance.CrearInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ,
		FechaVigencia: fecha("2025-05-01"), Tasa: qty("7.75"), UserID: "u-1",
	}

	_, err := uc.Crear(ctx, input)
	require.NoError(t, err)
	_, err = uc.Crear(ctx, input)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCrearSiNoExiste(t *testing.T) {
	uc, repo := nuevoUseCase()
	ctx := context.Background()
	input := finance.CrearInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ,
		FechaVigencia: fecha("2025-05-01"), Tasa: qty("7.75"), UserID: "u-1",
	}

	tc, creado, err := uc.CrearSiNoExiste(ctx, input)
	require.NoError(t, err)
	assert.True(t, creado)
	require.NotNil(t, tc)

	otra, creado, err := uc.CrearSiNoExiste(ctx, input)
	require.NoError(t, err)
	assert.False(t, creado)
	assert.Nil(t, otra)
	assert.Len(t, repo.tasas, 1)
}

// La vigente a una fecha es la de mayor fecha de vigencia <= esa fecha; las
// posteriores no cuentan.
func TestVigente_ComoDeFecha(t *testing.T) {
	uc, _ := nuevoUseCase()
	ctx := context.Background()
	for _, c := range []struct{ tasa, desde string }{
		{"7.50", "2025-01-01"},
		{"7.75", "2025-05-01"},
		{"8.00", "2025-07-01"},
	} {
		_, err := uc.Crear(ctx, finance.CrearInput{
			MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ,
			FechaVigencia: fecha(c.desde), Tasa: qty(c.tasa),
		})
		require.NoError(t, err)
	}

	corte := fecha("2025-05-15")
	tc, err := uc.Vigente(ctx, monedaUSD, monedaGTQ, &corte)
	require.NoError(t, err)
	assert.True(t, tc.Tasa.Equal(qty("7.75")))

	// Justo en la fecha de vigencia aplica la nueva tasa.
	corte = fecha("2025-07-01")
	tc, err = uc.Vigente(ctx, monedaUSD, monedaGTQ, &corte)
	require.NoError(t, err)
	assert.True(t, tc.Tasa.Equal(qty("8.00")))

	// Sin fecha usa hoy.
	tc, err = uc.Vigente(ctx, monedaUSD, monedaGTQ, nil)
	require.NoError(t, err)
	assert.True(t, tc.Tasa.Equal(qty("7.75")))
}

func TestVigente_AntesDeLaPrimeraTasa(t *testing.T) {
	uc, _ := nuevoUseCase()
	ctx := context.Background()
	_, err := uc.Crear(ctx, finance.CrearInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ,
		FechaVigencia: fecha("2025-05-01"), Tasa: qty("7.75"),
	})
	require.NoError(t, err)

	corte := fecha("2025-04-30")
	_, err = uc.Vigente(ctx, monedaUSD, monedaGTQ, &corte)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConvertir(t *testing.T) {
	uc, _ := nuevoUseCase()
	ctx := context.Background()
	_, err := uc.Crear(ctx, finance.CrearInput{
		MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ,
		FechaVigencia: fecha("2025-05-01"), Tasa: qty("7.75"),
	})
	require.NoError(t, err)

	resp, err := uc.Convertir(ctx, monedaUSD, monedaGTQ, qty("100"), nil)
	require.NoError(t, err)
	assert.True(t, resp.TasaUsada.Equal(qty("7.75")))
	assert.True(t, resp.Convertido.Equal(qty("775")))

	// Par inverso sin tasa registrada.
	_, err = uc.Convertir(ctx, monedaGTQ, monedaUSD, qty("100"), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Convertir(ctx, monedaUSD, monedaGTQ, qty("-1"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistorial_OrdenDescendente(t *testing.T) {
	uc, _ := nuevoUseCase()
	ctx := context.Background()
	for _, desde := range []string{"2025-01-01", "2025-05-01", "2025-03-01"} {
		_, err := uc.Crear(ctx, finance.CrearInput{
			MonedaOrigenID: monedaUSD, MonedaDestinoID: monedaGTQ,
			FechaVigencia: fecha(desde), Tasa: qty("7.75"),
		})
		require.NoError(t, err)
	}

	resp, err := uc.Historial(ctx, monedaUSD, monedaGTQ, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Page.Total)
	require.Len(t, resp.Tasas, 3)
	assert.True(t, resp.Tasas[0].FechaVigencia.Equal(fecha("2025-05-01")))
	assert.True(t, resp.Tasas[2].FechaVigencia.Equal(fecha("2025-01-01")))
}
