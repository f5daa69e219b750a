package inventory_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/grupodelsur/distribuidora-api/internal/application/inventory"
	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/inventory"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Estado en memoria con snapshot/restore para simular Commit/Rollback
// ──────────────────────────────────────────────────────────────────────────────

type memoria struct {
	lotes       map[string]*entity.Lote
	posiciones  map[string]*entity.PosicionStock
	movimientos []*entity.Movimiento
	almacenes   map[string]*entity.Almacen
}

func (m *memoria) snapshot() *memoria {
	s := &memoria{
		lotes:      make(map[string]*entity.Lote, len(m.lotes)),
		posiciones: make(map[string]*entity.PosicionStock, len(m.posiciones)),
		almacenes:  m.almacenes,
	}
	for k, v := range m.lotes {
		c := *v
		s.lotes[k] = &c
	}
	for k, v := range m.posiciones {
		c := *v
		s.posiciones[k] = &c
	}
	s.movimientos = append(s.movimientos, m.movimientos...)
	return s
}

func (m *memoria) restaurar(s *memoria) {
	m.lotes = s.lotes
	m.posiciones = s.posiciones
	m.movimientos = s.movimientos
}

type loteRepoFake struct{ m *memoria }

func (f *loteRepoFake) Create(lote *entity.Lote) error {
	f.m.lotes[lote.ID] = lote
	return nil
}

func (f *loteRepoFake) GetByID(id string) (*entity.Lote, error) {
	return f.m.lotes[id], nil
}

func (f *loteRepoFake) FindByClave(presentacionID, almacenID, numeroLote string) (*entity.Lote, error) {
	for _, l := range f.m.lotes {
		if l.PresentacionID == presentacionID && l.AlmacenID == almacenID && l.NumeroLote == numeroLote {
			return l, nil
		}
	}
	return nil, nil
}

type posRepoFake struct{ m *memoria }

func (f *posRepoFake) Get(loteID string) (*entity.PosicionStock, error) {
	return f.GetForUpdate(loteID)
}

// GetForUpdate devuelve saldo cero para posiciones inexistentes, igual que el
// adaptador de PostgreSQL.
func (f *posRepoFake) GetForUpdate(loteID string) (*entity.PosicionStock, error) {
	if pos, ok := f.m.posiciones[loteID]; ok {
		return pos, nil
	}
	return &entity.PosicionStock{
		LoteID:     loteID,
		Disponible: decimal.Zero,
		Reservada:  decimal.Zero,
	}, nil
}

func (f *posRepoFake) Upsert(pos *entity.PosicionStock) error {
	f.m.posiciones[pos.LoteID] = pos
	return nil
}

func (f *posRepoFake) Candidatos(presentacionID, almacenID string) ([]inventory.Candidato, error) {
	var out []inventory.Candidato
	for _, l := range f.m.lotes {
		if l.PresentacionID != presentacionID || l.AlmacenID != almacenID {
			continue
		}
		pos, ok := f.m.posiciones[l.ID]
		if !ok || !pos.Disponible.GreaterThan(decimal.Zero) {
			continue
		}
		out = append(out, inventory.Candidato{
			LoteID:           l.ID,
			FechaVencimiento: l.FechaVencimiento,
			Disponible:       pos.Disponible,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoteID < out[j].LoteID })
	return out, nil
}

func (f *posRepoFake) CandidatosForUpdate(presentacionID, almacenID string) ([]inventory.Candidato, error) {
	return f.Candidatos(presentacionID, almacenID)
}

func (f *posRepoFake) Listar(_ repository.FiltroPosiciones, _, _ int) ([]*entity.PosicionLote, int, error) {
	return nil, 0, nil
}

type movRepoFake struct{ m *memoria }

func (f *movRepoFake) Create(mov *entity.Movimiento) error {
	f.m.movimientos = append(f.m.movimientos, mov)
	return nil
}

func (f *movRepoFake) Recientes(loteID, almacenID string, limit int) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for i := len(f.m.movimientos) - 1; i >= 0 && len(out) < limit; i-- {
		mov := f.m.movimientos[i]
		if mov.LoteID != loteID {
			continue
		}
		if almacenID != "" && mov.AlmacenID != almacenID {
			continue
		}
		out = append(out, mov)
	}
	return out, nil
}

func (f *movRepoFake) ListByLote(loteID string) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, mov := range f.m.movimientos {
		if mov.LoteID == loteID {
			out = append(out, mov)
		}
	}
	return out, nil
}

type almacenRepoFake struct{ m *memoria }

func (f *almacenRepoFake) GetByID(id string) (*entity.Almacen, error) {
	return f.m.almacenes[id], nil
}

// txRunnerFake ejecuta el callback sobre el estado compartido y restaura el
// snapshot si falla, imitando el Rollback real.
type txRunnerFake struct{ m *memoria }

func (f *txRunnerFake) Run(_ context.Context, fn func(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	loteRepo repository.LoteRepository,
) error) error {
	s := f.m.snapshot()
	if err := fn(&movRepoFake{m: f.m}, &posRepoFake{m: f.m}, &loteRepoFake{m: f.m}); err != nil {
		f.m.restaurar(s)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	almacenCentral = "alm-central"
	almacenNorte   = "alm-norte"
	presHarina     = "pres-harina"
	loteA          = "lote-a"
)

func fixture() (*memoria, *appinv.RegistrarMovimientoUseCase) {
	vence := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	m := &memoria{
		lotes: map[string]*entity.Lote{
			loteA: {
				ID:               loteA,
				PresentacionID:   presHarina,
				AlmacenID:        almacenCentral,
				NumeroLote:       "H-001",
				FechaVencimiento: &vence,
				CantidadInicial:  decimal.NewFromInt(40),
			},
		},
		posiciones: map[string]*entity.PosicionStock{
			loteA: {
				LoteID:     loteA,
				AlmacenID:  almacenCentral,
				Disponible: decimal.NewFromInt(40),
				Reservada:  decimal.NewFromInt(5),
			},
		},
		almacenes: map[string]*entity.Almacen{
			almacenCentral: {ID: almacenCentral, Codigo: "CEN", Nombre: "Central"},
			almacenNorte:   {ID: almacenNorte, Codigo: "NOR", Nombre: "Norte"},
		},
	}
	uc := appinv.NewRegistrarMovimientoUseCase(
		&txRunnerFake{m: m},
		&loteRepoFake{m: m},
		&almacenRepoFake{m: m},
	)
	return m, uc
}

func movimiento(m *memoria, tipo string) *entity.Movimiento {
	for _, mov := range m.movimientos {
		if mov.Tipo == tipo {
			return mov
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRegistrar_IngresoSumaDisponible(t *testing.T) {
	m, uc := fixture()

	err := uc.Registrar(context.Background(), appinv.MovimientoInput{
		LoteID:   loteA,
		Tipo:     entity.MovimientoIngreso,
		Cantidad: decimal.NewFromInt(10),
		UserID:   "u1",
	})
	require.NoError(t, err)

	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(50)))
	mov := movimiento(m, entity.MovimientoIngreso)
	require.NotNil(t, mov)
	assert.True(t, mov.Cantidad.Equal(decimal.NewFromInt(10)), "el ingreso se registra con signo positivo")
	assert.Equal(t, entity.ModuloInventario, mov.ModuloOrigen, "sin módulo explícito el movimiento es del propio inventario")
}

func TestRegistrar_SalidaDescuentaYRegistraNegativo(t *testing.T) {
	m, uc := fixture()

	err := uc.Registrar(context.Background(), appinv.MovimientoInput{
		LoteID:   loteA,
		Tipo:     entity.MovimientoSalida,
		Cantidad: decimal.NewFromInt(15),
		UserID:   "u1",
	})
	require.NoError(t, err)

	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(25)))
	mov := movimiento(m, entity.MovimientoSalida)
	require.NotNil(t, mov)
	assert.True(t, mov.Cantidad.Equal(decimal.NewFromInt(-15)), "la salida se registra con signo negativo")
}

func TestRegistrar_SalidaSinStockNoMutaEstado(t *testing.T) {
	m, uc := fixture()

	err := uc.Registrar(context.Background(), appinv.MovimientoInput{
		LoteID:   loteA,
		Tipo:     entity.MovimientoSalida,
		Cantidad: decimal.NewFromInt(41),
		UserID:   "u1",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La reservada no cubre salidas directas: el disponible manda.
	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(40)))
	assert.Empty(t, m.movimientos, "una salida rechazada no deja rastro en el log")
}

func TestRegistrar_AjusteConSigno(t *testing.T) {
	m, uc := fixture()

	require.NoError(t, uc.Registrar(context.Background(), appinv.MovimientoInput{
		LoteID:   loteA,
		Tipo:     entity.MovimientoAjuste,
		Cantidad: decimal.NewFromInt(-8),
		Nota:     "merma por rotura",
		UserID:   "u1",
	}))
	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(32)))

	// Un ajuste que dejaría el disponible bajo cero se rechaza.
	err := uc.Registrar(context.Background(), appinv.MovimientoInput{
		LoteID:   loteA,
		Tipo:     entity.MovimientoAjuste,
		Cantidad: decimal.NewFromInt(-33),
		UserID:   "u1",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(32)))
}

func TestRegistrar_TransferenciaCreaLoteHomologo(t *testing.T) {
	m, uc := fixture()

	err := uc.Registrar(context.Background(), appinv.MovimientoInput{
		LoteID:           loteA,
		AlmacenDestinoID: almacenNorte,
		Tipo:             entity.MovimientoTransferencia,
		Cantidad:         decimal.NewFromInt(12),
		UserID:           "u1",
	})
	require.NoError(t, err)

	// El lote destino comparte número de lote y vencimiento con el origen.
	var destino *entity.Lote
	for _, l := range m.lotes {
		if l.AlmacenID == almacenNorte {
			destino = l
		}
	}
	require.NotNil(t, destino, "debe crearse el lote homólogo en el almacén destino")
	assert.Equal(t, "H-001", destino.NumeroLote)
	require.NotNil(t, destino.FechaVencimiento)
	assert.True(t, destino.FechaVencimiento.Equal(*m.lotes[loteA].FechaVencimiento))

	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(28)))
	assert.True(t, m.posiciones[destino.ID].Disponible.Equal(decimal.NewFromInt(12)))

	// Las dos filas del log comparten ReferenciaID y suman cero.
	require.Len(t, m.movimientos, 2)
	assert.Equal(t, m.movimientos[0].ReferenciaID, m.movimientos[1].ReferenciaID)
	assert.NotEmpty(t, m.movimientos[0].ReferenciaID)
	neto := m.movimientos[0].Cantidad.Add(m.movimientos[1].Cantidad)
	assert.True(t, neto.IsZero(), "la transferencia no altera el stock total")
}

func TestRegistrar_TransferenciaReutilizaLoteDestino(t *testing.T) {
	m, uc := fixture()

	for i := 0; i < 2; i++ {
		require.NoError(t, uc.Registrar(context.Background(), appinv.MovimientoInput{
			LoteID:           loteA,
			AlmacenDestinoID: almacenNorte,
			Tipo:             entity.MovimientoTransferencia,
			Cantidad:         decimal.NewFromInt(5),
			UserID:           "u1",
		}))
	}

	assert.Len(t, m.lotes, 2, "la segunda transferencia reutiliza el lote homólogo")
	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(30)))
}

// Si en el destino ya existe un lote con el mismo número pero otras fechas,
// la transferencia no lo reutiliza: son partidas distintas.
func TestRegistrar_TransferenciaNoMezclaPartidasConOtrasFechas(t *testing.T) {
	m, uc := fixture()
	otroVence := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	m.lotes["lote-norte"] = &entity.Lote{
		ID:               "lote-norte",
		PresentacionID:   presHarina,
		AlmacenID:        almacenNorte,
		NumeroLote:       "H-001",
		FechaVencimiento: &otroVence,
		CantidadInicial:  decimal.NewFromInt(10),
	}
	m.posiciones["lote-norte"] = &entity.PosicionStock{
		LoteID:     "lote-norte",
		AlmacenID:  almacenNorte,
		Disponible: decimal.NewFromInt(10),
	}

	err := uc.Registrar(context.Background(), appinv.MovimientoInput{
		LoteID:           loteA,
		AlmacenDestinoID: almacenNorte,
		Tipo:             entity.MovimientoTransferencia,
		Cantidad:         decimal.NewFromInt(5),
		UserID:           "u1",
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(40)))
	assert.True(t, m.posiciones["lote-norte"].Disponible.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, m.movimientos)
}

func TestRegistrar_TransferenciaSinStockRevierteTodo(t *testing.T) {
	m, uc := fixture()

	err := uc.Registrar(context.Background(), appinv.MovimientoInput{
		LoteID:           loteA,
		AlmacenDestinoID: almacenNorte,
		Tipo:             entity.MovimientoTransferencia,
		Cantidad:         decimal.NewFromInt(100),
		UserID:           "u1",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Len(t, m.lotes, 1, "el lote destino no debe sobrevivir al rollback")
	assert.True(t, m.posiciones[loteA].Disponible.Equal(decimal.NewFromInt(40)))
	assert.Empty(t, m.movimientos)
}

func TestRegistrar_EntradasInvalidas(t *testing.T) {
	_, uc := fixture()
	ctx := context.Background()

	casos := []struct {
		nombre string
		input  appinv.MovimientoInput
		esper  error
	}{
		{"tipo desconocido", appinv.MovimientoInput{LoteID: loteA, Tipo: "prestamo", Cantidad: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"tipo reserva es del motor de reservas", appinv.MovimientoInput{LoteID: loteA, Tipo: entity.MovimientoReserva, Cantidad: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"cantidad cero en ingreso", appinv.MovimientoInput{LoteID: loteA, Tipo: entity.MovimientoIngreso, Cantidad: decimal.Zero}, domain.ErrInvalidInput},
		{"cantidad negativa en salida", appinv.MovimientoInput{LoteID: loteA, Tipo: entity.MovimientoSalida, Cantidad: decimal.NewFromInt(-3)}, domain.ErrInvalidInput},
		{"ajuste cero", appinv.MovimientoInput{LoteID: loteA, Tipo: entity.MovimientoAjuste, Cantidad: decimal.Zero}, domain.ErrInvalidInput},
		{"lote vacío", appinv.MovimientoInput{Tipo: entity.MovimientoIngreso, Cantidad: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"lote inexistente", appinv.MovimientoInput{LoteID: "lote-x", Tipo: entity.MovimientoIngreso, Cantidad: decimal.NewFromInt(1)}, domain.ErrNotFound},
		{"transferencia sin destino", appinv.MovimientoInput{LoteID: loteA, Tipo: entity.MovimientoTransferencia, Cantidad: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"transferencia al mismo almacén", appinv.MovimientoInput{LoteID: loteA, AlmacenDestinoID: almacenCentral, Tipo: entity.MovimientoTransferencia, Cantidad: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"transferencia a almacén inexistente", appinv.MovimientoInput{LoteID: loteA, AlmacenDestinoID: "alm-x", Tipo: entity.MovimientoTransferencia, Cantidad: decimal.NewFromInt(1)}, domain.ErrNotFound},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			assert.ErrorIs(t, uc.Registrar(ctx, c.input), c.esper)
		})
	}
}

func TestRegistrar_PosicionCoincideConReplay(t *testing.T) {
	m, uc := fixture()
	ctx := context.Background()

	// Arrancamos de un lote nuevo sin posición previa para que el replay del
	// log cierre exacto.
	loteNuevo := &entity.Lote{
		ID:             "lote-n",
		PresentacionID: presHarina,
		AlmacenID:      almacenCentral,
		NumeroLote:     "H-002",
	}
	m.lotes[loteNuevo.ID] = loteNuevo

	require.NoError(t, uc.Registrar(ctx, appinv.MovimientoInput{
		LoteID: loteNuevo.ID, Tipo: entity.MovimientoIngreso, Cantidad: decimal.NewFromInt(30), UserID: "u1",
	}))
	require.NoError(t, uc.Registrar(ctx, appinv.MovimientoInput{
		LoteID: loteNuevo.ID, Tipo: entity.MovimientoSalida, Cantidad: decimal.NewFromInt(12), UserID: "u1",
	}))
	require.NoError(t, uc.Registrar(ctx, appinv.MovimientoInput{
		LoteID: loteNuevo.ID, Tipo: entity.MovimientoAjuste, Cantidad: decimal.NewFromInt(-3), UserID: "u1",
	}))

	movimientos, err := (&movRepoFake{m: m}).ListByLote(loteNuevo.ID)
	require.NoError(t, err)
	saldo := inventory.ReconstruirPosicion(movimientos)

	pos := m.posiciones[loteNuevo.ID]
	assert.True(t, pos.Disponible.Equal(saldo.Disponible),
		"la posición materializada debe coincidir con el replay del log")
	assert.True(t, pos.Disponible.Equal(decimal.NewFromInt(15)))
}
