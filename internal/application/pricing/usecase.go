package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// UseCase gestiona el historial de precios: cambios manuales, recálculo
// masivo por tipo de cambio, reversión a un precio histórico y búsqueda.
//
// El historial es append-only con ventanas de vigencia que no se solapan: a lo
// sumo una ventana abierta por presentación, y todo cambio cierra la anterior
// en el mismo instante en que abre la nueva.
type UseCase struct {
	txRunner TxRunner
	histRepo repository.HistorialPrecioRepository
	presRepo repository.PresentacionRepository
	tcRepo   repository.TipoCambioRepository
	politica *PoliticaHolder
	reloj    func() time.Time
}

// NewUseCase construye el caso de uso de precios. reloj nil usa time.Now.
func NewUseCase(
	txRunner TxRunner,
	histRepo repository.HistorialPrecioRepository,
	presRepo repository.PresentacionRepository,
	tcRepo repository.TipoCambioRepository,
	politica *PoliticaHolder,
	reloj func() time.Time,
) *UseCase {
	if reloj == nil {
		reloj = time.Now
	}
	return &UseCase{
		txRunner: txRunner,
		histRepo: histRepo,
		presRepo: presRepo,
		tcRepo:   tcRepo,
		politica: politica,
		reloj:    reloj,
	}
}

// CambioManualInput entrada para un cambio manual de precio.
type CambioManualInput struct {
	PresentacionID string
	Precio         decimal.Decimal
	Motivo         string
	EfectivaEn     *time.Time // nil = ahora
	UserID         string
}

// CambioManual cierra la ventana vigente y abre una nueva con el precio dado.
// La fecha efectiva no puede ser anterior al inicio de la ventana vigente:
// eso solaparía ventanas y es ErrConflict.
func (uc *UseCase) CambioManual(ctx context.Context, input CambioManualInput) (*entity.HistorialPrecio, error) {
	if input.PresentacionID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Precio.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	pres, err := uc.presRepo.GetByID(input.PresentacionID)
	if err != nil {
		return nil, err
	}
	if pres == nil {
		return nil, domain.ErrNotFound
	}

	efectivaEn := uc.reloj()
	if input.EfectivaEn != nil {
		efectivaEn = *input.EfectivaEn
	}
	motivo := input.Motivo
	if motivo == "" {
		motivo = entity.MotivoManual
	}

	nuevo := &entity.HistorialPrecio{
		ID:             uuid.New().String(),
		PresentacionID: input.PresentacionID,
		Precio:         uc.politica.Actual().Aplicar(input.Precio),
		VigenteDesde:   efectivaEn,
		Motivo:         motivo,
		CreatedBy:      input.UserID,
		CreatedAt:      uc.reloj(),
	}

	err = uc.txRunner.RunPrecios(ctx, func(histRepo repository.HistorialPrecioRepository) error {
		return uc.abrirVentana(histRepo, nuevo)
	})
	if err != nil {
		return nil, err
	}
	return nuevo, nil
}

// RecalculoInput entrada del recálculo masivo de precios.
// El precio nuevo de cada presentación con costo en MonedaOrigenID es
// CostoOrigen por la tasa vigente origen a destino, redondeado por política.
type RecalculoInput struct {
	MonedaOrigenID  string
	MonedaDestinoID string
	Fecha           *time.Time // nil = hoy
	Simular         bool
	UserID          string
}

// RecalculoMasivo proyecta el recálculo y, si no es simulación, confirma todas
// las ventanas nuevas en una sola transacción. La simulación es una proyección
// pura: correrla dos veces da el mismo resultado y no escribe nada.
// Sin tasa vigente para el par a la fecha es ErrNotFound.
func (uc *UseCase) RecalculoMasivo(ctx context.Context, input RecalculoInput) (*dto.RecalculoResponse, error) {
	if input.MonedaOrigenID == "" || input.MonedaDestinoID == "" {
		return nil, domain.ErrInvalidInput
	}
	fecha := uc.reloj()
	if input.Fecha != nil {
		fecha = *input.Fecha
	}
	tc, err := uc.tcRepo.Vigente(input.MonedaOrigenID, input.MonedaDestinoID, fecha)
	if err != nil {
		return nil, err
	}
	if tc == nil {
		return nil, domain.ErrNotFound
	}

	presentaciones, err := uc.presRepo.ListByMonedaCosto(input.MonedaOrigenID)
	if err != nil {
		return nil, err
	}

	politica := uc.politica.Actual()
	resp := &dto.RecalculoResponse{Simulado: input.Simular, TasaUsada: tc.Tasa}
	type cambio struct {
		presentacionID string
		precio         decimal.Decimal
	}
	var cambios []cambio
	for _, pres := range presentaciones {
		vigente, err := uc.histRepo.GetVigente(pres.ID)
		if err != nil {
			return nil, err
		}
		if vigente == nil {
			// Sin precio vigente no hay base que recalcular: se omite.
			resp.Omitidos++
			continue
		}
		nuevo := politica.Aplicar(pres.CostoOrigen.Mul(tc.Tasa))
		if nuevo.Equal(vigente.Precio) {
			resp.SinCambio++
			continue
		}
		resp.Cambiados++
		resp.Detalle = append(resp.Detalle, dto.DeltaPrecioDTO{
			PresentacionID: pres.ID,
			SKU:            pres.SKU,
			PrecioAnterior: vigente.Precio,
			PrecioNuevo:    nuevo,
		})
		cambios = append(cambios, cambio{presentacionID: pres.ID, precio: nuevo})
	}

	if input.Simular || len(cambios) == 0 {
		return resp, nil
	}

	now := uc.reloj()
	err = uc.txRunner.RunPrecios(ctx, func(histRepo repository.HistorialPrecioRepository) error {
		for _, c := range cambios {
			// La proyección corrió fuera de la transacción: un cambio
			// concurrente pudo dejar ya este precio. Se relee bajo lock y se
			// omite la ventana redundante.
			vigente, err := histRepo.GetVigenteForUpdate(c.presentacionID)
			if err != nil {
				return err
			}
			if vigente != nil && vigente.Precio.Equal(c.precio) {
				continue
			}
			nuevo := &entity.HistorialPrecio{
				ID:             uuid.New().String(),
				PresentacionID: c.presentacionID,
				Precio:         c.precio,
				VigenteDesde:   now,
				Motivo:         entity.MotivoRecalculoMasivo,
				CreatedBy:      input.UserID,
				CreatedAt:      now,
			}
			if err := uc.abrirVentana(histRepo, nuevo); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Revertir copia un registro histórico como nueva ventana vigente, con motivo
// reversion. El registro original queda intacto.
func (uc *UseCase) Revertir(ctx context.Context, historialID, userID string) (*entity.HistorialPrecio, error) {
	anterior, err := uc.histRepo.GetByID(historialID)
	if err != nil {
		return nil, err
	}
	if anterior == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.reloj()
	nuevo := &entity.HistorialPrecio{
		ID:             uuid.New().String(),
		PresentacionID: anterior.PresentacionID,
		Precio:         anterior.Precio,
		VigenteDesde:   now,
		Motivo:         entity.MotivoReversion,
		CreatedBy:      userID,
		CreatedAt:      now,
	}
	err = uc.txRunner.RunPrecios(ctx, func(histRepo repository.HistorialPrecioRepository) error {
		return uc.abrirVentana(histRepo, nuevo)
	})
	if err != nil {
		return nil, err
	}
	return nuevo, nil
}

// Vigente devuelve la ventana de precio abierta de una presentación.
func (uc *UseCase) Vigente(_ context.Context, presentacionID string) (*entity.HistorialPrecio, error) {
	vigente, err := uc.histRepo.GetVigente(presentacionID)
	if err != nil {
		return nil, err
	}
	if vigente == nil {
		return nil, domain.ErrNotFound
	}
	return vigente, nil
}

// BuscarInput filtros del buscador de historial.
type BuscarInput struct {
	SKU     string
	Desde   *time.Time
	Hasta   *time.Time
	Motivo  string
	Usuario string
	Page    dto.PageRequest
}

// Buscar devuelve la página del historial, más reciente primero.
func (uc *UseCase) Buscar(_ context.Context, input BuscarInput) (*dto.HistorialPreciosResponse, error) {
	input.Page.DefaultPage()
	filas, total, err := uc.histRepo.Buscar(repository.FiltroHistorialPrecios{
		SKU:     input.SKU,
		Desde:   input.Desde,
		Hasta:   input.Hasta,
		Motivo:  input.Motivo,
		Usuario: input.Usuario,
	}, input.Page.Limit, input.Page.Offset)
	if err != nil {
		return nil, err
	}
	resp := &dto.HistorialPreciosResponse{
		Historial: make([]dto.HistorialPrecioDTO, 0, len(filas)),
		Page:      dto.PageResponse{Limit: input.Page.Limit, Offset: input.Page.Offset, Total: total},
	}
	for _, h := range filas {
		resp.Historial = append(resp.Historial, dto.HistorialPrecioDTO{
			ID:             h.ID,
			PresentacionID: h.PresentacionID,
			Precio:         h.Precio,
			VigenteDesde:   h.VigenteDesde,
			VigenteHasta:   h.VigenteHasta,
			Motivo:         h.Motivo,
			Usuario:        h.CreatedBy,
		})
	}
	return resp, nil
}

// abrirVentana cierra la ventana vigente de la presentación en el inicio de la
// nueva y la crea. Mantiene el invariante de no solapamiento: abrir antes del
// inicio de la vigente reescribiría historia cerrada y es ErrConflict.
func (uc *UseCase) abrirVentana(histRepo repository.HistorialPrecioRepository, nuevo *entity.HistorialPrecio) error {
	vigente, err := histRepo.GetVigenteForUpdate(nuevo.PresentacionID)
	if err != nil {
		return err
	}
	if vigente != nil {
		if nuevo.VigenteDesde.Before(vigente.VigenteDesde) {
			return domain.ErrConflict
		}
		if err := histRepo.CerrarVigente(vigente.ID, nuevo.VigenteDesde); err != nil {
			return err
		}
	}
	return histRepo.Create(nuevo)
}
