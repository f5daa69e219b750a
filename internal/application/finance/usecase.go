package finance

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

// UseCase gestiona los tipos de cambio: registro append-only de tasas por par
// de monedas, consulta de la vigente a una fecha y conversión de montos.
type UseCase struct {
	tcRepo     repository.TipoCambioRepository
	monedaRepo repository.MonedaRepository
	reloj      func() time.Time
}

// NewUseCase construye el caso de uso de finanzas. reloj nil usa time.Now.
func NewUseCase(tcRepo repository.TipoCambioRepository, monedaRepo repository.MonedaRepository, reloj func() time.Time) *UseCase {
	if reloj == nil {
		reloj = time.Now
	}
	return &UseCase{tcRepo: tcRepo, monedaRepo: monedaRepo, reloj: reloj}
}

// CrearInput entrada para registrar una tasa.
type CrearInput struct {
	MonedaOrigenID  string
	MonedaDestinoID string
	FechaVigencia   time.Time
	Tasa            decimal.Decimal
	UserID          string
}

// Crear registra una tasa nueva para el par. La tasa debe ser positiva y las
// monedas distintas y existentes. Un duplicado exacto de par y fecha de
// vigencia es ErrDuplicate.
func (uc *UseCase) Crear(ctx context.Context, input CrearInput) (*entity.TipoCambio, error) {
	if err := uc.validar(input); err != nil {
		return nil, err
	}
	tc := &entity.TipoCambio{
		ID:              uuid.New().String(),
		MonedaOrigenID:  input.MonedaOrigenID,
		MonedaDestinoID: input.MonedaDestinoID,
		FechaVigencia:   input.FechaVigencia,
		Tasa:            input.Tasa,
		CreatedAt:       uc.reloj(),
		CreatedBy:       input.UserID,
	}
	if err := uc.tcRepo.Create(tc); err != nil {
		return nil, err
	}
	return tc, nil
}

// CrearSiNoExiste registra la tasa solo si el par no tiene ya una con esa
// fecha de vigencia. Devuelve true si la creó.
func (uc *UseCase) CrearSiNoExiste(ctx context.Context, input CrearInput) (*entity.TipoCambio, bool, error) {
	if err := uc.validar(input); err != nil {
		return nil, false, err
	}
	existe, err := uc.tcRepo.ExisteEnFecha(input.MonedaOrigenID, input.MonedaDestinoID, input.FechaVigencia)
	if err != nil {
		return nil, false, err
	}
	if existe {
		return nil, false, nil
	}
	tc, err := uc.Crear(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return tc, true, nil
}

// Vigente devuelve la tasa vigente del par a la fecha dada (la de mayor fecha
// de vigencia menor o igual). Sin tasa registrada a esa fecha es ErrNotFound.
func (uc *UseCase) Vigente(_ context.Context, origenID, destinoID string, fecha *time.Time) (*entity.TipoCambio, error) {
	if origenID == "" || destinoID == "" {
		return nil, domain.ErrInvalidInput
	}
	f := uc.reloj()
	if fecha != nil {
		f = *fecha
	}
	tc, err := uc.tcRepo.Vigente(origenID, destinoID, f)
	if err != nil {
		return nil, err
	}
	if tc == nil {
		return nil, domain.ErrNotFound
	}
	return tc, nil
}

// Convertir aplica al monto la tasa vigente del par a la fecha.
func (uc *UseCase) Convertir(ctx context.Context, origenID, destinoID string, monto decimal.Decimal, fecha *time.Time) (*dto.ConversionResponse, error) {
	if monto.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	tc, err := uc.Vigente(ctx, origenID, destinoID, fecha)
	if err != nil {
		return nil, err
	}
	return &dto.ConversionResponse{
		MonedaOrigenID:  origenID,
		MonedaDestinoID: destinoID,
		Monto:           monto,
		TasaUsada:       tc.Tasa,
		Convertido:      monto.Mul(tc.Tasa),
	}, nil
}

// Historial lista las tasas del par por fecha de vigencia descendente.
// Origen y destino vacíos listan todos los pares.
func (uc *UseCase) Historial(_ context.Context, origenID, destinoID string, page dto.PageRequest) (*dto.TiposCambioResponse, error) {
	page.DefaultPage()
	tasas, total, err := uc.tcRepo.Historial(origenID, destinoID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	resp := &dto.TiposCambioResponse{
		Tasas: make([]dto.TipoCambioDTO, 0, len(tasas)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, tc := range tasas {
		resp.Tasas = append(resp.Tasas, dto.TipoCambioDTO{
			ID:              tc.ID,
			MonedaOrigenID:  tc.MonedaOrigenID,
			MonedaDestinoID: tc.MonedaDestinoID,
			FechaVigencia:   tc.FechaVigencia,
			Tasa:            tc.Tasa,
		})
	}
	return resp, nil
}

func (uc *UseCase) validar(input CrearInput) error {
	if input.MonedaOrigenID == "" || input.MonedaDestinoID == "" {
		return domain.ErrInvalidInput
	}
	if input.MonedaOrigenID == input.MonedaDestinoID {
		return domain.ErrInvalidInput
	}
	if !input.Tasa.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if input.FechaVigencia.IsZero() {
		return domain.ErrInvalidInput
	}
	for _, id := range []string{input.MonedaOrigenID, input.MonedaDestinoID} {
		moneda, err := uc.monedaRepo.GetByID(id)
		if err != nil {
			return err
		}
		if moneda == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}
