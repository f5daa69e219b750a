package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// transicionesCompra es la tabla de transiciones válidas de una orden de
// compra. Todo cambio de estado, manual o derivado de recepciones, pasa por
// esta tabla; lo que no figura es ErrIllegalState.
var transicionesCompra = map[string][]string{
	entity.CompraBorrador:             {entity.CompraAprobada, entity.CompraAnulada},
	entity.CompraAprobada:             {entity.CompraParcialmenteRecibida, entity.CompraCerrada, entity.CompraAnulada},
	entity.CompraParcialmenteRecibida: {entity.CompraParcialmenteRecibida, entity.CompraCerrada},
	entity.CompraCerrada:              {},
	entity.CompraAnulada:              {},
}

func transicionValida(desde, hacia string) bool {
	for _, e := range transicionesCompra[desde] {
		if e == hacia {
			return true
		}
	}
	return false
}

// CompraUseCase gestiona las órdenes de compra: creación en borrador, edición
// de líneas, cambio de estado y consulta.
type CompraUseCase struct {
	txRunner   TxRunner
	compraRepo repository.CompraRepository
	presRepo   repository.PresentacionRepository
	monedaRepo repository.MonedaRepository
}

// NewCompraUseCase construye el caso de uso de compras.
func NewCompraUseCase(
	txRunner TxRunner,
	compraRepo repository.CompraRepository,
	presRepo repository.PresentacionRepository,
	monedaRepo repository.MonedaRepository,
) *CompraUseCase {
	return &CompraUseCase{
		txRunner:   txRunner,
		compraRepo: compraRepo,
		presRepo:   presRepo,
		monedaRepo: monedaRepo,
	}
}

// DetalleInput línea de compra a agregar.
type DetalleInput struct {
	PresentacionID       string
	Cantidad             decimal.Decimal
	CostoUnitario        decimal.Decimal
	FechaEstimadaLlegada *time.Time
}

// CrearCompraInput entrada para crear una orden de compra.
type CrearCompraInput struct {
	ProveedorID string
	MonedaID    string
	TipoCambio  decimal.Decimal
	Detalles    []DetalleInput
	UserID      string
}

// Crear registra una orden nueva en estado borrador, con sus líneas iniciales
// si vienen.
func (uc *CompraUseCase) Crear(ctx context.Context, input CrearCompraInput) (*entity.Compra, error) {
	if input.ProveedorID == "" || input.MonedaID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.TipoCambio.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	moneda, err := uc.monedaRepo.GetByID(input.MonedaID)
	if err != nil {
		return nil, err
	}
	if moneda == nil {
		return nil, domain.ErrNotFound
	}
	detalles, err := uc.validarDetalles(input.Detalles)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	compra := &entity.Compra{
		ID:          uuid.New().String(),
		ProveedorID: input.ProveedorID,
		MonedaID:    input.MonedaID,
		TipoCambio:  input.TipoCambio,
		Estado:      entity.CompraBorrador,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   input.UserID,
	}
	for i := range detalles {
		detalles[i].CompraID = compra.ID
	}
	compra.Detalles = detalles

	err = uc.txRunner.RunCompras(ctx, func(
		_ repository.MovimientoRepository,
		_ repository.PosicionStockRepository,
		_ repository.LoteRepository,
		compraRepo repository.CompraRepository,
		_ repository.RecepcionRepository,
	) error {
		if err := compraRepo.Create(compra); err != nil {
			return err
		}
		for i := range compra.Detalles {
			if err := compraRepo.AgregarDetalle(&compra.Detalles[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return compra, nil
}

// AgregarDetalle agrega una línea a una orden en borrador.
func (uc *CompraUseCase) AgregarDetalle(ctx context.Context, compraID string, input DetalleInput) (*entity.Compra, error) {
	detalles, err := uc.validarDetalles([]DetalleInput{input})
	if err != nil {
		return nil, err
	}
	var resultado *entity.Compra
	err = uc.txRunner.RunCompras(ctx, func(
		_ repository.MovimientoRepository,
		_ repository.PosicionStockRepository,
		_ repository.LoteRepository,
		compraRepo repository.CompraRepository,
		_ repository.RecepcionRepository,
	) error {
		compra, err := compraRepo.GetForUpdate(compraID)
		if err != nil {
			return err
		}
		if compra == nil {
			return domain.ErrNotFound
		}
		if compra.Estado != entity.CompraBorrador {
			return domain.ErrIllegalState
		}
		detalle := detalles[0]
		detalle.CompraID = compra.ID
		if err := compraRepo.AgregarDetalle(&detalle); err != nil {
			return err
		}
		compra.Detalles = append(compra.Detalles, detalle)
		resultado = compra
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// EliminarDetalle quita una línea de una orden en borrador.
func (uc *CompraUseCase) EliminarDetalle(ctx context.Context, compraID, detalleID string) error {
	return uc.txRunner.RunCompras(ctx, func(
		_ repository.MovimientoRepository,
		_ repository.PosicionStockRepository,
		_ repository.LoteRepository,
		compraRepo repository.CompraRepository,
		_ repository.RecepcionRepository,
	) error {
		compra, err := compraRepo.GetForUpdate(compraID)
		if err != nil {
			return err
		}
		if compra == nil {
			return domain.ErrNotFound
		}
		if compra.Estado != entity.CompraBorrador {
			return domain.ErrIllegalState
		}
		encontrado := false
		for _, d := range compra.Detalles {
			if d.ID == detalleID {
				encontrado = true
				break
			}
		}
		if !encontrado {
			return domain.ErrNotFound
		}
		return compraRepo.EliminarDetalle(detalleID)
	})
}

// Eliminar borra una orden en borrador sin líneas. Con líneas es ErrConflict:
// primero hay que vaciarla.
func (uc *CompraUseCase) Eliminar(ctx context.Context, compraID string) error {
	return uc.txRunner.RunCompras(ctx, func(
		_ repository.MovimientoRepository,
		_ repository.PosicionStockRepository,
		_ repository.LoteRepository,
		compraRepo repository.CompraRepository,
		_ repository.RecepcionRepository,
	) error {
		compra, err := compraRepo.GetForUpdate(compraID)
		if err != nil {
			return err
		}
		if compra == nil {
			return domain.ErrNotFound
		}
		if compra.Estado != entity.CompraBorrador {
			return domain.ErrIllegalState
		}
		if len(compra.Detalles) > 0 {
			return domain.ErrConflict
		}
		return compraRepo.Delete(compraID)
	})
}

// CambiarEstado aplica una transición manual de la orden según la tabla.
// El estado parcialmente_recibida no se fija a mano: lo deriva la recepción.
// Anular exige que ninguna línea tenga cantidades recibidas.
func (uc *CompraUseCase) CambiarEstado(ctx context.Context, compraID, nuevoEstado string) (*entity.Compra, error) {
	switch nuevoEstado {
	case entity.CompraAprobada, entity.CompraCerrada, entity.CompraAnulada:
	case entity.CompraParcialmenteRecibida:
		return nil, domain.ErrIllegalState
	default:
		return nil, domain.ErrInvalidInput
	}
	var resultado *entity.Compra
	err := uc.txRunner.RunCompras(ctx, func(
		_ repository.MovimientoRepository,
		_ repository.PosicionStockRepository,
		_ repository.LoteRepository,
		compraRepo repository.CompraRepository,
		_ repository.RecepcionRepository,
	) error {
		compra, err := compraRepo.GetForUpdate(compraID)
		if err != nil {
			return err
		}
		if compra == nil {
			return domain.ErrNotFound
		}
		if !transicionValida(compra.Estado, nuevoEstado) {
			return domain.ErrIllegalState
		}
		if nuevoEstado == entity.CompraAprobada && len(compra.Detalles) == 0 {
			return domain.ErrConflict
		}
		if nuevoEstado == entity.CompraAnulada {
			for _, d := range compra.Detalles {
				if d.CantidadRecibida.GreaterThan(decimal.Zero) {
					return domain.ErrIllegalState
				}
			}
		}
		if err := compraRepo.UpdateEstado(compraID, nuevoEstado); err != nil {
			return err
		}
		compra.Estado = nuevoEstado
		resultado = compra
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// GetByID devuelve la orden con sus líneas.
func (uc *CompraUseCase) GetByID(_ context.Context, compraID string) (*entity.Compra, error) {
	compra, err := uc.compraRepo.GetByID(compraID)
	if err != nil {
		return nil, err
	}
	if compra == nil {
		return nil, domain.ErrNotFound
	}
	return compra, nil
}

func (uc *CompraUseCase) validarDetalles(entradas []DetalleInput) ([]entity.CompraDetalle, error) {
	detalles := make([]entity.CompraDetalle, 0, len(entradas))
	for _, in := range entradas {
		if in.PresentacionID == "" {
			return nil, domain.ErrInvalidInput
		}
		if !in.Cantidad.GreaterThan(decimal.Zero) || in.CostoUnitario.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		pres, err := uc.presRepo.GetByID(in.PresentacionID)
		if err != nil {
			return nil, err
		}
		if pres == nil {
			return nil, domain.ErrNotFound
		}
		detalles = append(detalles, entity.CompraDetalle{
			ID:                   uuid.New().String(),
			PresentacionID:       in.PresentacionID,
			Cantidad:             in.Cantidad,
			CostoUnitario:        in.CostoUnitario,
			FechaEstimadaLlegada: in.FechaEstimadaLlegada,
			CantidadRecibida:     decimal.Zero,
		})
	}
	return detalles, nil
}
