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

// RecepcionUseCase registra el ingreso de mercadería contra órdenes de compra:
// crea o reutiliza lotes, materializa posiciones, escribe los movimientos de
// ingreso y avanza el estado de la orden según lo recibido.
type RecepcionUseCase struct {
	txRunner      TxRunner
	recepcionRepo repository.RecepcionRepository
	almacenRepo   repository.AlmacenRepository
}

// NewRecepcionUseCase construye el caso de uso de recepciones.
func NewRecepcionUseCase(
	txRunner TxRunner,
	recepcionRepo repository.RecepcionRepository,
	almacenRepo repository.AlmacenRepository,
) *RecepcionUseCase {
	return &RecepcionUseCase{
		txRunner:      txRunner,
		recepcionRepo: recepcionRepo,
		almacenRepo:   almacenRepo,
	}
}

// ItemRecepcionInput un renglón recibido contra una línea de compra.
type ItemRecepcionInput struct {
	CompraDetalleID  string
	NumeroLote       string
	FechaFabricacion *time.Time
	FechaVencimiento *time.Time
	Cantidad         decimal.Decimal
}

// RegistrarRecepcionInput entrada para registrar una recepción.
type RegistrarRecepcionInput struct {
	CompraID        string
	AlmacenID       string
	NumeroDocumento string
	Items           []ItemRecepcionInput
	UserID          string
}

// Registrar crea una recepción abierta contra una orden aprobada o en curso y
// procesa sus ítems iniciales. La orden avanza a parcialmente_recibida, o a
// cerrada cuando todas sus líneas quedan completas.
func (uc *RecepcionUseCase) Registrar(ctx context.Context, input RegistrarRecepcionInput) (*entity.Recepcion, error) {
	if input.CompraID == "" || input.AlmacenID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	almacen, err := uc.almacenRepo.GetByID(input.AlmacenID)
	if err != nil {
		return nil, err
	}
	if almacen == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	recepcion := &entity.Recepcion{
		ID:              uuid.New().String(),
		CompraID:        input.CompraID,
		AlmacenID:       input.AlmacenID,
		NumeroDocumento: input.NumeroDocumento,
		Estado:          entity.RecepcionAbierta,
		CreatedAt:       now,
		CreatedBy:       input.UserID,
	}

	err = uc.txRunner.RunCompras(ctx, func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		loteRepo repository.LoteRepository,
		compraRepo repository.CompraRepository,
		recepcionRepo repository.RecepcionRepository,
	) error {
		compra, err := compraRepo.GetForUpdate(input.CompraID)
		if err != nil {
			return err
		}
		if compra == nil {
			return domain.ErrNotFound
		}
		if compra.Estado != entity.CompraAprobada && compra.Estado != entity.CompraParcialmenteRecibida {
			return domain.ErrIllegalState
		}
		if err := recepcionRepo.Create(recepcion); err != nil {
			return err
		}
		for _, item := range input.Items {
			if err := uc.procesarItem(movRepo, posRepo, loteRepo, compraRepo, recepcionRepo, compra, recepcion, item, input.UserID, now); err != nil {
				return err
			}
		}
		return uc.avanzarCompra(compraRepo, compra)
	})
	if err != nil {
		return nil, err
	}
	return recepcion, nil
}

// AgregarItem procesa un ítem adicional sobre una recepción abierta.
func (uc *RecepcionUseCase) AgregarItem(ctx context.Context, recepcionID string, item ItemRecepcionInput, userID string) (*entity.Recepcion, error) {
	var resultado *entity.Recepcion
	err := uc.txRunner.RunCompras(ctx, func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		loteRepo repository.LoteRepository,
		compraRepo repository.CompraRepository,
		recepcionRepo repository.RecepcionRepository,
	) error {
		recepcion, err := recepcionRepo.GetForUpdate(recepcionID)
		if err != nil {
			return err
		}
		if recepcion == nil {
			return domain.ErrNotFound
		}
		if recepcion.Estado != entity.RecepcionAbierta {
			return domain.ErrIllegalState
		}
		compra, err := compraRepo.GetForUpdate(recepcion.CompraID)
		if err != nil {
			return err
		}
		if compra == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		if err := uc.procesarItem(movRepo, posRepo, loteRepo, compraRepo, recepcionRepo, compra, recepcion, item, userID, now); err != nil {
			return err
		}
		if err := uc.avanzarCompra(compraRepo, compra); err != nil {
			return err
		}
		resultado = recepcion
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// Cerrar marca la recepción como cerrada; no admite más ítems.
func (uc *RecepcionUseCase) Cerrar(ctx context.Context, recepcionID string) (*entity.Recepcion, error) {
	var resultado *entity.Recepcion
	err := uc.txRunner.RunCompras(ctx, func(
		_ repository.MovimientoRepository,
		_ repository.PosicionStockRepository,
		_ repository.LoteRepository,
		_ repository.CompraRepository,
		recepcionRepo repository.RecepcionRepository,
	) error {
		recepcion, err := recepcionRepo.GetForUpdate(recepcionID)
		if err != nil {
			return err
		}
		if recepcion == nil {
			return domain.ErrNotFound
		}
		if recepcion.Estado != entity.RecepcionAbierta {
			return domain.ErrIllegalState
		}
		if err := recepcionRepo.UpdateEstado(recepcionID, entity.RecepcionCerrada); err != nil {
			return err
		}
		recepcion.Estado = entity.RecepcionCerrada
		resultado = recepcion
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// GetByID devuelve la recepción con sus ítems.
func (uc *RecepcionUseCase) GetByID(_ context.Context, recepcionID string) (*entity.Recepcion, error) {
	recepcion, err := uc.recepcionRepo.GetByID(recepcionID)
	if err != nil {
		return nil, err
	}
	if recepcion == nil {
		return nil, domain.ErrNotFound
	}
	return recepcion, nil
}

// procesarItem valida el renglón contra su línea de compra, resuelve el lote
// por clave natural (creándolo si no existe; un número de lote existente con
// otras fechas es ErrConflict), suma a la posición y deja el movimiento de
// ingreso y el detalle de recepción.
func (uc *RecepcionUseCase) procesarItem(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	loteRepo repository.LoteRepository,
	compraRepo repository.CompraRepository,
	recepcionRepo repository.RecepcionRepository,
	compra *entity.Compra,
	recepcion *entity.Recepcion,
	item ItemRecepcionInput,
	userID string,
	now time.Time,
) error {
	if item.NumeroLote == "" || !item.Cantidad.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	var detalle *entity.CompraDetalle
	for i := range compra.Detalles {
		if compra.Detalles[i].ID == item.CompraDetalleID {
			detalle = &compra.Detalles[i]
			break
		}
	}
	if detalle == nil {
		return domain.ErrInvalidInput
	}
	// Sobre-recepción: el acumulado nunca supera lo pedido en la línea.
	acumulado := detalle.CantidadRecibida.Add(item.Cantidad)
	if acumulado.GreaterThan(detalle.Cantidad) {
		return domain.ErrConflict
	}

	lote, err := loteRepo.FindByClave(detalle.PresentacionID, recepcion.AlmacenID, item.NumeroLote)
	if err != nil {
		return err
	}
	if lote != nil && !lote.MismasFechas(item.FechaFabricacion, item.FechaVencimiento) {
		// Mismo número de lote con otras fechas es otra partida: mezclarlas
		// corrompería el orden FEFO y las alertas de vencimiento.
		return domain.ErrConflict
	}
	if lote == nil {
		lote = &entity.Lote{
			ID:               uuid.New().String(),
			PresentacionID:   detalle.PresentacionID,
			AlmacenID:        recepcion.AlmacenID,
			NumeroLote:       item.NumeroLote,
			FechaFabricacion: item.FechaFabricacion,
			FechaVencimiento: item.FechaVencimiento,
			CantidadInicial:  item.Cantidad,
			CreatedAt:        now,
		}
		if err := loteRepo.Create(lote); err != nil {
			return err
		}
	}

	pos, err := posRepo.GetForUpdate(lote.ID)
	if err != nil {
		return err
	}
	pos.AlmacenID = recepcion.AlmacenID
	pos.Disponible = pos.Disponible.Add(item.Cantidad)
	pos.UpdatedAt = now
	if err := posRepo.Upsert(pos); err != nil {
		return err
	}

	if err := movRepo.Create(&entity.Movimiento{
		LoteID:       lote.ID,
		AlmacenID:    recepcion.AlmacenID,
		Tipo:         entity.MovimientoIngreso,
		Cantidad:     item.Cantidad,
		ModuloOrigen: entity.ModuloCompras,
		ReferenciaID: recepcion.ID,
		Fecha:        now,
		CreatedAt:    now,
		CreatedBy:    userID,
	}); err != nil {
		return err
	}

	detalleRecepcion := entity.RecepcionDetalle{
		ID:              uuid.New().String(),
		RecepcionID:     recepcion.ID,
		CompraDetalleID: detalle.ID,
		LoteID:          lote.ID,
		Cantidad:        item.Cantidad,
	}
	if err := recepcionRepo.AgregarDetalle(&detalleRecepcion); err != nil {
		return err
	}
	recepcion.Detalles = append(recepcion.Detalles, detalleRecepcion)

	detalle.CantidadRecibida = acumulado
	return compraRepo.ActualizarRecibido(detalle.ID, acumulado)
}

// avanzarCompra deriva el estado de la orden del acumulado de sus líneas:
// cerrada cuando todas están completas, parcialmente_recibida en otro caso.
func (uc *RecepcionUseCase) avanzarCompra(compraRepo repository.CompraRepository, compra *entity.Compra) error {
	destino := entity.CompraCerrada
	for _, d := range compra.Detalles {
		if !d.RecibidaCompleta() {
			destino = entity.CompraParcialmenteRecibida
			break
		}
	}
	if compra.Estado == destino {
		return nil
	}
	if !transicionValida(compra.Estado, destino) {
		return domain.ErrIllegalState
	}
	if err := compraRepo.UpdateEstado(compra.ID, destino); err != nil {
		return err
	}
	compra.Estado = destino
	return nil
}
