package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// RegistrarMovimientoUseCase registra movimientos del libro de inventario
// (ingreso, salida, ajuste, transferencia) de forma transaccional, con bloqueo
// de fila (SELECT FOR UPDATE) sobre la posición del lote y Commit/Rollback.
// Los tipos reserva/liberacion pertenecen al motor de reservas y se rechazan.
type RegistrarMovimientoUseCase struct {
	txRunner    TxRunner
	loteRepo    repository.LoteRepository
	almacenRepo repository.AlmacenRepository
}

// NewRegistrarMovimientoUseCase construye el caso de uso.
func NewRegistrarMovimientoUseCase(
	txRunner TxRunner,
	loteRepo repository.LoteRepository,
	almacenRepo repository.AlmacenRepository,
) *RegistrarMovimientoUseCase {
	return &RegistrarMovimientoUseCase{
		txRunner:    txRunner,
		loteRepo:    loteRepo,
		almacenRepo: almacenRepo,
	}
}

// MovimientoInput entrada para registrar un movimiento.
// Cantidad positiva en ingreso/salida/transferencia; con signo en ajuste.
// AlmacenDestinoID solo aplica a transferencias.
type MovimientoInput struct {
	LoteID           string
	AlmacenDestinoID string
	Tipo             string
	Cantidad         decimal.Decimal
	ModuloOrigen     string
	ReferenciaID     string
	Nota             string
	UserID           string
}

// Registrar valida la entrada, abre la transacción y aplica el movimiento.
// Un débito que dejaría el disponible bajo cero falla con ErrInsufficientStock
// y no escribe nada.
func (uc *RegistrarMovimientoUseCase) Registrar(ctx context.Context, input MovimientoInput) error {
	switch input.Tipo {
	case entity.MovimientoIngreso, entity.MovimientoSalida, entity.MovimientoTransferencia:
		if !input.Cantidad.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.MovimientoAjuste:
		if input.Cantidad.IsZero() {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	if input.LoteID == "" {
		return domain.ErrInvalidInput
	}

	lote, err := uc.loteRepo.GetByID(input.LoteID)
	if err != nil {
		return err
	}
	if lote == nil {
		return domain.ErrNotFound
	}

	if input.Tipo == entity.MovimientoTransferencia {
		if input.AlmacenDestinoID == "" || input.AlmacenDestinoID == lote.AlmacenID {
			return domain.ErrInvalidInput
		}
		destino, err := uc.almacenRepo.GetByID(input.AlmacenDestinoID)
		if err != nil {
			return err
		}
		if destino == nil {
			return domain.ErrNotFound
		}
	}

	if input.ModuloOrigen == "" {
		input.ModuloOrigen = entity.ModuloInventario
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		loteRepo repository.LoteRepository,
	) error {
		switch input.Tipo {
		case entity.MovimientoIngreso:
			return uc.doIngreso(movRepo, posRepo, lote, input, now)
		case entity.MovimientoSalida:
			return uc.doSalida(movRepo, posRepo, lote, input, now)
		case entity.MovimientoAjuste:
			return uc.doAjuste(movRepo, posRepo, lote, input, now)
		case entity.MovimientoTransferencia:
			return uc.doTransferencia(movRepo, posRepo, loteRepo, lote, input, now)
		}
		return domain.ErrInvalidInput
	})
}

// doIngreso bloquea la posición, suma disponible y registra el movimiento.
func (uc *RegistrarMovimientoUseCase) doIngreso(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	lote *entity.Lote,
	input MovimientoInput,
	now time.Time,
) error {
	pos, err := posRepo.GetForUpdate(lote.ID)
	if err != nil {
		return err
	}
	pos.AlmacenID = lote.AlmacenID
	pos.Disponible = pos.Disponible.Add(input.Cantidad)
	pos.UpdatedAt = now
	if err := posRepo.Upsert(pos); err != nil {
		return err
	}
	return movRepo.Create(&entity.Movimiento{
		LoteID:       lote.ID,
		AlmacenID:    lote.AlmacenID,
		Tipo:         entity.MovimientoIngreso,
		Cantidad:     input.Cantidad,
		ModuloOrigen: input.ModuloOrigen,
		ReferenciaID: input.ReferenciaID,
		Nota:         input.Nota,
		Fecha:        now,
		CreatedAt:    now,
		CreatedBy:    input.UserID,
	})
}

// doSalida bloquea la posición, verifica disponible >= cantidad y resta.
func (uc *RegistrarMovimientoUseCase) doSalida(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	lote *entity.Lote,
	input MovimientoInput,
	now time.Time,
) error {
	pos, err := posRepo.GetForUpdate(lote.ID)
	if err != nil {
		return err
	}
	if pos.Disponible.LessThan(input.Cantidad) {
		return domain.ErrInsufficientStock
	}
	pos.Disponible = pos.Disponible.Sub(input.Cantidad)
	pos.UpdatedAt = now
	if err := posRepo.Upsert(pos); err != nil {
		return err
	}
	return movRepo.Create(&entity.Movimiento{
		LoteID:       lote.ID,
		AlmacenID:    lote.AlmacenID,
		Tipo:         entity.MovimientoSalida,
		Cantidad:     input.Cantidad.Neg(),
		ModuloOrigen: input.ModuloOrigen,
		ReferenciaID: input.ReferenciaID,
		Nota:         input.Nota,
		Fecha:        now,
		CreatedAt:    now,
		CreatedBy:    input.UserID,
	})
}

// doAjuste aplica la cantidad con signo; un ajuste negativo no puede dejar el
// disponible bajo cero.
func (uc *RegistrarMovimientoUseCase) doAjuste(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	lote *entity.Lote,
	input MovimientoInput,
	now time.Time,
) error {
	pos, err := posRepo.GetForUpdate(lote.ID)
	if err != nil {
		return err
	}
	nuevo := pos.Disponible.Add(input.Cantidad)
	if nuevo.IsNegative() {
		return domain.ErrInsufficientStock
	}
	pos.AlmacenID = lote.AlmacenID
	pos.Disponible = nuevo
	pos.UpdatedAt = now
	if err := posRepo.Upsert(pos); err != nil {
		return err
	}
	return movRepo.Create(&entity.Movimiento{
		LoteID:       lote.ID,
		AlmacenID:    lote.AlmacenID,
		Tipo:         entity.MovimientoAjuste,
		Cantidad:     input.Cantidad,
		ModuloOrigen: input.ModuloOrigen,
		ReferenciaID: input.ReferenciaID,
		Nota:         input.Nota,
		Fecha:        now,
		CreatedAt:    now,
		CreatedBy:    input.UserID,
	})
}

// doTransferencia resta del lote origen y suma en el lote homólogo del almacén
// destino (mismo número de lote y fechas), creándolo si no existe. Las dos
// filas del log comparten ReferenciaID.
func (uc *RegistrarMovimientoUseCase) doTransferencia(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	loteRepo repository.LoteRepository,
	origen *entity.Lote,
	input MovimientoInput,
	now time.Time,
) error {
	posOrigen, err := posRepo.GetForUpdate(origen.ID)
	if err != nil {
		return err
	}
	if posOrigen.Disponible.LessThan(input.Cantidad) {
		return domain.ErrInsufficientStock
	}

	destino, err := loteRepo.FindByClave(origen.PresentacionID, input.AlmacenDestinoID, origen.NumeroLote)
	if err != nil {
		return err
	}
	if destino != nil && !destino.MismasFechas(origen.FechaFabricacion, origen.FechaVencimiento) {
		// El destino tiene un lote con el mismo número pero otras fechas: es
		// otra partida y no se mezcla.
		return domain.ErrConflict
	}
	if destino == nil {
		destino = &entity.Lote{
			ID:               uuid.New().String(),
			PresentacionID:   origen.PresentacionID,
			AlmacenID:        input.AlmacenDestinoID,
			NumeroLote:       origen.NumeroLote,
			FechaFabricacion: origen.FechaFabricacion,
			FechaVencimiento: origen.FechaVencimiento,
			CantidadInicial:  decimal.Zero,
			CreatedAt:        now,
		}
		if err := loteRepo.Create(destino); err != nil {
			return err
		}
	}

	posDestino, err := posRepo.GetForUpdate(destino.ID)
	if err != nil {
		return err
	}

	posOrigen.Disponible = posOrigen.Disponible.Sub(input.Cantidad)
	posOrigen.UpdatedAt = now
	posDestino.AlmacenID = destino.AlmacenID
	posDestino.Disponible = posDestino.Disponible.Add(input.Cantidad)
	posDestino.UpdatedAt = now
	if err := posRepo.Upsert(posOrigen); err != nil {
		return err
	}
	if err := posRepo.Upsert(posDestino); err != nil {
		return err
	}

	referencia := input.ReferenciaID
	if referencia == "" {
		referencia = uuid.New().String()
	}
	salida := &entity.Movimiento{
		LoteID:           origen.ID,
		AlmacenID:        origen.AlmacenID,
		AlmacenDestinoID: &destino.AlmacenID,
		Tipo:             entity.MovimientoTransferencia,
		Cantidad:         input.Cantidad.Neg(),
		ModuloOrigen:     input.ModuloOrigen,
		ReferenciaID:     referencia,
		Nota:             input.Nota,
		Fecha:            now,
		CreatedAt:        now,
		CreatedBy:        input.UserID,
	}
	if err := movRepo.Create(salida); err != nil {
		return err
	}
	entrada := &entity.Movimiento{
		LoteID:           destino.ID,
		AlmacenID:        destino.AlmacenID,
		AlmacenDestinoID: &destino.AlmacenID,
		Tipo:             entity.MovimientoTransferencia,
		Cantidad:         input.Cantidad,
		ModuloOrigen:     input.ModuloOrigen,
		ReferenciaID:     referencia,
		Nota:             input.Nota,
		Fecha:            now,
		CreatedAt:        now,
		CreatedBy:        input.UserID,
	}
	return movRepo.Create(entrada)
}
