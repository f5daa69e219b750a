package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/inventory"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
)

// UseCase implementa el ciclo de vida de las reservas: reservar con plan FEFO,
// liberar parcial o total, aplicar contra un documento y consultar el detalle.
//
// La planificación corre de solo lectura fuera de la transacción; al confirmar
// se recalcula el plan con las filas bloqueadas (FOR UPDATE) para que dos
// reservas concurrentes sobre los mismos lotes no sobrevendan.
type UseCase struct {
	txRunner    TxRunner
	posRepo     repository.PosicionStockRepository
	reservaRepo repository.ReservaRepository
	presRepo    repository.PresentacionRepository
	almacenRepo repository.AlmacenRepository
}

// NewUseCase construye el motor de reservas.
func NewUseCase(
	txRunner TxRunner,
	posRepo repository.PosicionStockRepository,
	reservaRepo repository.ReservaRepository,
	presRepo repository.PresentacionRepository,
	almacenRepo repository.AlmacenRepository,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		posRepo:     posRepo,
		reservaRepo: reservaRepo,
		presRepo:    presRepo,
		almacenRepo: almacenRepo,
	}
}

// ReservarInput entrada para crear una reserva.
type ReservarInput struct {
	OrigenTipo       string // anticipo | venta
	OrigenID         string
	PresentacionID   string
	AlmacenID        string
	Cantidad         decimal.Decimal
	PermitirSinStock bool
	UserID           string
}

// Reservar planifica por FEFO, revalida dentro de la transacción y mueve las
// cantidades asignadas de disponible a reservada, registrando un movimiento
// de tipo reserva por lote. Con PermitirSinStock el faltante queda como
// CantidadPendiente; sin él, el faltante aborta con ErrInsufficientStock.
func (uc *UseCase) Reservar(ctx context.Context, input ReservarInput) (*entity.Reserva, error) {
	if input.OrigenTipo != entity.OrigenAnticipo && input.OrigenTipo != entity.OrigenVenta {
		return nil, domain.ErrInvalidInput
	}
	if input.OrigenID == "" || input.PresentacionID == "" || input.AlmacenID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Cantidad.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	pres, err := uc.presRepo.GetByID(input.PresentacionID)
	if err != nil {
		return nil, err
	}
	if pres == nil {
		return nil, domain.ErrNotFound
	}
	almacen, err := uc.almacenRepo.GetByID(input.AlmacenID)
	if err != nil {
		return nil, err
	}
	if almacen == nil {
		return nil, domain.ErrNotFound
	}

	// Plan preliminar fuera de la transacción: corta temprano sin tomar locks
	// cuando no hay stock y no se permite faltante.
	candidatos, err := uc.posRepo.Candidatos(input.PresentacionID, input.AlmacenID)
	if err != nil {
		return nil, err
	}
	if _, err := inventory.PlanificarFEFO(candidatos, input.Cantidad, input.PermitirSinStock); err != nil {
		return nil, err
	}

	now := time.Now()
	reserva := &entity.Reserva{
		ID:                 uuid.New().String(),
		OrigenTipo:         input.OrigenTipo,
		OrigenID:           input.OrigenID,
		PresentacionID:     input.PresentacionID,
		AlmacenID:          input.AlmacenID,
		CantidadSolicitada: input.Cantidad,
		CantidadLiberada:   decimal.Zero,
		CantidadAplicada:   decimal.Zero,
		CantidadPendiente:  decimal.Zero,
		PermitirSinStock:   input.PermitirSinStock,
		Estado:             entity.ReservaActiva,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          input.UserID,
	}

	err = uc.txRunner.RunReservas(ctx, func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		reservaRepo repository.ReservaRepository,
	) error {
		// Revalidación dentro de la transacción: mismo plan, filas bloqueadas.
		bloqueados, err := posRepo.CandidatosForUpdate(input.PresentacionID, input.AlmacenID)
		if err != nil {
			return err
		}
		plan, err := inventory.PlanificarFEFO(bloqueados, input.Cantidad, input.PermitirSinStock)
		if err != nil {
			return err
		}
		reserva.CantidadPendiente = plan.Faltante

		for _, asig := range plan.Asignaciones {
			pos, err := posRepo.GetForUpdate(asig.LoteID)
			if err != nil {
				return err
			}
			if pos.Disponible.LessThan(asig.Cantidad) {
				return domain.ErrInsufficientStock
			}
			pos.Disponible = pos.Disponible.Sub(asig.Cantidad)
			pos.Reservada = pos.Reservada.Add(asig.Cantidad)
			pos.UpdatedAt = now
			if err := posRepo.Upsert(pos); err != nil {
				return err
			}
			if err := movRepo.Create(&entity.Movimiento{
				LoteID:       asig.LoteID,
				AlmacenID:    input.AlmacenID,
				Tipo:         entity.MovimientoReserva,
				Cantidad:     asig.Cantidad,
				ModuloOrigen: entity.ModuloReservas,
				ReferenciaID: reserva.ID,
				Fecha:        now,
				CreatedAt:    now,
				CreatedBy:    input.UserID,
			}); err != nil {
				return err
			}
			reserva.Lotes = append(reserva.Lotes, entity.ReservaLote{
				ID:               uuid.New().String(),
				ReservaID:        reserva.ID,
				LoteID:           asig.LoteID,
				Cantidad:         asig.Cantidad,
				CantidadRestante: asig.Cantidad,
			})
		}
		return reservaRepo.Create(reserva)
	})
	if err != nil {
		return nil, err
	}
	return reserva, nil
}

// Liberar devuelve cantidad de reservada a disponible, repartida entre los
// lotes en orden inverso a la asignación (el lote que vence primero queda
// reservado hasta el final). Falla con ErrConflict si excede lo reservado.
func (uc *UseCase) Liberar(ctx context.Context, reservaID string, cantidad decimal.Decimal, userID string) (*entity.Reserva, error) {
	if !cantidad.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var resultado *entity.Reserva
	err := uc.txRunner.RunReservas(ctx, func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		reservaRepo repository.ReservaRepository,
	) error {
		reserva, err := reservaRepo.GetForUpdate(reservaID)
		if err != nil {
			return err
		}
		if reserva == nil {
			return domain.ErrNotFound
		}
		if cantidad.GreaterThan(reserva.ReservadoRestante()) {
			return domain.ErrConflict
		}
		if err := uc.liberarEnTx(movRepo, posRepo, reservaRepo, reserva, cantidad, userID); err != nil {
			return err
		}
		resultado = reserva
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// LiberarTodo libera todo lo que siga reservado. Idempotente: sobre una
// reserva ya liberada o aplicada no hace nada y devuelve efecto cero.
func (uc *UseCase) LiberarTodo(ctx context.Context, reservaID, userID string) (*entity.Reserva, decimal.Decimal, error) {
	var resultado *entity.Reserva
	liberado := decimal.Zero
	err := uc.txRunner.RunReservas(ctx, func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		reservaRepo repository.ReservaRepository,
	) error {
		reserva, err := reservaRepo.GetForUpdate(reservaID)
		if err != nil {
			return err
		}
		if reserva == nil {
			return domain.ErrNotFound
		}
		restante := reserva.ReservadoRestante()
		if restante.IsZero() {
			resultado = reserva
			return nil
		}
		if err := uc.liberarEnTx(movRepo, posRepo, reservaRepo, reserva, restante, userID); err != nil {
			return err
		}
		liberado = restante
		resultado = reserva
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return resultado, liberado, nil
}

// AplicarInput entrada para consumir reserva contra un documento posterior.
type AplicarInput struct {
	ReservaID   string
	Cantidad    decimal.Decimal
	DocumentoID string
	UserID      string
}

// Aplicar consume definitivamente cantidad reservada: registra una salida con
// módulo reservas por lote (en orden FEFO) y descuenta la reservada. La
// reserva pasa a aplicada cuando su saldo reservado llega a cero. Falla con
// ErrConflict si la cantidad excede el saldo reservado.
func (uc *UseCase) Aplicar(ctx context.Context, input AplicarInput) (*entity.Reserva, error) {
	if !input.Cantidad.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var resultado *entity.Reserva
	err := uc.txRunner.RunReservas(ctx, func(
		movRepo repository.MovimientoRepository,
		posRepo repository.PosicionStockRepository,
		reservaRepo repository.ReservaRepository,
	) error {
		reserva, err := reservaRepo.GetForUpdate(input.ReservaID)
		if err != nil {
			return err
		}
		if reserva == nil {
			return domain.ErrNotFound
		}
		if input.Cantidad.GreaterThan(reserva.ReservadoRestante()) {
			return domain.ErrConflict
		}

		now := time.Now()
		restante := input.Cantidad
		for i := range reserva.Lotes {
			lote := &reserva.Lotes[i]
			if !restante.GreaterThan(decimal.Zero) {
				break
			}
			if !lote.CantidadRestante.GreaterThan(decimal.Zero) {
				continue
			}
			toma := decimal.Min(restante, lote.CantidadRestante)

			pos, err := posRepo.GetForUpdate(lote.LoteID)
			if err != nil {
				return err
			}
			pos.Reservada = pos.Reservada.Sub(toma)
			pos.UpdatedAt = now
			if err := posRepo.Upsert(pos); err != nil {
				return err
			}
			nota := ""
			if input.DocumentoID != "" {
				nota = "aplicación contra documento " + input.DocumentoID
			}
			if err := movRepo.Create(&entity.Movimiento{
				LoteID:       lote.LoteID,
				AlmacenID:    reserva.AlmacenID,
				Tipo:         entity.MovimientoSalida,
				Cantidad:     toma.Neg(),
				ModuloOrigen: entity.ModuloReservas,
				ReferenciaID: reserva.ID,
				Nota:         nota,
				Fecha:        now,
				CreatedAt:    now,
				CreatedBy:    input.UserID,
			}); err != nil {
				return err
			}
			lote.CantidadRestante = lote.CantidadRestante.Sub(toma)
			restante = restante.Sub(toma)
		}

		reserva.CantidadAplicada = reserva.CantidadAplicada.Add(input.Cantidad)
		if reserva.ReservadoRestante().IsZero() {
			reserva.Estado = entity.ReservaAplicada
		}
		reserva.UpdatedAt = now
		if err := reservaRepo.Update(reserva); err != nil {
			return err
		}
		resultado = reserva
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// Detalle devuelve la reserva con su desglose por lote.
func (uc *UseCase) Detalle(_ context.Context, reservaID string) (*entity.Reserva, error) {
	reserva, err := uc.reservaRepo.GetByID(reservaID)
	if err != nil {
		return nil, err
	}
	if reserva == nil {
		return nil, domain.ErrNotFound
	}
	return reserva, nil
}

// PorOrigen resuelve la reserva más reciente de un documento dueño.
func (uc *UseCase) PorOrigen(_ context.Context, origenTipo, origenID string) (*entity.Reserva, error) {
	reserva, err := uc.reservaRepo.GetByOrigen(origenTipo, origenID)
	if err != nil {
		return nil, err
	}
	if reserva == nil {
		return nil, domain.ErrNotFound
	}
	return reserva, nil
}

// liberarEnTx reparte la liberación entre los lotes en orden inverso a la
// asignación y actualiza posición, log y reserva. El caller ya validó el tope.
func (uc *UseCase) liberarEnTx(
	movRepo repository.MovimientoRepository,
	posRepo repository.PosicionStockRepository,
	reservaRepo repository.ReservaRepository,
	reserva *entity.Reserva,
	cantidad decimal.Decimal,
	userID string,
) error {
	now := time.Now()
	restante := cantidad
	for i := len(reserva.Lotes) - 1; i >= 0 && restante.GreaterThan(decimal.Zero); i-- {
		lote := &reserva.Lotes[i]
		if !lote.CantidadRestante.GreaterThan(decimal.Zero) {
			continue
		}
		toma := decimal.Min(restante, lote.CantidadRestante)

		pos, err := posRepo.GetForUpdate(lote.LoteID)
		if err != nil {
			return err
		}
		pos.Reservada = pos.Reservada.Sub(toma)
		pos.Disponible = pos.Disponible.Add(toma)
		pos.UpdatedAt = now
		if err := posRepo.Upsert(pos); err != nil {
			return err
		}
		if err := movRepo.Create(&entity.Movimiento{
			LoteID:       lote.LoteID,
			AlmacenID:    reserva.AlmacenID,
			Tipo:         entity.MovimientoLiberacion,
			Cantidad:     toma,
			ModuloOrigen: entity.ModuloReservas,
			ReferenciaID: reserva.ID,
			Fecha:        now,
			CreatedAt:    now,
			CreatedBy:    userID,
		}); err != nil {
			return err
		}
		lote.CantidadRestante = lote.CantidadRestante.Sub(toma)
		restante = restante.Sub(toma)
	}

	reserva.CantidadLiberada = reserva.CantidadLiberada.Add(cantidad)
	if reserva.ReservadoRestante().IsZero() {
		reserva.Estado = entity.ReservaLiberada
	} else {
		reserva.Estado = entity.ReservaParcialmenteLiberada
	}
	reserva.UpdatedAt = now
	return reservaRepo.Update(reserva)
}
