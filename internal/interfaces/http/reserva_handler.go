package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	"github.com/grupodelsur/distribuidora-api/internal/application/reservation"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
)

// ReservaHandler maneja las peticiones HTTP del motor de reservas.
type ReservaHandler struct {
	reservas *reservation.UseCase
}

// NewReservaHandler construye el handler.
func NewReservaHandler(reservas *reservation.UseCase) *ReservaHandler {
	return &ReservaHandler{reservas: reservas}
}

// ReservarPorAnticipo godoc
// @Summary      Reservar inventario contra un anticipo
// @Description  Asigna lotes por FEFO y mueve las cantidades de disponible a
// @Description  reservada. Con ?permitir_sin_stock=true el faltante queda como
// @Description  cantidad pendiente en lugar de abortar.
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path   string  true  "ID del anticipo"
// @Param        permitir_sin_stock  query  bool  false  "Aceptar faltante como pendiente"
// @Param        body  body   dto.ReservarRequest  true  "presentacion_id, almacen_id, cantidad"
// @Success      201   {object}  dto.ReservaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/anticipos/{id}/reservas [post]
func (h *ReservaHandler) ReservarPorAnticipo(c *fiber.Ctx) error {
	var in dto.ReservarRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	reserva, err := h.reservas.Reservar(c.Context(), reservation.ReservarInput{
		OrigenTipo:       entity.OrigenAnticipo,
		OrigenID:         c.Params("id"),
		PresentacionID:   in.PresentacionID,
		AlmacenID:        in.AlmacenID,
		Cantidad:         in.Cantidad,
		PermitirSinStock: c.QueryBool("permitir_sin_stock"),
		UserID:           GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reservaToDTO(reserva))
}

// ReservaDeAnticipo godoc
// @Summary      Reserva vigente de un anticipo
// @Tags         reservas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del anticipo"
// @Success      200  {object}  dto.ReservaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/anticipos/{id}/reservas [get]
func (h *ReservaHandler) ReservaDeAnticipo(c *fiber.Ctx) error {
	reserva, err := h.reservas.PorOrigen(c.Context(), entity.OrigenAnticipo, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reservaToDTO(reserva))
}

// Detalle godoc
// @Summary      Detalle de una reserva con desglose por lote
// @Tags         reservas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservas/{id} [get]
func (h *ReservaHandler) Detalle(c *fiber.Ctx) error {
	reserva, err := h.reservas.Detalle(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reservaToDTO(reserva))
}

// Liberar godoc
// @Summary      Liberar parcialmente una reserva
// @Description  Devuelve cantidad de reservada a disponible, desde el lote
// @Description  asignado más tarde hacia atrás.
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la reserva"
// @Param        body  body  dto.LiberarRequest  true  "cantidad"
// @Success      200   {object}  dto.ResumenLiberacion
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservas/{id}/liberar [post]
func (h *ReservaHandler) Liberar(c *fiber.Ctx) error {
	var in dto.LiberarRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	reserva, err := h.reservas.Liberar(c.Context(), c.Params("id"), in.Cantidad, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ResumenLiberacion{
		ReservaID: reserva.ID,
		Liberado:  in.Cantidad,
		Restante:  reserva.ReservadoRestante(),
		Estado:    reserva.Estado,
	})
}

// LiberarTodo godoc
// @Summary      Liberar todo el saldo reservado
// @Description  Idempotente: sobre una reserva ya liberada o aplicada devuelve
// @Description  efecto cero.
// @Tags         reservas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ResumenLiberacion
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservas/{id} [delete]
func (h *ReservaHandler) LiberarTodo(c *fiber.Ctx) error {
	reserva, liberado, err := h.reservas.LiberarTodo(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ResumenLiberacion{
		ReservaID: reserva.ID,
		Liberado:  liberado,
		Restante:  reserva.ReservadoRestante(),
		Estado:    reserva.Estado,
	})
}

// Aplicar godoc
// @Summary      Aplicar reserva contra un documento posterior
// @Description  Consume el saldo reservado en orden FEFO y registra la salida
// @Description  definitiva de inventario.
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la reserva"
// @Param        body  body  dto.AplicarRequest  true  "cantidad, documento_id"
// @Success      200   {object}  dto.ReservaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservas/{id}/aplicar [post]
func (h *ReservaHandler) Aplicar(c *fiber.Ctx) error {
	var in dto.AplicarRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	reserva, err := h.reservas.Aplicar(c.Context(), reservation.AplicarInput{
		ReservaID:   c.Params("id"),
		Cantidad:    in.Cantidad,
		DocumentoID: in.DocumentoID,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reservaToDTO(reserva))
}

func reservaToDTO(r *entity.Reserva) dto.ReservaResponse {
	lotes := make([]dto.ReservaLoteDTO, 0, len(r.Lotes))
	for _, l := range r.Lotes {
		lotes = append(lotes, dto.ReservaLoteDTO{
			LoteID:           l.LoteID,
			Cantidad:         l.Cantidad,
			CantidadRestante: l.CantidadRestante,
		})
	}
	return dto.ReservaResponse{
		ID:                 r.ID,
		OrigenTipo:         r.OrigenTipo,
		OrigenID:           r.OrigenID,
		PresentacionID:     r.PresentacionID,
		AlmacenID:          r.AlmacenID,
		Estado:             r.Estado,
		CantidadSolicitada: r.CantidadSolicitada,
		CantidadLiberada:   r.CantidadLiberada,
		CantidadAplicada:   r.CantidadAplicada,
		CantidadPendiente:  r.CantidadPendiente,
		ReservadoRestante:  r.ReservadoRestante(),
		PermitirSinStock:   r.PermitirSinStock,
		Lotes:              lotes,
		CreatedAt:          r.CreatedAt,
	}
}
