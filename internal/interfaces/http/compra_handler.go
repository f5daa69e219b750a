package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	"github.com/grupodelsur/distribuidora-api/internal/application/purchasing"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
)

// CompraHandler maneja las peticiones HTTP de órdenes de compra y recepciones.
type CompraHandler struct {
	compras     *purchasing.CompraUseCase
	recepciones *purchasing.RecepcionUseCase
}

// NewCompraHandler construye el handler.
func NewCompraHandler(compras *purchasing.CompraUseCase, recepciones *purchasing.RecepcionUseCase) *CompraHandler {
	return &CompraHandler{compras: compras, recepciones: recepciones}
}

// Crear godoc
// @Summary      Crear orden de compra en borrador
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearCompraRequest  true  "proveedor_id, moneda_id, tipo_cambio"
// @Success      201   {object}  dto.CompraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/compras [post]
func (h *CompraHandler) Crear(c *fiber.Ctx) error {
	var in dto.CrearCompraRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	compra, err := h.compras.Crear(c.Context(), purchasing.CrearCompraInput{
		ProveedorID: in.ProveedorID,
		MonedaID:    in.MonedaID,
		TipoCambio:  in.TipoCambio,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(compraToDTO(compra))
}

// GetByID godoc
// @Summary      Detalle de una orden de compra
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la compra"
// @Success      200  {object}  dto.CompraResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compras/{id} [get]
func (h *CompraHandler) GetByID(c *fiber.Ctx) error {
	compra, err := h.compras.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(compraToDTO(compra))
}

// AgregarDetalle godoc
// @Summary      Agregar línea a una orden en borrador
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la compra"
// @Param        body  body  dto.AgregarDetalleRequest  true  "presentacion_id, cantidad, costo_unitario"
// @Success      200   {object}  dto.CompraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compras/{id}/detalles [post]
func (h *CompraHandler) AgregarDetalle(c *fiber.Ctx) error {
	var in dto.AgregarDetalleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	compra, err := h.compras.AgregarDetalle(c.Context(), c.Params("id"), purchasing.DetalleInput{
		PresentacionID:       in.PresentacionID,
		Cantidad:             in.Cantidad,
		CostoUnitario:        in.CostoUnitario,
		FechaEstimadaLlegada: in.FechaEstimadaLlegada,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(compraToDTO(compra))
}

// EliminarDetalle godoc
// @Summary      Quitar línea de una orden en borrador
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id         path  string  true  "ID de la compra"
// @Param        detalleId  path  string  true  "ID de la línea"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/compras/{id}/detalles/{detalleId} [delete]
func (h *CompraHandler) EliminarDetalle(c *fiber.Ctx) error {
	if err := h.compras.EliminarDetalle(c.Context(), c.Params("id"), c.Params("detalleId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "línea eliminada"})
}

// Eliminar godoc
// @Summary      Eliminar una orden en borrador sin líneas
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la compra"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/compras/{id} [delete]
func (h *CompraHandler) Eliminar(c *fiber.Ctx) error {
	if err := h.compras.Eliminar(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "compra eliminada"})
}

// CambiarEstado godoc
// @Summary      Cambiar el estado de una orden
// @Description  Transiciones manuales: aprobar, cerrar, anular. El estado
// @Description  parcialmente_recibida lo deriva la recepción, no se fija a mano.
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la compra"
// @Param        body  body  dto.CambiarEstadoRequest  true  "estado destino"
// @Success      200   {object}  dto.CompraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compras/{id}/estado [put]
func (h *CompraHandler) CambiarEstado(c *fiber.Ctx) error {
	var in dto.CambiarEstadoRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	compra, err := h.compras.CambiarEstado(c.Context(), c.Params("id"), in.Estado)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(compraToDTO(compra))
}

// RegistrarRecepcion godoc
// @Summary      Registrar recepción de mercadería
// @Description  Crea o reutiliza lotes por clave natural, suma a las posiciones
// @Description  y avanza la orden según lo recibido.
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegistrarRecepcionRequest  true  "compra_id, almacen_id, items"
// @Success      201   {object}  dto.RecepcionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compras/recepciones [post]
func (h *CompraHandler) RegistrarRecepcion(c *fiber.Ctx) error {
	var in dto.RegistrarRecepcionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	items := make([]purchasing.ItemRecepcionInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, purchasing.ItemRecepcionInput{
			CompraDetalleID:  it.CompraDetalleID,
			NumeroLote:       it.NumeroLote,
			FechaFabricacion: it.FechaFabricacion,
			FechaVencimiento: it.FechaVencimiento,
			Cantidad:         it.Cantidad,
		})
	}
	recepcion, err := h.recepciones.Registrar(c.Context(), purchasing.RegistrarRecepcionInput{
		CompraID:        in.CompraID,
		AlmacenID:       in.AlmacenID,
		NumeroDocumento: in.NumeroDocumento,
		Items:           items,
		UserID:          GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recepcionToDTO(recepcion))
}

// GetRecepcion godoc
// @Summary      Detalle de una recepción
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.RecepcionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compras/recepciones/{id} [get]
func (h *CompraHandler) GetRecepcion(c *fiber.Ctx) error {
	recepcion, err := h.recepciones.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recepcionToDTO(recepcion))
}

// AgregarItemRecepcion godoc
// @Summary      Agregar ítem a una recepción abierta
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la recepción"
// @Param        body  body  dto.RecepcionItemRequest  true  "compra_detalle_id, numero_lote, cantidad"
// @Success      200   {object}  dto.RecepcionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compras/recepciones/{id}/items [post]
func (h *CompraHandler) AgregarItemRecepcion(c *fiber.Ctx) error {
	var in dto.RecepcionItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	recepcion, err := h.recepciones.AgregarItem(c.Context(), c.Params("id"), purchasing.ItemRecepcionInput{
		CompraDetalleID:  in.CompraDetalleID,
		NumeroLote:       in.NumeroLote,
		FechaFabricacion: in.FechaFabricacion,
		FechaVencimiento: in.FechaVencimiento,
		Cantidad:         in.Cantidad,
	}, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recepcionToDTO(recepcion))
}

// CerrarRecepcion godoc
// @Summary      Cerrar una recepción
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.RecepcionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/compras/recepciones/{id}/cerrar [post]
func (h *CompraHandler) CerrarRecepcion(c *fiber.Ctx) error {
	recepcion, err := h.recepciones.Cerrar(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recepcionToDTO(recepcion))
}

func compraToDTO(compra *entity.Compra) dto.CompraResponse {
	detalles := make([]dto.CompraDetalleDTO, 0, len(compra.Detalles))
	for _, d := range compra.Detalles {
		detalles = append(detalles, dto.CompraDetalleDTO{
			ID:                   d.ID,
			PresentacionID:       d.PresentacionID,
			Cantidad:             d.Cantidad,
			CostoUnitario:        d.CostoUnitario,
			FechaEstimadaLlegada: d.FechaEstimadaLlegada,
			CantidadRecibida:     d.CantidadRecibida,
		})
	}
	return dto.CompraResponse{
		ID:          compra.ID,
		ProveedorID: compra.ProveedorID,
		MonedaID:    compra.MonedaID,
		TipoCambio:  compra.TipoCambio,
		Estado:      compra.Estado,
		Detalles:    detalles,
		CreatedAt:   compra.CreatedAt,
	}
}

func recepcionToDTO(r *entity.Recepcion) dto.RecepcionResponse {
	detalles := make([]dto.RecepcionDetalleDTO, 0, len(r.Detalles))
	for _, d := range r.Detalles {
		detalles = append(detalles, dto.RecepcionDetalleDTO{
			ID:              d.ID,
			CompraDetalleID: d.CompraDetalleID,
			LoteID:          d.LoteID,
			Cantidad:        d.Cantidad,
		})
	}
	return dto.RecepcionResponse{
		ID:              r.ID,
		CompraID:        r.CompraID,
		AlmacenID:       r.AlmacenID,
		NumeroDocumento: r.NumeroDocumento,
		Estado:          r.Estado,
		Detalles:        detalles,
		CreatedAt:       r.CreatedAt,
	}
}
