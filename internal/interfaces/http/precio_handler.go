package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	"github.com/grupodelsur/distribuidora-api/internal/application/pricing"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
)

// PrecioHandler maneja las peticiones HTTP del historial de precios.
type PrecioHandler struct {
	precios *pricing.UseCase
}

// NewPrecioHandler construye el handler.
func NewPrecioHandler(precios *pricing.UseCase) *PrecioHandler {
	return &PrecioHandler{precios: precios}
}

// CambioManual godoc
// @Summary      Cambio manual de precio de una presentación
// @Description  Cierra la ventana vigente y abre una nueva. El precio se
// @Description  redondea según la política configurada.
// @Tags         precios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la presentación"
// @Param        body  body  dto.CambioManualRequest  true  "precio, motivo, efectiva_en"
// @Success      201   {object}  dto.HistorialPrecioDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/presentaciones/{id}/precio [post]
func (h *PrecioHandler) CambioManual(c *fiber.Ctx) error {
	var in dto.CambioManualRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	registro, err := h.precios.CambioManual(c.Context(), pricing.CambioManualInput{
		PresentacionID: c.Params("id"),
		Precio:         in.Precio,
		Motivo:         in.Motivo,
		EfectivaEn:     in.EfectivaEn,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(historialToDTO(registro))
}

// Vigente godoc
// @Summary      Precio vigente de una presentación
// @Tags         precios
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la presentación"
// @Success      200  {object}  dto.HistorialPrecioDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/presentaciones/{id}/precio [get]
func (h *PrecioHandler) Vigente(c *fiber.Ctx) error {
	registro, err := h.precios.Vigente(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(historialToDTO(registro))
}

// Recalcular godoc
// @Summary      Recálculo masivo de precios por tipo de cambio
// @Description  Proyecta el precio nuevo de cada presentación con costo en la
// @Description  moneda origen usando la tasa vigente. Con ?simular=true solo
// @Description  devuelve la proyección, sin escribir.
// @Tags         precios
// @Security     Bearer
// @Produce      json
// @Param        moneda_origen_id   query  string  true   "Moneda del costo base"
// @Param        moneda_destino_id  query  string  true   "Moneda de venta"
// @Param        fecha              query  string  false  "Tasa vigente a esta fecha (YYYY-MM-DD, default hoy)"
// @Param        simular            query  bool    false  "Solo proyectar, no escribir"
// @Success      200  {object}  dto.RecalculoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/precios/recalcular [post]
func (h *PrecioHandler) Recalcular(c *fiber.Ctx) error {
	in := pricing.RecalculoInput{
		MonedaOrigenID:  c.Query("moneda_origen_id"),
		MonedaDestinoID: c.Query("moneda_destino_id"),
		Simular:         c.QueryBool("simular"),
		UserID:          GetUserID(c),
	}
	if v := c.Query("fecha"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "VALIDATION", "fecha debe ser YYYY-MM-DD")
		}
		in.Fecha = &t
	}
	resp, err := h.precios.RecalculoMasivo(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Revertir godoc
// @Summary      Revertir a un precio histórico
// @Description  Copia el registro histórico como nueva ventana vigente; el
// @Description  registro original queda intacto.
// @Tags         precios
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del registro histórico"
// @Success      201  {object}  dto.HistorialPrecioDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/precios/historial/{id}/revertir [post]
func (h *PrecioHandler) Revertir(c *fiber.Ctx) error {
	registro, err := h.precios.Revertir(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(historialToDTO(registro))
}

// BuscarHistorial godoc
// @Summary      Buscador del historial de precios
// @Tags         precios
// @Security     Bearer
// @Produce      json
// @Param        sku      query  string  false  "Filtrar por SKU"
// @Param        desde    query  string  false  "Vigente desde (YYYY-MM-DD)"
// @Param        hasta    query  string  false  "Vigente hasta (YYYY-MM-DD)"
// @Param        motivo   query  string  false  "manual | recalculo_masivo | reversion"
// @Param        usuario  query  string  false  "Filtrar por usuario"
// @Success      200  {object}  dto.HistorialPreciosResponse
// @Router       /api/precios/historial [get]
func (h *PrecioHandler) BuscarHistorial(c *fiber.Ctx) error {
	in := pricing.BuscarInput{
		SKU:     c.Query("sku"),
		Motivo:  c.Query("motivo"),
		Usuario: c.Query("usuario"),
	}
	for _, campo := range []struct {
		nombre  string
		destino **time.Time
	}{
		{"desde", &in.Desde},
		{"hasta", &in.Hasta},
	} {
		if v := c.Query(campo.nombre); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return badRequest(c, "VALIDATION", campo.nombre+" debe ser YYYY-MM-DD")
			}
			*campo.destino = &t
		}
	}
	if err := c.QueryParser(&in.Page); err != nil {
		return badRequest(c, "VALIDATION", "paginación inválida")
	}
	resp, err := h.precios.Buscar(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func historialToDTO(h *entity.HistorialPrecio) dto.HistorialPrecioDTO {
	return dto.HistorialPrecioDTO{
		ID:             h.ID,
		PresentacionID: h.PresentacionID,
		Precio:         h.Precio,
		VigenteDesde:   h.VigenteDesde,
		VigenteHasta:   h.VigenteHasta,
		Motivo:         h.Motivo,
		Usuario:        h.CreatedBy,
	}
}
