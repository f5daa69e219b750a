package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	"github.com/grupodelsur/distribuidora-api/internal/application/finance"
)

// FinanzasHandler maneja las peticiones HTTP de tipos de cambio.
type FinanzasHandler struct {
	finanzas *finance.UseCase
}

// NewFinanzasHandler construye el handler.
func NewFinanzasHandler(finanzas *finance.UseCase) *FinanzasHandler {
	return &FinanzasHandler{finanzas: finanzas}
}

// CrearTipoCambio godoc
// @Summary      Registrar una tasa de cambio
// @Description  Append-only por par de monedas. Un duplicado exacto de par y
// @Description  fecha de vigencia es 409.
// @Tags         finanzas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearTipoCambioRequest  true  "par de monedas, fecha_vigencia, tasa"
// @Success      201   {object}  dto.TipoCambioDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/finanzas/tipos-cambio [post]
func (h *FinanzasHandler) CrearTipoCambio(c *fiber.Ctx) error {
	var in dto.CrearTipoCambioRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	tc, err := h.finanzas.Crear(c.Context(), finance.CrearInput{
		MonedaOrigenID:  in.MonedaOrigenID,
		MonedaDestinoID: in.MonedaDestinoID,
		FechaVigencia:   in.FechaVigencia,
		Tasa:            in.Tasa,
		UserID:          GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TipoCambioDTO{
		ID:              tc.ID,
		MonedaOrigenID:  tc.MonedaOrigenID,
		MonedaDestinoID: tc.MonedaDestinoID,
		FechaVigencia:   tc.FechaVigencia,
		Tasa:            tc.Tasa,
	})
}

// TipoCambioVigente godoc
// @Summary      Tasa vigente de un par a una fecha
// @Tags         finanzas
// @Security     Bearer
// @Produce      json
// @Param        moneda_origen_id   query  string  true   "Moneda origen"
// @Param        moneda_destino_id  query  string  true   "Moneda destino"
// @Param        fecha              query  string  false  "Fecha de consulta (YYYY-MM-DD, default hoy)"
// @Success      200  {object}  dto.TipoCambioDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/finanzas/tipos-cambio/vigente [get]
func (h *FinanzasHandler) TipoCambioVigente(c *fiber.Ctx) error {
	fecha, err := fechaOpcional(c)
	if err != nil {
		return badRequest(c, "VALIDATION", "fecha debe ser YYYY-MM-DD")
	}
	tc, err := h.finanzas.Vigente(c.Context(), c.Query("moneda_origen_id"), c.Query("moneda_destino_id"), fecha)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TipoCambioDTO{
		ID:              tc.ID,
		MonedaOrigenID:  tc.MonedaOrigenID,
		MonedaDestinoID: tc.MonedaDestinoID,
		FechaVigencia:   tc.FechaVigencia,
		Tasa:            tc.Tasa,
	})
}

// HistorialTiposCambio godoc
// @Summary      Historial de tasas de un par
// @Tags         finanzas
// @Security     Bearer
// @Produce      json
// @Param        moneda_origen_id   query  string  false  "Moneda origen"
// @Param        moneda_destino_id  query  string  false  "Moneda destino"
// @Success      200  {object}  dto.TiposCambioResponse
// @Router       /api/finanzas/tipos-cambio [get]
func (h *FinanzasHandler) HistorialTiposCambio(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "VALIDATION", "paginación inválida")
	}
	resp, err := h.finanzas.Historial(c.Context(), c.Query("moneda_origen_id"), c.Query("moneda_destino_id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Convertir godoc
// @Summary      Convertir un monto con la tasa vigente
// @Tags         finanzas
// @Security     Bearer
// @Produce      json
// @Param        moneda_origen_id   query  string  true   "Moneda origen"
// @Param        moneda_destino_id  query  string  true   "Moneda destino"
// @Param        monto              query  string  true   "Monto a convertir"
// @Param        fecha              query  string  false  "Fecha de la tasa (YYYY-MM-DD, default hoy)"
// @Success      200  {object}  dto.ConversionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/finanzas/convertir [get]
func (h *FinanzasHandler) Convertir(c *fiber.Ctx) error {
	monto, err := decimal.NewFromString(c.Query("monto"))
	if err != nil {
		return badRequest(c, "VALIDATION", "monto inválido")
	}
	fecha, err := fechaOpcional(c)
	if err != nil {
		return badRequest(c, "VALIDATION", "fecha debe ser YYYY-MM-DD")
	}
	resp, err := h.finanzas.Convertir(c.Context(), c.Query("moneda_origen_id"), c.Query("moneda_destino_id"), monto, fecha)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// fechaOpcional lee el query param fecha como YYYY-MM-DD. Ausente devuelve nil.
func fechaOpcional(c *fiber.Ctx) (*time.Time, error) {
	v := c.Query("fecha")
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
