package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	"github.com/grupodelsur/distribuidora-api/internal/application/inventory"
)

// InventarioHandler maneja las peticiones HTTP del libro de inventario:
// movimientos, posiciones por lote y feed de alertas (protegido).
type InventarioHandler struct {
	registrar *inventory.RegistrarMovimientoUseCase
	consultas *inventory.ConsultaInventarioUseCase
	alertas   *inventory.AlertasUseCase
}

// NewInventarioHandler construye el handler.
func NewInventarioHandler(
	registrar *inventory.RegistrarMovimientoUseCase,
	consultas *inventory.ConsultaInventarioUseCase,
	alertas *inventory.AlertasUseCase,
) *InventarioHandler {
	return &InventarioHandler{registrar: registrar, consultas: consultas, alertas: alertas}
}

// RegistrarMovimiento godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegistrarMovimientoRequest  true  "lote_id, tipo (ingreso|salida|ajuste|transferencia), cantidad, almacen_destino_id (transferencias)"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/movimientos [post]
func (h *InventarioHandler) RegistrarMovimiento(c *fiber.Ctx) error {
	var in dto.RegistrarMovimientoRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	err := h.registrar.Registrar(c.Context(), inventory.MovimientoInput{
		LoteID:           in.LoteID,
		AlmacenDestinoID: in.AlmacenDestinoID,
		Tipo:             in.Tipo,
		Cantidad:         in.Cantidad,
		ReferenciaID:     in.ReferenciaID,
		Nota:             in.Nota,
		UserID:           GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "movimiento registrado"})
}

// ListarPosiciones godoc
// @Summary      Listado de inventario por lote
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        almacen_id   query  string  false  "Filtrar por almacén"
// @Param        q            query  string  false  "Búsqueda por SKU, nombre o número de lote (sin acentos)"
// @Param        vence_antes  query  string  false  "Solo lotes que vencen antes de la fecha (YYYY-MM-DD)"
// @Success      200  {object}  dto.PosicionesResponse
// @Router       /api/inventario/posiciones [get]
func (h *InventarioHandler) ListarPosiciones(c *fiber.Ctx) error {
	in := inventory.FiltroPosicionesInput{
		AlmacenID: c.Query("almacen_id"),
		Q:         c.Query("q"),
	}
	if v := c.Query("vence_antes"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "VALIDATION", "vence_antes debe ser YYYY-MM-DD")
		}
		in.VenceAntes = &t
	}
	if err := c.QueryParser(&in.Page); err != nil {
		return badRequest(c, "VALIDATION", "paginación inválida")
	}
	resp, err := h.consultas.PosicionesPorLote(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// MovimientosDeLote godoc
// @Summary      Movimientos recientes de un lote
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID del lote"
// @Param        almacen_id  query  string  false  "Filtrar por almacén"
// @Param        limit       query  int     false  "Máximo de filas (default 20)"
// @Success      200  {array}   dto.MovimientoDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventario/lotes/{id}/movimientos [get]
func (h *InventarioHandler) MovimientosDeLote(c *fiber.Ctx) error {
	movimientos, err := h.consultas.MovimientosRecientes(
		c.Context(), c.Params("id"), c.Query("almacen_id"), c.QueryInt("limit"),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(movimientos), "movimientos": movimientos})
}

// ListarAlertas godoc
// @Summary      Feed de alertas de inventario
// @Description  Lotes por vencer y posiciones bajo el stock mínimo, con
// @Description  severidad (urgente|advertencia|proximo) y orden de prioridad.
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        tipo       query  string  false  "vencimiento | stock_minimo"
// @Param        severidad  query  string  false  "urgente | advertencia | proximo"
// @Param        almacen_id query  string  false  "Filtrar por almacén"
// @Success      200  {object}  dto.AlertasResponse
// @Router       /api/inventario/alertas [get]
func (h *InventarioHandler) ListarAlertas(c *fiber.Ctx) error {
	in := inventory.FiltroAlertasInput{
		Tipo:      c.Query("tipo"),
		Severidad: c.Query("severidad"),
		AlmacenID: c.Query("almacen_id"),
		Q:         c.Query("q"),
	}
	if err := c.QueryParser(&in.Page); err != nil {
		return badRequest(c, "VALIDATION", "paginación inválida")
	}
	resp, err := h.alertas.Listar(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ResumenAlertas godoc
// @Summary      Resumen del feed de alertas
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        top  query  int  false  "Cuántas alertas de mayor prioridad incluir (default 5)"
// @Success      200  {object}  dto.ResumenAlertasResponse
// @Router       /api/inventario/alertas/resumen [get]
func (h *InventarioHandler) ResumenAlertas(c *fiber.Ctx) error {
	in := inventory.FiltroAlertasInput{
		Tipo:      c.Query("tipo"),
		AlmacenID: c.Query("almacen_id"),
	}
	resp, err := h.alertas.Resumen(c.Context(), in, c.QueryInt("top"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
