package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grupodelsur/distribuidora-api/internal/application/finance"
	"github.com/grupodelsur/distribuidora-api/internal/application/inventory"
	"github.com/grupodelsur/distribuidora-api/internal/application/pricing"
	"github.com/grupodelsur/distribuidora-api/internal/application/purchasing"
	"github.com/grupodelsur/distribuidora-api/internal/application/reservation"
)

// Permisos por área. Se comparan contra los claims del token.
const (
	PermisoInventario = "inventario"
	PermisoReservas   = "reservas"
	PermisoCompras    = "compras"
	PermisoPrecios    = "precios"
	PermisoFinanzas   = "finanzas"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegistrarMovimiento *inventory.RegistrarMovimientoUseCase
	ConsultaInventario  *inventory.ConsultaInventarioUseCase
	Alertas             *inventory.AlertasUseCase
	Reservas            *reservation.UseCase
	Compras             *purchasing.CompraUseCase
	Recepciones         *purchasing.RecepcionUseCase
	Precios             *pricing.UseCase
	Finanzas            *finance.UseCase
	JWTSecret           string
}

// Router registra las rutas de la API. Todo salvo /health exige Bearer Token;
// cada área exige además su permiso en los claims.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Inventario: libro de movimientos, posiciones y alertas.
	inventario := api.Group("/inventario", RequirePermission(PermisoInventario))
	inventarioHandler := NewInventarioHandler(deps.RegistrarMovimiento, deps.ConsultaInventario, deps.Alertas)
	inventario.Post("/movimientos", inventarioHandler.RegistrarMovimiento)
	inventario.Get("/posiciones", inventarioHandler.ListarPosiciones)
	inventario.Get("/lotes/:id/movimientos", inventarioHandler.MovimientosDeLote)
	inventario.Get("/alertas", inventarioHandler.ListarAlertas)
	inventario.Get("/alertas/resumen", inventarioHandler.ResumenAlertas)

	// Reservas: ciclo de vida contra anticipos y documentos.
	reservaHandler := NewReservaHandler(deps.Reservas)
	anticipos := api.Group("/anticipos", RequirePermission(PermisoReservas))
	anticipos.Post("/:id/reservas", reservaHandler.ReservarPorAnticipo)
	anticipos.Get("/:id/reservas", reservaHandler.ReservaDeAnticipo)
	reservas := api.Group("/reservas", RequirePermission(PermisoReservas))
	reservas.Get("/:id", reservaHandler.Detalle)
	reservas.Post("/:id/liberar", reservaHandler.Liberar)
	reservas.Delete("/:id", reservaHandler.LiberarTodo)
	reservas.Post("/:id/aplicar", reservaHandler.Aplicar)

	// Compras: órdenes y recepciones. Las rutas fijas van antes de /:id para
	// que Fiber no capture "recepciones" como ID de compra.
	compras := api.Group("/compras", RequirePermission(PermisoCompras))
	compraHandler := NewCompraHandler(deps.Compras, deps.Recepciones)
	compras.Post("/recepciones", compraHandler.RegistrarRecepcion)
	compras.Get("/recepciones/:id", compraHandler.GetRecepcion)
	compras.Post("/recepciones/:id/items", compraHandler.AgregarItemRecepcion)
	compras.Post("/recepciones/:id/cerrar", compraHandler.CerrarRecepcion)
	compras.Post("/", compraHandler.Crear)
	compras.Get("/:id", compraHandler.GetByID)
	compras.Delete("/:id", compraHandler.Eliminar)
	compras.Put("/:id/estado", compraHandler.CambiarEstado)
	compras.Post("/:id/detalles", compraHandler.AgregarDetalle)
	compras.Delete("/:id/detalles/:detalleId", compraHandler.EliminarDetalle)

	// Precios: historial con ventanas de vigencia.
	precioHandler := NewPrecioHandler(deps.Precios)
	presentaciones := api.Group("/presentaciones", RequirePermission(PermisoPrecios))
	presentaciones.Post("/:id/precio", precioHandler.CambioManual)
	presentaciones.Get("/:id/precio", precioHandler.Vigente)
	precios := api.Group("/precios", RequirePermission(PermisoPrecios))
	precios.Post("/recalcular", precioHandler.Recalcular)
	precios.Get("/historial", precioHandler.BuscarHistorial)
	precios.Post("/historial/:id/revertir", precioHandler.Revertir)

	// Finanzas: tipos de cambio y conversión.
	finanzas := api.Group("/finanzas", RequirePermission(PermisoFinanzas))
	finanzasHandler := NewFinanzasHandler(deps.Finanzas)
	finanzas.Post("/tipos-cambio", finanzasHandler.CrearTipoCambio)
	finanzas.Get("/tipos-cambio/vigente", finanzasHandler.TipoCambioVigente)
	finanzas.Get("/tipos-cambio", finanzasHandler.HistorialTiposCambio)
	finanzas.Get("/convertir", finanzasHandler.Convertir)
}
