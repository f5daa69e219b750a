package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/grupodelsur/distribuidora-api/internal/application/finance"
	"github.com/grupodelsur/distribuidora-api/internal/application/inventory"
	"github.com/grupodelsur/distribuidora-api/internal/application/pricing"
	"github.com/grupodelsur/distribuidora-api/internal/application/purchasing"
	"github.com/grupodelsur/distribuidora-api/internal/application/reservation"
	"github.com/grupodelsur/distribuidora-api/internal/infrastructure/postgres"
	httpRouter "github.com/grupodelsur/distribuidora-api/internal/interfaces/http"
	"github.com/grupodelsur/distribuidora-api/pkg/config"
	"github.com/grupodelsur/distribuidora-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios sobre el pool (lecturas fuera de transacción).
	loteRepo := postgres.NewLoteRepository(pool)
	posRepo := postgres.NewPosicionStockRepository(pool)
	movRepo := postgres.NewMovimientoRepository(pool)
	reservaRepo := postgres.NewReservaRepository(pool)
	compraRepo := postgres.NewCompraRepository(pool)
	recepcionRepo := postgres.NewRecepcionRepository(pool)
	histRepo := postgres.NewHistorialPrecioRepository(pool)
	tcRepo := postgres.NewTipoCambioRepository(pool)
	presRepo := postgres.NewPresentacionRepository(pool)
	almacenRepo := postgres.NewAlmacenRepository(pool)
	monedaRepo := postgres.NewMonedaRepository(pool)

	txRunner := postgres.NewTxRunner(pool)

	politica := pricing.NewPoliticaHolder(pricing.PoliticaDesdeConfig(cfg.Redondeo))
	log.Info().
		Str("modo", cfg.Redondeo.Modo).
		Str("multiplo", cfg.Redondeo.Multiplo).
		Int("decimales", cfg.Redondeo.Decimales).
		Msg("política de redondeo cargada")

	registrarMovimientoUC := inventory.NewRegistrarMovimientoUseCase(txRunner, loteRepo, almacenRepo)
	consultaInventarioUC := inventory.NewConsultaInventarioUseCase(posRepo, movRepo)
	alertasUC := inventory.NewAlertasUseCase(posRepo, nil)
	reservasUC := reservation.NewUseCase(txRunner, posRepo, reservaRepo, presRepo, almacenRepo)
	comprasUC := purchasing.NewCompraUseCase(txRunner, compraRepo, presRepo, monedaRepo)
	recepcionesUC := purchasing.NewRecepcionUseCase(txRunner, recepcionRepo, almacenRepo)
	preciosUC := pricing.NewUseCase(txRunner, histRepo, presRepo, tcRepo, politica, nil)
	finanzasUC := finance.NewUseCase(tcRepo, monedaRepo, nil)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Distribuidora API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegistrarMovimiento: registrarMovimientoUC,
		ConsultaInventario:  consultaInventarioUC,
		Alertas:             alertasUC,
		Reservas:            reservasUC,
		Compras:             comprasUC,
		Recepciones:         recepcionesUC,
		Precios:             preciosUC,
		Finanzas:            finanzasUC,
		JWTSecret:           cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
