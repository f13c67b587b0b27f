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

	appop "github.com/jhoicas/stock-operations/internal/application/operation"
	"github.com/jhoicas/stock-operations/internal/application/usecase"
	"github.com/jhoicas/stock-operations/internal/infrastructure/rest"
	httpRouter "github.com/jhoicas/stock-operations/internal/interfaces/http"
	"github.com/jhoicas/stock-operations/pkg/config"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.BaseURL).
		Msg("iniciando aplicación")

	m := metrics.New("stock_operations")
	store := rest.NewClient(cfg.Store, cfg.Breaker, log, m)

	operationRepo := rest.NewStockOperationRepository(store, log)
	typeRepo := rest.NewOperationTypeRepository(store)
	referenceRepo := rest.NewReferenceRepository(store)
	departmentRepo := rest.NewDepartmentRepository(store)

	errs := appop.NewLogErrorHandler(log)
	cache := appop.NewReferenceCache(referenceRepo, typeRepo, cfg.Reference.TTL, errs, log, m)

	// Precarga del catálogo de tipos; si el almacén no responde se reintenta bajo demanda.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
	if err := cache.RefreshOperationTypes(warmCtx); err != nil {
		log.Warn().Err(err).Msg("catálogo de tipos no disponible al arrancar")
	}
	warmCancel()

	submitUC := appop.NewSubmitOperationUseCase(operationRepo, cache, log, m)
	rollbackUC := appop.NewRollbackUseCase(operationRepo, errs, log, m)
	queryUC := appop.NewQueryUseCase(operationRepo)
	departmentUC := usecase.NewDepartmentUseCase(departmentRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Store.Timeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Operations API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName:  cfg.App.Name,
		Submit:       submitUC,
		Rollback:     rollbackUC,
		Query:        queryUC,
		References:   cache,
		DepartmentUC: departmentUC,
		Metrics:      m,
		Logger:       log,
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
	// Los rollbacks ya aceptados terminan su envío antes de salir.
	if err := rollbackUC.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("rollbacks pendientes al apagar")
	}

	log.Info().Msg("aplicación detenida")
}
