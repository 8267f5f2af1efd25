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

	appinventory "github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/application/tracking"
	"github.com/jhoicas/Taller-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Taller-api/internal/interfaces/http"
	"github.com/jhoicas/Taller-api/pkg/config"
	"github.com/jhoicas/Taller-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
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

	materialRepo := postgres.NewMaterialRepository(pool)
	bomRepo := postgres.NewBOMRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	movementRepo := postgres.NewMovementRecordRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	stageRepo := postgres.NewStageHistoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	applyUC := ledger.NewApplyUseCase(txRunner, txRepo)
	deductionUC := ledger.NewDeductionUseCase(jobRepo, bomRepo, txRepo, applyUC)
	txQueriesUC := ledger.NewTransactionQueryUseCase(txRepo)
	inventoryUC := appinventory.NewQueryUseCase(materialRepo, movementRepo)
	transitionUC := tracking.NewTransitionUseCase(txRunner, jobRepo, stageRepo)
	milestones, err := tracking.ParseMilestones(cfg.Metrics.Milestones)
	if err != nil {
		log.Fatal().Err(err).Msg("METRICS_MILESTONES inválido")
	}
	metricsUC := tracking.NewMetricsUseCase(stageRepo, milestones, cfg.Metrics.LookbackDays)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Taller Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Deduction:    deductionUC,
		Apply:        applyUC,
		TxQueries:    txQueriesUC,
		Inventory:    inventoryUC,
		Transition:   transitionUC,
		StageMetrics: metricsUC,
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
