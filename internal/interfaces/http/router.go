package http

import (
	"github.com/gofiber/fiber/v2"

	appinventory "github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/application/tracking"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Deduction    *ledger.DeductionUseCase
	Apply        *ledger.ApplyUseCase
	TxQueries    *ledger.TransactionQueryUseCase
	Inventory    *appinventory.QueryUseCase
	Transition   *tracking.TransitionUseCase
	StageMetrics *tracking.MetricsUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Pedidos: deducción de materiales y seguimiento de etapas
	jobs := api.Group("/jobs")
	ledgerHandler := NewLedgerHandler(deps.Deduction, deps.Apply, deps.TxQueries)
	trackingHandler := NewTrackingHandler(deps.Transition, deps.StageMetrics)
	jobs.Post("/:id/deduction", ledgerHandler.DeductForJob)
	jobs.Get("/:id/deduction/preview", ledgerHandler.PreviewDeduction)
	jobs.Post("/:id/stage", trackingHandler.TransitionStage)
	jobs.Get("/:id/stages", trackingHandler.GetStageHistory)

	// Transacciones del libro de inventario
	transactions := api.Group("/transactions")
	transactions.Post("/", ledgerHandler.ApplyTransaction)
	transactions.Get("/", ledgerHandler.ListTransactions)
	transactions.Get("/:id", ledgerHandler.GetTransaction)

	// Materiales: saldos, alertas y auditoría
	materials := api.Group("/materials")
	materialHandler := NewMaterialHandler(deps.Inventory)
	materials.Get("/alerts", materialHandler.GetAlerts)
	materials.Get("/:id/balance", materialHandler.GetBalance)
	materials.Get("/:id/balance/verify", materialHandler.VerifyBalance)
	materials.Get("/:id/movements", materialHandler.ListMovements)

	// Métricas de duración
	metrics := api.Group("/metrics")
	metrics.Get("/durations", trackingHandler.GetDurationMetrics)
}
