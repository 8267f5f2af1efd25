package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/application/tracking"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)
var _ tracking.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos del ledger atados a la tx
// y hace Commit o Rollback. Es la unidad atómica del motor de transacciones: la
// unidad de trabajo es pequeña y acotada por el número de líneas, así que es
// seguro mantener los bloqueos de fila durante toda su ejecución.
func (r *TxRunner) Run(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	txRepo repository.TransactionRepository,
	movRepo repository.MovementRecordRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	materialRepo := NewMaterialRepository(tx)
	txRepo := NewTransactionRepository(tx)
	movRepo := NewMovementRecordRepository(tx)

	if err := fn(materialRepo, txRepo, movRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunStages inicia una transacción con los repos de etapas y pedidos (para las
// transiciones de etapa: cerrar el intervalo abierto y abrir el nuevo es atómico).
func (r *TxRunner) RunStages(ctx context.Context, fn func(
	stageRepo repository.StageHistoryRepository,
	jobRepo repository.JobRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stageRepo := NewStageHistoryRepository(tx)
	jobRepo := NewJobRepository(tx)

	if err := fn(stageRepo, jobRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
