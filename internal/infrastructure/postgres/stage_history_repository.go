package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.StageHistoryRepository = (*StageHistoryRepo)(nil)

// StageHistoryRepo persistencia del historial de etapas sobre PostgreSQL (usable
// con pool o tx). El índice único parcial sobre (job_id) WHERE exited_at IS NULL
// respalda el invariante de un solo intervalo abierto por pedido.
type StageHistoryRepo struct {
	q Querier
}

// NewStageHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStageHistoryRepository(q Querier) *StageHistoryRepo {
	return &StageHistoryRepo{q: q}
}

const stageColumns = `id, job_id, stage, entered_at, exited_at`

// Create abre un intervalo de etapa. Una violación del índice de intervalo abierto
// (transición concurrente del mismo pedido) se devuelve como domain.ErrStageConflict.
func (r *StageHistoryRepo) Create(e *entity.StageHistoryEntry) error {
	query := `
		INSERT INTO stage_history (id, job_id, stage, entered_at, exited_at)
		VALUES ($1, $2, $3, $4, NULL)`
	_, err := r.q.Exec(context.Background(), query, e.ID, e.JobID, e.Stage, e.EnteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrStageConflict
		}
		return fmt.Errorf("create stage entry: %w", err)
	}
	return nil
}

// GetOpenForUpdate devuelve el intervalo abierto del pedido bloqueando la fila,
// o nil si no hay intervalo abierto.
func (r *StageHistoryRepo) GetOpenForUpdate(jobID string) (*entity.StageHistoryEntry, error) {
	query := `SELECT ` + stageColumns + `
		FROM stage_history
		WHERE job_id = $1 AND exited_at IS NULL
		FOR UPDATE`
	var e entity.StageHistoryEntry
	err := r.q.QueryRow(context.Background(), query, jobID).Scan(
		&e.ID, &e.JobID, &e.Stage, &e.EnteredAt, &e.ExitedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open stage entry: %w", err)
	}
	return &e, nil
}

// Close sella el intervalo con exited_at = at.
func (r *StageHistoryRepo) Close(entryID string, at time.Time) error {
	query := `UPDATE stage_history SET exited_at = $2 WHERE id = $1 AND exited_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, entryID, at)
	if err != nil {
		return fmt.Errorf("close stage entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Otro caller cerró el intervalo entre la lectura y esta escritura.
		return domain.ErrStageConflict
	}
	return nil
}

// ListByJob lista el historial de un pedido en orden de entrada.
func (r *StageHistoryRepo) ListByJob(jobID string) ([]*entity.StageHistoryEntry, error) {
	query := `SELECT ` + stageColumns + `
		FROM stage_history WHERE job_id = $1
		ORDER BY entered_at`
	rows, err := r.q.Query(context.Background(), query, jobID)
	if err != nil {
		return nil, fmt.Errorf("list stage history: %w", err)
	}
	defer rows.Close()
	return scanStageEntries(rows)
}

// ListOpen lista todos los intervalos abiertos (consulta de métricas).
func (r *StageHistoryRepo) ListOpen(ctx context.Context) ([]*entity.StageHistoryEntry, error) {
	query := `SELECT ` + stageColumns + `
		FROM stage_history WHERE exited_at IS NULL
		ORDER BY job_id, entered_at`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open stage entries: %w", err)
	}
	defer rows.Close()
	return scanStageEntries(rows)
}

// ListForJobsReachingStages devuelve el historial completo de los pedidos que
// entraron a alguna de `stages` desde `since`, ordenado por pedido y entered_at.
func (r *StageHistoryRepo) ListForJobsReachingStages(ctx context.Context, stages []string, since time.Time) ([]*entity.StageHistoryEntry, error) {
	query := `SELECT ` + stageColumns + `
		FROM stage_history
		WHERE job_id IN (
			SELECT job_id FROM stage_history
			WHERE stage = ANY($1) AND entered_at >= $2
		)
		ORDER BY job_id, entered_at`
	rows, err := r.q.Query(ctx, query, stages, since)
	if err != nil {
		return nil, fmt.Errorf("list stage history by milestone: %w", err)
	}
	defer rows.Close()
	return scanStageEntries(rows)
}

func scanStageEntries(rows pgx.Rows) ([]*entity.StageHistoryEntry, error) {
	var list []*entity.StageHistoryEntry
	for rows.Next() {
		var e entity.StageHistoryEntry
		if err := rows.Scan(&e.ID, &e.JobID, &e.Stage, &e.EnteredAt, &e.ExitedAt); err != nil {
			return nil, fmt.Errorf("scan stage entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
