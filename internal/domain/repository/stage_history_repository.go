package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// StageHistoryRepository define el puerto de persistencia del historial de etapas.
type StageHistoryRepository interface {
	Create(e *entity.StageHistoryEntry) error
	// GetOpenForUpdate devuelve el intervalo abierto del pedido bloqueando la fila,
	// o nil si el pedido no tiene intervalo abierto.
	GetOpenForUpdate(jobID string) (*entity.StageHistoryEntry, error)
	Close(entryID string, at time.Time) error
	ListByJob(jobID string) ([]*entity.StageHistoryEntry, error)

	// Consultas read-only para métricas de duración.
	ListOpen(ctx context.Context) ([]*entity.StageHistoryEntry, error)
	// ListForJobsReachingStages devuelve el historial completo (ordenado por pedido y
	// entered_at) de los pedidos que entraron a alguna de `stages` desde `since`.
	ListForJobsReachingStages(ctx context.Context, stages []string, since time.Time) ([]*entity.StageHistoryEntry, error)
}
