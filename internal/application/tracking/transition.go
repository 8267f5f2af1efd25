// Package tracking registra las transiciones de etapa de producción de los pedidos
// y deriva las métricas de duración que consume el tablero.
package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// TransitionUseCase gestiona los intervalos de etapa por pedido: cierra el intervalo
// abierto y abre el nuevo dentro de una misma unidad atómica.
type TransitionUseCase struct {
	txRunner  TxRunner
	jobRepo   repository.JobRepository
	stageRepo repository.StageHistoryRepository
}

// NewTransitionUseCase construye el caso de uso.
func NewTransitionUseCase(
	txRunner TxRunner,
	jobRepo repository.JobRepository,
	stageRepo repository.StageHistoryRepository,
) *TransitionUseCase {
	return &TransitionUseCase{txRunner: txRunner, jobRepo: jobRepo, stageRepo: stageRepo}
}

// Transition mueve el pedido a newStage en el instante at: bloquea la fila del
// pedido, cierra el intervalo abierto (si existe) con exited_at = at y abre uno
// nuevo, actualizando production_stage. Si el pedido ya está en newStage la
// llamada es un no-op exitoso (sin intervalos de duración cero). Dos transiciones
// concurrentes del mismo pedido se serializan tras el bloqueo; si aun así el
// índice de intervalo abierto se viola, se devuelve ErrStageConflict para que el
// caller reintente con estado fresco.
func (uc *TransitionUseCase) Transition(ctx context.Context, jobID, newStage string, at time.Time) error {
	if jobID == "" || newStage == "" {
		return fmt.Errorf("%w: job y stage son obligatorios", domain.ErrInvalidInput)
	}
	if at.IsZero() {
		at = time.Now()
	}

	return uc.txRunner.RunStages(ctx, func(
		stageRepo repository.StageHistoryRepository,
		jobRepo repository.JobRepository,
	) error {
		job, err := jobRepo.GetForUpdate(jobID)
		if err != nil {
			return err
		}
		if job == nil {
			return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, jobID)
		}
		if job.ProductionStage == newStage {
			return nil
		}

		open, err := stageRepo.GetOpenForUpdate(jobID)
		if err != nil {
			return err
		}
		if open != nil {
			if err := stageRepo.Close(open.ID, at); err != nil {
				return err
			}
		}
		entry := &entity.StageHistoryEntry{
			ID:        uuid.New().String(),
			JobID:     jobID,
			Stage:     newStage,
			EnteredAt: at,
		}
		if err := stageRepo.Create(entry); err != nil {
			return err
		}
		return jobRepo.UpdateStage(jobID, newStage, at)
	})
}

// History devuelve el historial de etapas de un pedido para display.
func (uc *TransitionUseCase) History(jobID string) (*dto.JobStageHistoryDTO, error) {
	job, err := uc.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, jobID)
	}
	entries, err := uc.stageRepo.ListByJob(jobID)
	if err != nil {
		return nil, err
	}

	out := &dto.JobStageHistoryDTO{
		JobID:        job.ID,
		CurrentStage: job.ProductionStage,
		History:      make([]dto.StageHistoryEntryDTO, 0, len(entries)),
	}
	for _, e := range entries {
		out.History = append(out.History, dto.StageHistoryEntryDTO{
			Stage:     e.Stage,
			EnteredAt: e.EnteredAt,
			ExitedAt:  e.ExitedAt,
		})
	}
	return out, nil
}
