package tracking

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios
// de etapas y pedidos atados a esa tx. El par cerrar-intervalo/abrir-intervalo debe
// ser atómico para preservar el invariante de un solo intervalo abierto por pedido.
type TxRunner interface {
	RunStages(ctx context.Context, fn func(
		stageRepo repository.StageHistoryRepository,
		jobRepo repository.JobRepository,
	) error) error
}
