package ledger

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad para el motor del ledger: o se aplican todos
// los saldos, la transacción, sus líneas y sus movimientos, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materialRepo repository.MaterialRepository,
		txRepo repository.TransactionRepository,
		movRepo repository.MovementRecordRepository,
	) error) error
}
