// Package ledger contiene el motor de transacciones del inventario de producción:
// aplicación atómica de deltas firmados, idempotencia por referencia externa y
// emisión de filas de auditoría.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// Line es un delta firmado sobre un material dentro de un lote a aplicar.
type Line struct {
	MaterialID string
	Delta      decimal.Decimal
}

// ApplyInput lote de deltas a aplicar como una sola transacción atómica.
type ApplyInput struct {
	Kind      string
	Reference string
	Notes     string
	Actor     string
	Lines     []Line
}

// ApplyResult identifica la transacción persistida. Duplicate marca que la
// referencia ya tenía una deducción completada y se devolvió esa (idempotencia).
type ApplyResult struct {
	TransactionID string
	Duplicate     bool
}

// ApplyUseCase aplica lotes de deltas de saldo con semántica todo-o-nada:
// bloqueo de filas (SELECT FOR UPDATE), rechazo si algún saldo quedaría negativo
// y Commit/Rollback vía TxRunner.
type ApplyUseCase struct {
	txRunner TxRunner
	txRepo   repository.TransactionRepository // atado al pool, para la consulta de idempotencia
}

// NewApplyUseCase construye el caso de uso.
func NewApplyUseCase(txRunner TxRunner, txRepo repository.TransactionRepository) *ApplyUseCase {
	return &ApplyUseCase{txRunner: txRunner, txRepo: txRepo}
}

// Apply valida el lote, resuelve la idempotencia para deducciones de producción y
// ejecuta la unidad atómica:
//  1. bloquea cada material en orden determinista (por ID) para evitar deadlocks
//     entre applies concurrentes con materiales solapados,
//  2. calcula next = qty_on_hand + delta por línea; si alguno queda negativo aborta
//     con ErrInsufficientStock y no persiste nada,
//  3. escribe saldos, la Transaction (status completed), un LineItem y un
//     MovementRecord por línea, y hace Commit.
//
// Reaplicar la misma deducción (misma kind+reference) devuelve el ID previo sin
// tocar saldos: seguro ante reintentos y entregas at-least-once del caller.
func (uc *ApplyUseCase) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.Kind == entity.TransactionKindProductionDeduction {
		prev, err := uc.txRepo.GetCompletedByKindAndReference(in.Kind, in.Reference)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			return &ApplyResult{TransactionID: prev.ID, Duplicate: true}, nil
		}
	}

	now := time.Now()
	txID := uuid.New().String()

	// Orden determinista de bloqueo por ID de material.
	lines := make([]Line, len(in.Lines))
	copy(lines, in.Lines)
	sort.Slice(lines, func(i, j int) bool { return lines[i].MaterialID < lines[j].MaterialID })

	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		txRepo repository.TransactionRepository,
		movRepo repository.MovementRecordRepository,
	) error {
		// Fase 1: leer y validar todos los saldos bajo bloqueo.
		next := make([]decimal.Decimal, len(lines))
		for i, ln := range lines {
			mat, err := materialRepo.GetForUpdate(ln.MaterialID)
			if err != nil {
				return err
			}
			if mat == nil {
				return fmt.Errorf("%w: material %s", domain.ErrNotFound, ln.MaterialID)
			}
			n := mat.QtyOnHand.Add(ln.Delta)
			if n.IsNegative() {
				return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, mat.Name)
			}
			next[i] = n
		}

		// Fase 2: persistir saldos, transacción, líneas y auditoría.
		for i, ln := range lines {
			if err := materialRepo.UpdateBalance(ln.MaterialID, next[i], now); err != nil {
				return err
			}
		}
		tx := &entity.Transaction{
			ID:        txID,
			Kind:      in.Kind,
			Reference: in.Reference,
			Notes:     in.Notes,
			Status:    entity.TransactionStatusCompleted,
			CreatedAt: now,
			CreatedBy: in.Actor,
		}
		if err := txRepo.Create(tx); err != nil {
			return err
		}
		for _, ln := range lines {
			item := &entity.LineItem{
				ID:            uuid.New().String(),
				TransactionID: txID,
				MaterialID:    ln.MaterialID,
				Delta:         ln.Delta,
			}
			if err := txRepo.CreateLineItem(item); err != nil {
				return err
			}
			mov := &entity.MovementRecord{
				ID:         uuid.New().String(),
				MaterialID: ln.MaterialID,
				Delta:      ln.Delta,
				Type:       entity.MovementTypeFor(in.Kind, ln.Delta),
				Reference:  in.Reference,
				CreatedAt:  now,
				CreatedBy:  in.Actor,
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}
		}
		return nil
	})

	if errors.Is(err, domain.ErrDuplicate) {
		// Carrera perdida contra otro apply con la misma referencia: el índice único
		// rechazó el insert; devolver la transacción ganadora.
		prev, lookupErr := uc.txRepo.GetCompletedByKindAndReference(in.Kind, in.Reference)
		if lookupErr == nil && prev != nil {
			return &ApplyResult{TransactionID: prev.ID, Duplicate: true}, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return &ApplyResult{TransactionID: txID}, nil
}

// validateInput rechaza lotes malformados antes de cualquier lectura:
// kind desconocido, referencia vacía, lote vacío, deltas cero o material repetido
// (el caller debe consolidar por material).
func validateInput(in ApplyInput) error {
	if !entity.ValidTransactionKind(in.Kind) {
		return fmt.Errorf("%w: kind %q", domain.ErrInvalidInput, in.Kind)
	}
	if in.Reference == "" {
		return fmt.Errorf("%w: referencia vacía", domain.ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: lote sin líneas", domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(in.Lines))
	for _, ln := range in.Lines {
		if ln.MaterialID == "" {
			return fmt.Errorf("%w: línea sin material", domain.ErrInvalidInput)
		}
		if ln.Delta.IsZero() {
			return fmt.Errorf("%w: delta cero para material %s", domain.ErrInvalidInput, ln.MaterialID)
		}
		if _, dup := seen[ln.MaterialID]; dup {
			return fmt.Errorf("%w: material repetido %s", domain.ErrInvalidInput, ln.MaterialID)
		}
		seen[ln.MaterialID] = struct{}{}
	}
	return nil
}
