package ledger

import (
	"fmt"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// TransactionQueryUseCase lecturas sobre transacciones del ledger (solo display).
type TransactionQueryUseCase struct {
	txRepo repository.TransactionRepository
}

// NewTransactionQueryUseCase construye el caso de uso.
func NewTransactionQueryUseCase(txRepo repository.TransactionRepository) *TransactionQueryUseCase {
	return &TransactionQueryUseCase{txRepo: txRepo}
}

// GetTransaction devuelve una transacción con sus líneas.
func (uc *TransactionQueryUseCase) GetTransaction(id string) (*dto.TransactionDTO, error) {
	tx, err := uc.txRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: transacción %s", domain.ErrNotFound, id)
	}
	items, err := uc.txRepo.ListLineItems(id)
	if err != nil {
		return nil, err
	}

	out := &dto.TransactionDTO{
		ID:        tx.ID,
		Kind:      tx.Kind,
		Reference: tx.Reference,
		Notes:     tx.Notes,
		Status:    tx.Status,
		CreatedAt: tx.CreatedAt,
		CreatedBy: tx.CreatedBy,
	}
	for _, it := range items {
		out.Lines = append(out.Lines, dto.LineItemDTO{MaterialID: it.MaterialID, Delta: it.Delta})
	}
	return out, nil
}

// ListByKind lista transacciones recientes de un tipo (paginado).
func (uc *TransactionQueryUseCase) ListByKind(kind string, limit, offset int) ([]dto.TransactionDTO, error) {
	list, err := uc.txRepo.ListByKind(kind, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionDTO, 0, len(list))
	for _, tx := range list {
		out = append(out, dto.TransactionDTO{
			ID:        tx.ID,
			Kind:      tx.Kind,
			Reference: tx.Reference,
			Notes:     tx.Notes,
			Status:    tx.Status,
			CreatedAt: tx.CreatedAt,
			CreatedBy: tx.CreatedBy,
		})
	}
	return out, nil
}
