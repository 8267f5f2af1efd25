package repository

import "github.com/jhoicas/Taller-api/internal/domain/entity"

// TransactionRepository define el puerto de persistencia para transacciones del ledger.
type TransactionRepository interface {
	Create(tx *entity.Transaction) error
	CreateLineItem(item *entity.LineItem) error
	GetByID(id string) (*entity.Transaction, error)
	// GetCompletedByKindAndReference busca una transacción completada con la misma
	// (kind, reference); es la consulta de idempotencia de las deducciones.
	GetCompletedByKindAndReference(kind, reference string) (*entity.Transaction, error)
	ListLineItems(transactionID string) ([]*entity.LineItem, error)
	ListByKind(kind string, limit, offset int) ([]*entity.Transaction, error)
}
