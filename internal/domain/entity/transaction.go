package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del ledger.
const (
	TransactionKindPurchaseOrder       = "purchase_order"       // compra / reposición
	TransactionKindProductionDeduction = "production_deduction" // consumo por producción
	TransactionKindAdjustment          = "adjustment"           // ajuste manual / auditoría
)

// Estados de transacción. Una transacción fallida nunca se persiste con efectos
// parciales; el estado failed queda reservado para registro externo.
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction representa una aplicación atómica de deltas de saldo sobre el inventario.
// Reference es la clave de correlación externa (ej. ID del pedido); única por Kind
// para las deducciones de producción (idempotencia). Nunca se muta tras crearse.
type Transaction struct {
	ID        string
	Kind      string
	Reference string
	Notes     string
	Status    string
	CreatedAt time.Time
	CreatedBy string
}

// LineItem es una línea de una transacción: delta firmado sobre un material.
// Negativo = consumo, positivo = reposición/ajuste.
type LineItem struct {
	ID            string
	TransactionID string
	MaterialID    string
	Delta         decimal.Decimal
}

// ValidTransactionKind indica si kind es uno de los tipos soportados.
func ValidTransactionKind(kind string) bool {
	switch kind {
	case TransactionKindPurchaseOrder, TransactionKindProductionDeduction, TransactionKindAdjustment:
		return true
	}
	return false
}
