package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de auditoría.
const (
	MovementTypeConsumed  = "consumed"  // consumo de producción
	MovementTypeRestocked = "restocked" // entrada por compra
	MovementTypeAudit     = "audit"     // ajuste manual
)

// MovementRecord es la fila de auditoría append-only del ledger: un registro por
// LineItem aplicado. El libro de movimientos es la fuente de verdad; el saldo
// materializado del material debe igualar la suma de sus deltas.
type MovementRecord struct {
	ID         string
	MaterialID string
	Delta      decimal.Decimal
	Type       string
	Reference  string
	CreatedAt  time.Time
	CreatedBy  string
}

// MovementTypeFor deriva el tipo de movimiento según el delta y el tipo de transacción:
// delta negativo es consumo; un ajuste positivo queda como auditoría; el resto es reposición.
func MovementTypeFor(kind string, delta decimal.Decimal) string {
	if delta.IsNegative() {
		return MovementTypeConsumed
	}
	if kind == TransactionKindAdjustment {
		return MovementTypeAudit
	}
	return MovementTypeRestocked
}
