package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyTransactionRequest body para POST /api/transactions (compras y ajustes).
type ApplyTransactionRequest struct {
	Kind      string            `json:"kind"`
	Reference string            `json:"reference"`
	Notes     string            `json:"notes,omitempty"`
	Lines     []LineItemRequest `json:"lines"`
}

// LineItemRequest una línea de la transacción: delta firmado sobre un material.
type LineItemRequest struct {
	MaterialID string          `json:"material_id"`
	Delta      decimal.Decimal `json:"delta"`
}

// TransactionDTO respuesta de una transacción con sus líneas.
type TransactionDTO struct {
	ID        string        `json:"id"`
	Kind      string        `json:"kind"`
	Reference string        `json:"reference"`
	Notes     string        `json:"notes,omitempty"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	CreatedBy string        `json:"created_by,omitempty"`
	Lines     []LineItemDTO `json:"lines,omitempty"`
}

// LineItemDTO línea persistida de una transacción.
type LineItemDTO struct {
	MaterialID string          `json:"material_id"`
	Delta      decimal.Decimal `json:"delta"`
}

// MissingBOMWarningDTO advertencia de receta faltante para una línea del pedido.
// No es fatal: el resto del pedido se deduce igual.
type MissingBOMWarningDTO struct {
	ProductType string `json:"product_type"`
	Size        string `json:"size,omitempty"`
}

// DeductionReportDTO resultado de resolver y deducir un pedido.
// TransactionID vacío significa que no hubo nada que deducir (todas las líneas
// con receta faltante). AlreadyApplied marca la repetición idempotente.
type DeductionReportDTO struct {
	TransactionID  string                 `json:"transaction_id,omitempty"`
	AlreadyApplied bool                   `json:"already_applied"`
	Lines          []LineItemDTO          `json:"lines,omitempty"`
	Warnings       []MissingBOMWarningDTO `json:"warnings,omitempty"`
}

// MaterialBalanceDTO saldo actual de un material con su estado de alerta.
type MaterialBalanceDTO struct {
	MaterialID       string          `json:"material_id"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	QtyOnHand        decimal.Decimal `json:"qty_on_hand"`
	MinimumLevel     decimal.Decimal `json:"minimum_level"`
	RestockThreshold decimal.Decimal `json:"restock_threshold"`
	Status           string          `json:"status"`
}

// MovementDTO fila del libro de auditoría.
type MovementDTO struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Delta      decimal.Decimal `json:"delta"`
	Type       string          `json:"type"`
	Reference  string          `json:"reference"`
	CreatedAt  time.Time       `json:"created_at"`
	CreatedBy  string          `json:"created_by,omitempty"`
}

// BalanceAuditDTO verificación del invariante de saldo: qty_on_hand contra el saldo
// inicial más la suma del libro.
type BalanceAuditDTO struct {
	MaterialID     string          `json:"material_id"`
	QtyOnHand      decimal.Decimal `json:"qty_on_hand"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	LedgerSum      decimal.Decimal `json:"ledger_sum"`
	Drift          decimal.Decimal `json:"drift"` // qty_on_hand - (opening_balance + ledger_sum); debe ser 0
}
