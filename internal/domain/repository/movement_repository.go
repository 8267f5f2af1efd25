package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// MovementRecordRepository define el puerto del libro de auditoría (append-only).
type MovementRecordRepository interface {
	Create(m *entity.MovementRecord) error
	ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error)
	// SumByMaterial recalcula el saldo desde el libro; usado para verificar
	// que qty_on_hand no tiene deriva respecto a la fuente de verdad.
	SumByMaterial(materialID string) (decimal.Decimal, error)
}
