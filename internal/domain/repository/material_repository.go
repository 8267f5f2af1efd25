package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// MaterialRepository define el puerto para consultar y actualizar materiales.
// El saldo (qty_on_hand) solo se actualiza dentro de transacciones del ledger.
type MaterialRepository interface {
	GetByID(id string) (*entity.Material, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Material, error)
	UpdateBalance(id string, qty decimal.Decimal, at time.Time) error
	List(limit, offset int) ([]*entity.Material, error)
}
