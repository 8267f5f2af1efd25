package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un insumo de producción (tela, tinta, vinilo, etc.).
// QtyOnHand es un saldo materializado: siempre debe igualar el saldo inicial más la
// suma de los deltas de todos los MovementRecord del material. Solo el motor de
// transacciones lo muta; OpeningBalance lo siembra el administrador externo al crear
// el material y no cambia después.
type Material struct {
	ID               string
	Name             string
	Unit             string // etiqueta de unidad: m, kg, und
	QtyOnHand        decimal.Decimal
	OpeningBalance   decimal.Decimal // saldo sembrado al alta, fuera del libro
	MinimumLevel     decimal.Decimal // umbral crítico
	RestockThreshold decimal.Decimal // umbral de reposición (>= MinimumLevel)
	SupplierID       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
