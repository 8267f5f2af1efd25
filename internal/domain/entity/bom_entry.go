package entity

import "github.com/shopspring/decimal"

// BOMEntry representa una línea de la receta de materiales de un tipo de producto.
// Size = nil denota la receta genérica del tipo de producto; una fila con talla
// específica tiene precedencia sobre la genérica al resolver consumos.
// Varias filas pueden compartir (ProductType, Size): una por material requerido.
type BOMEntry struct {
	ID          string
	ProductType string
	Size        *string
	MaterialID  string
	QtyPerUnit  decimal.Decimal
}
