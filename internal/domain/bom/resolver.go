// Package bom contiene el servicio de dominio que resuelve recetas de materiales
// (bill of materials) a deltas de consumo por material.
package bom

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// Line es un delta de consumo resuelto para un material (siempre negativo).
type Line struct {
	MaterialID string
	Delta      decimal.Decimal
}

// Resolution es el resultado etiquetado de una resolución: o bien líneas de
// consumo, o bien Missing = true cuando no existe receta específica ni genérica.
// Missing no es fatal: el caller continúa con el resto del pedido y lo reporta
// como advertencia.
type Resolution struct {
	Lines   []Line
	Missing bool
}

// Resolve calcula los deltas de consumo de una línea de pedido.
// Precedencia: las filas específicas de talla ganan sobre las genéricas; si no
// hay específicas se usa la receta genérica (size NULL); si tampoco hay, Missing.
// Cada delta es -(qty_per_unit × quantity). Función pura y total: no consulta
// nada, opera sobre las filas ya leídas.
func Resolve(specific, generic []*entity.BOMEntry, quantity decimal.Decimal) Resolution {
	entries := specific
	if len(entries) == 0 {
		entries = generic
	}
	if len(entries) == 0 {
		return Resolution{Missing: true}
	}

	lines := make([]Line, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, Line{
			MaterialID: e.MaterialID,
			Delta:      e.QtyPerUnit.Mul(quantity).Neg(),
		})
	}
	return Resolution{Lines: lines}
}
