package bom_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Taller-api/internal/domain/bom"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func entry(productType string, size *string, materialID, qtyPerUnit string) *entity.BOMEntry {
	return &entity.BOMEntry{
		ProductType: productType,
		Size:        size,
		MaterialID:  materialID,
		QtyPerUnit:  decimal.RequireFromString(qtyPerUnit),
	}
}

// Caso 1: existen filas específicas de talla y genéricas → ganan las específicas.
func TestResolve_TallaEspecificaTienePrecedencia(t *testing.T) {
	specific := []*entity.BOMEntry{entry("camiseta", strPtr("XL"), "tela-roja", "2.5")}
	generic := []*entity.BOMEntry{entry("camiseta", nil, "tela-roja", "2.0")}

	res := bom.Resolve(specific, generic, decimal.NewFromInt(4))

	require.False(t, res.Missing)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "tela-roja", res.Lines[0].MaterialID)
	// -(2.5 × 4) = -10, no -(2.0 × 4)
	assert.True(t, res.Lines[0].Delta.Equal(decimal.RequireFromString("-10")),
		"debe usar la receta específica, delta = %s", res.Lines[0].Delta)
}

// Caso 2 (Escenario D): sin receta específica para "Jersey" XL, cae a la genérica
// de 1.5m de tela navy por unidad; 4 unidades resuelven a -6m.
func TestResolve_FallbackARecetaGenerica(t *testing.T) {
	generic := []*entity.BOMEntry{entry("jersey", nil, "tela-navy", "1.5")}

	res := bom.Resolve(nil, generic, decimal.NewFromInt(4))

	require.False(t, res.Missing)
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].Delta.Equal(decimal.RequireFromString("-6")),
		"fallback genérico: delta = %s", res.Lines[0].Delta)
}

// Caso 3: sin filas específicas ni genéricas → Missing, sin líneas.
func TestResolve_SinRecetaReportaMissing(t *testing.T) {
	res := bom.Resolve(nil, nil, decimal.NewFromInt(10))

	assert.True(t, res.Missing)
	assert.Empty(t, res.Lines)
}

// Caso 4: una receta con varios materiales produce un delta por material.
func TestResolve_VariosMaterialesPorReceta(t *testing.T) {
	specific := []*entity.BOMEntry{
		entry("gorra", strPtr("M"), "tela-roja", "0.3"),
		entry("gorra", strPtr("M"), "hilo", "12"),
	}

	res := bom.Resolve(specific, nil, decimal.NewFromInt(10))

	require.False(t, res.Missing)
	require.Len(t, res.Lines, 2)
	assert.True(t, res.Lines[0].Delta.Equal(decimal.RequireFromString("-3")))
	assert.True(t, res.Lines[1].Delta.Equal(decimal.RequireFromString("-120")))
}

// Caso 5: cantidades fraccionarias mantienen precisión decimal (sin flotantes).
func TestResolve_PrecisionDecimal(t *testing.T) {
	generic := []*entity.BOMEntry{entry("bandera", nil, "tela-navy", "0.1")}

	res := bom.Resolve(nil, generic, decimal.NewFromInt(3))

	require.Len(t, res.Lines, 1)
	assert.Equal(t, "-0.3", res.Lines[0].Delta.String(),
		"0.1 × 3 debe ser exactamente 0.3")
}
