package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// Receta de prueba: la camiseta talla M tiene receta específica; la genérica de
// camiseta y la genérica de jersey cubren el resto de tallas.
func testBOM() *fakeBOMRepo {
	return &fakeBOMRepo{entries: []*entity.BOMEntry{
		{ID: "b1", ProductType: "camiseta", Size: strPtr("M"), MaterialID: "tela-dri", QtyPerUnit: dec("1.2")},
		{ID: "b2", ProductType: "camiseta", Size: strPtr("M"), MaterialID: "tinta-neg", QtyPerUnit: dec("0.05")},
		{ID: "b3", ProductType: "camiseta", Size: nil, MaterialID: "tela-dri", QtyPerUnit: dec("1.5")},
		{ID: "b4", ProductType: "jersey", Size: nil, MaterialID: "tela-dri", QtyPerUnit: dec("1.5")},
	}}
}

func newDeductionFixture(jobs map[string]*entity.Job, materials ...*entity.Material) (*ledger.DeductionUseCase, *fakeStore) {
	store := newFakeStore(materials...)
	txRepo := &fakeTxRepo{store: store}
	apply := ledger.NewApplyUseCase(&fakeTxRunner{store: store}, txRepo)
	uc := ledger.NewDeductionUseCase(&fakeJobRepo{jobs: jobs}, testBOM(), txRepo, apply)
	return uc, store
}

func TestResolveAndDeduct_RecetaEspecifica(t *testing.T) {
	jobs := map[string]*entity.Job{
		"job-1": {ID: "job-1", Products: []entity.JobProduct{
			{ProductType: "camiseta", Size: strPtr("M"), Quantity: dec("10")},
		}},
	}
	uc, store := newDeductionFixture(jobs,
		material("tela-dri", "Tela Dri-Fit", "50"),
		material("tinta-neg", "Tinta Negra", "5"),
	)

	report, err := uc.ResolveAndDeduct(context.Background(), "job-1", "operador")
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.False(t, report.AlreadyApplied)
	assert.Empty(t, report.Warnings)
	require.Len(t, report.Lines, 2)

	// La receta de talla M gana sobre la genérica: 1.2 por unidad, no 1.5.
	assert.True(t, store.materials["tela-dri"].QtyOnHand.Equal(dec("38")),
		"50 - 1.2*10 = 38")
	assert.True(t, store.materials["tinta-neg"].QtyOnHand.Equal(dec("4.5")),
		"5 - 0.05*10 = 4.5")

	tx := store.txs[report.TransactionID]
	require.NotNil(t, tx)
	assert.Equal(t, entity.TransactionKindProductionDeduction, tx.Kind)
	assert.Equal(t, "job-1", tx.Reference, "la referencia es el ID del pedido")
}

func TestResolveAndDeduct_FallbackGenericoYConsolidacion(t *testing.T) {
	// Dos productos distintos consumen tela-dri: camiseta talla S (sin receta
	// específica, cae a la genérica 1.5) y jersey genérico (1.5). Los deltas se
	// consolidan en una sola línea por material.
	jobs := map[string]*entity.Job{
		"job-2": {ID: "job-2", Products: []entity.JobProduct{
			{ProductType: "camiseta", Size: strPtr("S"), Quantity: dec("2")},
			{ProductType: "jersey", Quantity: dec("4")},
		}},
	}
	uc, store := newDeductionFixture(jobs, material("tela-dri", "Tela Dri-Fit", "20"))

	report, err := uc.ResolveAndDeduct(context.Background(), "job-2", "")
	require.NoError(t, err)
	require.Len(t, report.Lines, 1, "mismo material desde dos productos = una línea")
	assert.True(t, report.Lines[0].Delta.Equal(dec("-9")), "1.5*2 + 1.5*4 = 9 consumidos")
	assert.True(t, store.materials["tela-dri"].QtyOnHand.Equal(dec("11")))
	assert.Len(t, store.items, 1)
}

func TestResolveAndDeduct_SinRecetaGeneraAdvertencia(t *testing.T) {
	jobs := map[string]*entity.Job{
		"job-3": {ID: "job-3", Products: []entity.JobProduct{
			{ProductType: "camiseta", Size: strPtr("M"), Quantity: dec("1")},
			{ProductType: "gorra", Size: strPtr("U"), Quantity: dec("5")},
		}},
	}
	uc, store := newDeductionFixture(jobs,
		material("tela-dri", "Tela Dri-Fit", "50"),
		material("tinta-neg", "Tinta Negra", "5"),
	)

	report, err := uc.ResolveAndDeduct(context.Background(), "job-3", "")
	require.NoError(t, err, "una línea sin receta advierte, no bloquea al resto")
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "gorra", report.Warnings[0].ProductType)
	assert.Equal(t, "U", report.Warnings[0].Size)
	assert.NotEmpty(t, report.TransactionID, "las líneas con receta sí se deducen")
	assert.True(t, store.materials["tela-dri"].QtyOnHand.Equal(dec("48.8")))
}

func TestResolveAndDeduct_TodoSinReceta_NoCreaTransaccion(t *testing.T) {
	jobs := map[string]*entity.Job{
		"job-4": {ID: "job-4", Products: []entity.JobProduct{
			{ProductType: "gorra", Quantity: dec("3")},
		}},
	}
	uc, store := newDeductionFixture(jobs)

	report, err := uc.ResolveAndDeduct(context.Background(), "job-4", "")
	require.NoError(t, err)
	assert.Empty(t, report.TransactionID)
	assert.False(t, report.AlreadyApplied)
	require.Len(t, report.Warnings, 1)
	assert.Empty(t, store.txs, "sin líneas resueltas no debe existir transacción")
}

func TestResolveAndDeduct_Reintento_EsIdempotente(t *testing.T) {
	jobs := map[string]*entity.Job{
		"job-5": {ID: "job-5", Products: []entity.JobProduct{
			{ProductType: "jersey", Quantity: dec("2")},
		}},
	}
	uc, store := newDeductionFixture(jobs, material("tela-dri", "Tela Dri-Fit", "10"))

	first, err := uc.ResolveAndDeduct(context.Background(), "job-5", "")
	require.NoError(t, err)

	second, err := uc.ResolveAndDeduct(context.Background(), "job-5", "")
	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.True(t, store.materials["tela-dri"].QtyOnHand.Equal(dec("7")),
		"el reintento no debe deducir de nuevo")
}

func TestPreview_NoMutaYCoincideConLaDeduccion(t *testing.T) {
	jobs := map[string]*entity.Job{
		"job-6": {ID: "job-6", Products: []entity.JobProduct{
			{ProductType: "camiseta", Size: strPtr("M"), Quantity: dec("3")},
		}},
	}
	uc, store := newDeductionFixture(jobs,
		material("tela-dri", "Tela Dri-Fit", "50"),
		material("tinta-neg", "Tinta Negra", "5"),
	)

	preview, err := uc.Preview(context.Background(), "job-6")
	require.NoError(t, err)
	assert.Empty(t, preview.TransactionID)
	assert.False(t, preview.AlreadyApplied)
	assert.Empty(t, store.txs, "la vista previa no debe persistir nada")
	assert.True(t, store.materials["tela-dri"].QtyOnHand.Equal(dec("50")))

	applied, err := uc.ResolveAndDeduct(context.Background(), "job-6", "")
	require.NoError(t, err)
	assert.Equal(t, preview.Lines, applied.Lines,
		"la vista previa y la deducción comparten la resolución")

	// Tras aplicar, la vista previa referencia la transacción existente.
	after, err := uc.Preview(context.Background(), "job-6")
	require.NoError(t, err)
	assert.True(t, after.AlreadyApplied)
	assert.Equal(t, applied.TransactionID, after.TransactionID)
}

func TestResolveAndDeduct_PedidoInexistente(t *testing.T) {
	uc, _ := newDeductionFixture(map[string]*entity.Job{})
	_, err := uc.ResolveAndDeduct(context.Background(), "job-x", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveAndDeduct_LineaMalformada(t *testing.T) {
	jobs := map[string]*entity.Job{
		"job-7": {ID: "job-7", Products: []entity.JobProduct{
			{ProductType: "camiseta", Quantity: dec("0")},
		}},
		"job-8": {ID: "job-8"},
	}
	uc, _ := newDeductionFixture(jobs)

	_, err := uc.ResolveAndDeduct(context.Background(), "job-7", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva")

	_, err = uc.ResolveAndDeduct(context.Background(), "job-8", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "pedido sin productos")
}
