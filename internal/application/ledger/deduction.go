package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/bom"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// DeductionUseCase resuelve la receta de materiales de un pedido y aplica la
// deducción como una sola transacción del ledger. Las líneas sin receta se
// reportan como advertencias sin abortar el resto del pedido.
type DeductionUseCase struct {
	jobRepo repository.JobRepository
	bomRepo repository.BOMRepository
	txRepo  repository.TransactionRepository
	apply   *ApplyUseCase
}

// NewDeductionUseCase construye el caso de uso.
func NewDeductionUseCase(
	jobRepo repository.JobRepository,
	bomRepo repository.BOMRepository,
	txRepo repository.TransactionRepository,
	apply *ApplyUseCase,
) *DeductionUseCase {
	return &DeductionUseCase{jobRepo: jobRepo, bomRepo: bomRepo, txRepo: txRepo, apply: apply}
}

// ResolveAndDeduct resuelve la lista de productos del pedido a deltas por material
// y los aplica como una deducción de producción con referencia = ID del pedido.
// Si todas las líneas carecen de receta no se crea transacción y el reporte lleva
// solo advertencias. La repetición para el mismo pedido es idempotente.
func (uc *DeductionUseCase) ResolveAndDeduct(ctx context.Context, jobID, actor string) (*dto.DeductionReportDTO, error) {
	job, err := uc.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, jobID)
	}

	lines, warnings, err := uc.resolveJob(job)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		// Nada que deducir: todas las líneas del pedido sin receta.
		return &dto.DeductionReportDTO{Warnings: warnings}, nil
	}

	res, err := uc.apply.Apply(ctx, ApplyInput{
		Kind:      entity.TransactionKindProductionDeduction,
		Reference: job.ID,
		Notes:     "deducción de materiales por producción",
		Actor:     actor,
		Lines:     lines,
	})
	if err != nil {
		return nil, err
	}

	return &dto.DeductionReportDTO{
		TransactionID:  res.TransactionID,
		AlreadyApplied: res.Duplicate,
		Lines:          toLineDTOs(lines),
		Warnings:       warnings,
	}, nil
}

// Preview calcula las deducciones esperadas del pedido sin aplicarlas (dry-run).
// Comparte exactamente el mismo camino de resolución que ResolveAndDeduct para
// que la vista previa nunca diverja de la deducción real. Si el pedido ya tiene
// una deducción completada, el reporte la referencia.
func (uc *DeductionUseCase) Preview(ctx context.Context, jobID string) (*dto.DeductionReportDTO, error) {
	job, err := uc.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, jobID)
	}

	lines, warnings, err := uc.resolveJob(job)
	if err != nil {
		return nil, err
	}

	report := &dto.DeductionReportDTO{
		Lines:    toLineDTOs(lines),
		Warnings: warnings,
	}
	prev, err := uc.txRepo.GetCompletedByKindAndReference(entity.TransactionKindProductionDeduction, job.ID)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		report.TransactionID = prev.ID
		report.AlreadyApplied = true
	}
	return report, nil
}

// resolveJob resuelve cada línea del pedido vía bom.Resolve y consolida los deltas
// por material (un pedido puede consumir el mismo material desde varios productos).
// El orden de las líneas resultantes es el de primera aparición del material.
func (uc *DeductionUseCase) resolveJob(job *entity.Job) ([]Line, []dto.MissingBOMWarningDTO, error) {
	if len(job.Products) == 0 {
		return nil, nil, fmt.Errorf("%w: pedido %s sin productos", domain.ErrInvalidInput, job.ID)
	}

	totals := make(map[string]decimal.Decimal)
	var order []string
	var warnings []dto.MissingBOMWarningDTO

	for _, p := range job.Products {
		if p.ProductType == "" || !p.Quantity.GreaterThan(decimal.Zero) {
			return nil, nil, fmt.Errorf("%w: línea de pedido malformada (%q, %s)",
				domain.ErrInvalidInput, p.ProductType, p.Quantity)
		}

		var specific []*entity.BOMEntry
		var err error
		if p.Size != nil {
			specific, err = uc.bomRepo.ListForProduct(p.ProductType, p.Size)
			if err != nil {
				return nil, nil, err
			}
		}
		var generic []*entity.BOMEntry
		if len(specific) == 0 {
			generic, err = uc.bomRepo.ListForProduct(p.ProductType, nil)
			if err != nil {
				return nil, nil, err
			}
		}

		res := bom.Resolve(specific, generic, p.Quantity)
		if res.Missing {
			w := dto.MissingBOMWarningDTO{ProductType: p.ProductType}
			if p.Size != nil {
				w.Size = *p.Size
			}
			warnings = append(warnings, w)
			continue
		}
		for _, ln := range res.Lines {
			if _, ok := totals[ln.MaterialID]; !ok {
				order = append(order, ln.MaterialID)
			}
			totals[ln.MaterialID] = totals[ln.MaterialID].Add(ln.Delta)
		}
	}

	lines := make([]Line, 0, len(order))
	for _, id := range order {
		lines = append(lines, Line{MaterialID: id, Delta: totals[id]})
	}
	return lines, warnings, nil
}

func toLineDTOs(lines []Line) []dto.LineItemDTO {
	out := make([]dto.LineItemDTO, 0, len(lines))
	for _, ln := range lines {
		out = append(out, dto.LineItemDTO{MaterialID: ln.MaterialID, Delta: ln.Delta})
	}
	return out
}
