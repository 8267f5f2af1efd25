// Package inventory contiene las consultas read-only sobre saldos de materiales
// y el libro de movimientos, para display del tablero.
package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Taller-api/internal/domain/inventory"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

const alertScanPageSize = 200 // lote de paginación al recorrer materiales

// QueryUseCase consultas de saldo, alertas y auditoría. Sin camino de escritura:
// el estado de alerta se recalcula en cada lectura y nunca se persiste.
type QueryUseCase struct {
	materialRepo repository.MaterialRepository
	movRepo      repository.MovementRecordRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	materialRepo repository.MaterialRepository,
	movRepo repository.MovementRecordRepository,
) *QueryUseCase {
	return &QueryUseCase{materialRepo: materialRepo, movRepo: movRepo}
}

// GetBalance devuelve el saldo actual de un material con su estado de alerta.
func (uc *QueryUseCase) GetBalance(materialID string) (*dto.MaterialBalanceDTO, error) {
	m, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, materialID)
	}
	out := toBalanceDTO(m)
	return &out, nil
}

// GetAlerts devuelve los materiales actualmente en estado crítico o bajo,
// los críticos primero.
func (uc *QueryUseCase) GetAlerts() ([]dto.MaterialBalanceDTO, error) {
	var critical, low []dto.MaterialBalanceDTO
	offset := 0
	for {
		page, err := uc.materialRepo.List(alertScanPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			switch domaininv.Classify(m) {
			case domaininv.AlertCritical:
				critical = append(critical, toBalanceDTO(m))
			case domaininv.AlertLow:
				low = append(low, toBalanceDTO(m))
			}
		}
		if len(page) < alertScanPageSize {
			break
		}
		offset += alertScanPageSize
	}
	return append(critical, low...), nil
}

// ListMovements devuelve el rastro de auditoría de un material (paginado, rango opcional).
func (uc *QueryUseCase) ListMovements(materialID string, from, to *time.Time, limit, offset int) ([]dto.MovementDTO, error) {
	m, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, materialID)
	}
	list, err := uc.movRepo.ListByMaterial(materialID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementDTO, 0, len(list))
	for _, mv := range list {
		out = append(out, dto.MovementDTO{
			ID:         mv.ID,
			MaterialID: mv.MaterialID,
			Delta:      mv.Delta,
			Type:       mv.Type,
			Reference:  mv.Reference,
			CreatedAt:  mv.CreatedAt,
			CreatedBy:  mv.CreatedBy,
		})
	}
	return out, nil
}

// VerifyBalance recalcula el saldo como saldo inicial + suma del libro de movimientos
// y reporta la deriva respecto al saldo materializado (debe ser cero: invariante del
// ledger; el saldo inicial lo siembra el administrador externo fuera del libro).
func (uc *QueryUseCase) VerifyBalance(materialID string) (*dto.BalanceAuditDTO, error) {
	m, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, materialID)
	}
	sum, err := uc.movRepo.SumByMaterial(materialID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceAuditDTO{
		MaterialID:     materialID,
		QtyOnHand:      m.QtyOnHand,
		OpeningBalance: m.OpeningBalance,
		LedgerSum:      sum,
		Drift:          m.QtyOnHand.Sub(m.OpeningBalance.Add(sum)),
	}, nil
}

func toBalanceDTO(m *entity.Material) dto.MaterialBalanceDTO {
	return dto.MaterialBalanceDTO{
		MaterialID:       m.ID,
		Name:             m.Name,
		Unit:             m.Unit,
		QtyOnHand:        m.QtyOnHand,
		MinimumLevel:     m.MinimumLevel,
		RestockThreshold: m.RestockThreshold,
		Status:           string(domaininv.Classify(m)),
	}
}
