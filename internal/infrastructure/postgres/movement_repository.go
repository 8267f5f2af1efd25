package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.MovementRecordRepository = (*MovementRecordRepo)(nil)

// MovementRecordRepo libro de auditoría append-only sobre PostgreSQL (usable con
// pool o tx). Las filas nunca se actualizan ni se borran.
type MovementRecordRepo struct {
	q Querier
}

// NewMovementRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRecordRepository(q Querier) *MovementRecordRepo {
	return &MovementRecordRepo{q: q}
}

// Create persiste una fila de auditoría.
func (r *MovementRecordRepo) Create(m *entity.MovementRecord) error {
	query := `
		INSERT INTO movement_records (id, material_id, delta, movement_type, reference, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.MaterialID, m.Delta, m.Type, m.Reference, m.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create movement record: %w", err)
	}
	return nil
}

// ListByMaterial lista movimientos de un material en un rango de fechas (paginado).
func (r *MovementRecordRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `
		SELECT id, material_id, delta, movement_type, reference, created_at, created_by
		FROM movement_records WHERE material_id = $1`
	args := []any{materialID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.MovementRecord
	for rows.Next() {
		var m entity.MovementRecord
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.MaterialID, &m.Delta, &m.Type, &m.Reference, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByMaterial recalcula el saldo del material desde el libro de movimientos.
func (r *MovementRecordRepo) SumByMaterial(materialID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(delta), 0) FROM movement_records WHERE material_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, materialID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
