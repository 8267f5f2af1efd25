package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo lectura de recetas de materiales sobre PostgreSQL (usable con pool o tx).
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

// ListForProduct devuelve las filas que coinciden exactamente con (productType, size).
// size = nil consulta la receta genérica (size IS NULL); el fallback talla→genérica
// lo decide el resolver, no esta consulta.
func (r *BOMRepo) ListForProduct(productType string, size *string) ([]*entity.BOMEntry, error) {
	query := `
		SELECT id, product_type, size, material_id, qty_per_unit
		FROM bom_entries
		WHERE product_type = $1 AND size IS NOT DISTINCT FROM $2
		ORDER BY material_id`
	rows, err := r.q.Query(context.Background(), query, productType, size)
	if err != nil {
		return nil, fmt.Errorf("list bom entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.BOMEntry
	for rows.Next() {
		var e entity.BOMEntry
		if err := rows.Scan(&e.ID, &e.ProductType, &e.Size, &e.MaterialID, &e.QtyPerUnit); err != nil {
			return nil, fmt.Errorf("scan bom entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
