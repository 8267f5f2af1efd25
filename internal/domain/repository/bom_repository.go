package repository

import "github.com/jhoicas/Taller-api/internal/domain/entity"

// BOMRepository define el puerto de lectura de recetas de materiales.
// Las recetas las administra una superficie externa; aquí solo se consultan.
type BOMRepository interface {
	// ListForProduct devuelve las filas que coinciden exactamente con (productType, size).
	// size = nil consulta la receta genérica (size IS NULL).
	ListForProduct(productType string, size *string) ([]*entity.BOMEntry, error)
}
