package repository

import (
	"time"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// JobRepository define el puerto de lectura de pedidos y escritura de su etapa.
// El resto del pedido lo administra el colaborador externo (pipeline de leads).
type JobRepository interface {
	GetByID(id string) (*entity.Job, error)
	// GetForUpdate bloquea la fila del pedido para serializar transiciones de etapa.
	GetForUpdate(id string) (*entity.Job, error)
	UpdateStage(id, stage string, at time.Time) error
}
