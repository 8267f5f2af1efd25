package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo lectura de pedidos sobre PostgreSQL (usable con pool o tx). El pedido
// pertenece al pipeline externo; aquí solo se lee la lista de productos (JSONB)
// y se escribe production_stage.
type JobRepo struct {
	q Querier
}

// NewJobRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJobRepository(q Querier) *JobRepo {
	return &JobRepo{q: q}
}

// jobProductRow forma JSONB de una línea del pedido. Las entradas malformadas se
// rechazan aquí, en el borde, en lugar de propagar nulos a la matemática de deducción.
type jobProductRow struct {
	ProductType string           `json:"product_type"`
	Size        *string          `json:"size"`
	Quantity    *decimal.Decimal `json:"quantity"`
}

// GetByID obtiene un pedido por ID.
func (r *JobRepo) GetByID(id string) (*entity.Job, error) {
	query := `SELECT id, products, production_stage FROM jobs WHERE id = $1`
	j, err := r.scanJob(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// GetForUpdate obtiene el pedido y bloquea su fila (SELECT FOR UPDATE) para
// serializar transiciones de etapa concurrentes del mismo pedido.
func (r *JobRepo) GetForUpdate(id string) (*entity.Job, error) {
	query := `SELECT id, products, production_stage FROM jobs WHERE id = $1 FOR UPDATE`
	j, err := r.scanJob(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job for update: %w", err)
	}
	return j, nil
}

// UpdateStage escribe la etapa actual del pedido.
func (r *JobRepo) UpdateStage(id, stage string, at time.Time) error {
	query := `UPDATE jobs SET production_stage = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, stage, at)
	if err != nil {
		return fmt.Errorf("update job stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *JobRepo) scanJob(row pgx.Row) (*entity.Job, error) {
	var j entity.Job
	var products []byte
	var stage *string
	if err := row.Scan(&j.ID, &products, &stage); err != nil {
		return nil, err
	}
	if stage != nil {
		j.ProductionStage = *stage
	}

	var rows []jobProductRow
	if len(products) > 0 {
		if err := json.Unmarshal(products, &rows); err != nil {
			return nil, fmt.Errorf("%w: productos del pedido %s ilegibles: %v", domain.ErrInvalidInput, j.ID, err)
		}
	}
	for _, p := range rows {
		if p.ProductType == "" || p.Quantity == nil || !p.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: línea de producto malformada en pedido %s", domain.ErrInvalidInput, j.ID)
		}
		j.Products = append(j.Products, entity.JobProduct{
			ProductType: p.ProductType,
			Size:        p.Size,
			Quantity:    *p.Quantity,
		})
	}
	return &j, nil
}
