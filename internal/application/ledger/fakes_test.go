package ledger_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// fakeStore estado en memoria compartido por los repositorios falsos. El TxRunner
// falso clona el estado antes de ejecutar la unidad de trabajo y solo lo publica
// si la función termina sin error, imitando Commit/Rollback.
type fakeStore struct {
	materials map[string]*entity.Material
	txs       map[string]*entity.Transaction
	items     []*entity.LineItem
	movements []*entity.MovementRecord

	// lockOrder registra el orden de GetForUpdate para verificar bloqueo determinista.
	lockOrder []string
}

func newFakeStore(materials ...*entity.Material) *fakeStore {
	s := &fakeStore{
		materials: make(map[string]*entity.Material),
		txs:       make(map[string]*entity.Transaction),
	}
	for _, m := range materials {
		s.materials[m.ID] = m
	}
	return s
}

func (s *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		materials: make(map[string]*entity.Material, len(s.materials)),
		txs:       make(map[string]*entity.Transaction, len(s.txs)),
		items:     append([]*entity.LineItem(nil), s.items...),
		movements: append([]*entity.MovementRecord(nil), s.movements...),
		lockOrder: s.lockOrder,
	}
	for id, m := range s.materials {
		cp := *m
		c.materials[id] = &cp
	}
	for id, tx := range s.txs {
		cp := *tx
		c.txs[id] = &cp
	}
	return c
}

func (s *fakeStore) completedByKindAndRef(kind, ref string) *entity.Transaction {
	for _, tx := range s.txs {
		if tx.Kind == kind && tx.Reference == ref && tx.Status == entity.TransactionStatusCompleted {
			return tx
		}
	}
	return nil
}

type fakeMaterialRepo struct{ store *fakeStore }

func (r *fakeMaterialRepo) GetByID(id string) (*entity.Material, error) {
	m, ok := r.store.materials[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMaterialRepo) GetForUpdate(id string) (*entity.Material, error) {
	r.store.lockOrder = append(r.store.lockOrder, id)
	return r.GetByID(id)
}

func (r *fakeMaterialRepo) UpdateBalance(id string, qty decimal.Decimal, at time.Time) error {
	m, ok := r.store.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.QtyOnHand = qty
	m.UpdatedAt = at
	return nil
}

func (r *fakeMaterialRepo) List(limit, offset int) ([]*entity.Material, error) {
	out := make([]*entity.Material, 0, len(r.store.materials))
	for _, m := range r.store.materials {
		cp := *m
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// fakeTxRepo imita el índice único parcial de deducciones completadas: un segundo
// insert con la misma (kind, reference) devuelve domain.ErrDuplicate.
// skipLookups hace que las primeras n consultas de idempotencia devuelvan nil,
// simulando un escritor rival aún no visible en el camino rápido.
type fakeTxRepo struct {
	store       *fakeStore
	skipLookups int
}

func (r *fakeTxRepo) Create(tx *entity.Transaction) error {
	if tx.Kind == entity.TransactionKindProductionDeduction && tx.Status == entity.TransactionStatusCompleted {
		if prev := r.store.completedByKindAndRef(tx.Kind, tx.Reference); prev != nil {
			return domain.ErrDuplicate
		}
	}
	cp := *tx
	r.store.txs[tx.ID] = &cp
	return nil
}

func (r *fakeTxRepo) CreateLineItem(item *entity.LineItem) error {
	cp := *item
	r.store.items = append(r.store.items, &cp)
	return nil
}

func (r *fakeTxRepo) GetByID(id string) (*entity.Transaction, error) {
	tx, ok := r.store.txs[id]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (r *fakeTxRepo) GetCompletedByKindAndReference(kind, reference string) (*entity.Transaction, error) {
	if r.skipLookups > 0 {
		r.skipLookups--
		return nil, nil
	}
	tx := r.store.completedByKindAndRef(kind, reference)
	if tx == nil {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (r *fakeTxRepo) ListLineItems(transactionID string) ([]*entity.LineItem, error) {
	var out []*entity.LineItem
	for _, it := range r.store.items {
		if it.TransactionID == transactionID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) ListByKind(kind string, limit, offset int) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, tx := range r.store.txs {
		if tx.Kind == kind {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeMovementRepo struct{ store *fakeStore }

func (r *fakeMovementRepo) Create(m *entity.MovementRecord) error {
	cp := *m
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	var out []*entity.MovementRecord
	for _, m := range r.store.movements {
		if m.MaterialID == materialID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) SumByMaterial(materialID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.store.movements {
		if m.MaterialID == materialID {
			sum = sum.Add(m.Delta)
		}
	}
	return sum, nil
}

// fakeTxRunner ejecuta la unidad de trabajo contra un clon del estado y lo publica
// solo en éxito.
type fakeTxRunner struct{ store *fakeStore }

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	txRepo repository.TransactionRepository,
	movRepo repository.MovementRecordRepository,
) error) error {
	work := r.store.clone()
	err := fn(&fakeMaterialRepo{store: work}, &fakeTxRepo{store: work}, &fakeMovementRepo{store: work})
	if err != nil {
		// Rollback: conservar solo el rastro de bloqueos para las aserciones.
		r.store.lockOrder = work.lockOrder
		return err
	}
	*r.store = *work
	return nil
}

type fakeBOMRepo struct {
	entries []*entity.BOMEntry
}

func (r *fakeBOMRepo) ListForProduct(productType string, size *string) ([]*entity.BOMEntry, error) {
	var out []*entity.BOMEntry
	for _, e := range r.entries {
		if e.ProductType != productType {
			continue
		}
		if (e.Size == nil) != (size == nil) {
			continue
		}
		if size != nil && *e.Size != *size {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs map[string]*entity.Job
}

func (r *fakeJobRepo) GetByID(id string) (*entity.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	return j, nil
}

func (r *fakeJobRepo) GetForUpdate(id string) (*entity.Job, error) { return r.GetByID(id) }

func (r *fakeJobRepo) UpdateStage(id, stage string, at time.Time) error {
	j, ok := r.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.ProductionStage = stage
	return nil
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
