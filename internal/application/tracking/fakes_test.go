package tracking_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// trackStore estado en memoria de pedidos e historial de etapas. El TxRunner falso
// clona el estado y solo lo publica si la unidad de trabajo termina sin error.
type trackStore struct {
	jobs    map[string]*entity.Job
	entries []*entity.StageHistoryEntry

	// closeErr fuerza el fallo de Close para simular la carrera perdida.
	closeErr error
}

func newTrackStore(jobs ...*entity.Job) *trackStore {
	s := &trackStore{jobs: make(map[string]*entity.Job)}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (s *trackStore) clone() *trackStore {
	c := &trackStore{
		jobs:     make(map[string]*entity.Job, len(s.jobs)),
		closeErr: s.closeErr,
	}
	for id, j := range s.jobs {
		cp := *j
		c.jobs[id] = &cp
	}
	for _, e := range s.entries {
		cp := *e
		c.entries = append(c.entries, &cp)
	}
	return c
}

func (s *trackStore) openFor(jobID string) *entity.StageHistoryEntry {
	for _, e := range s.entries {
		if e.JobID == jobID && e.Open() {
			return e
		}
	}
	return nil
}

type fakeStageRepo struct{ store *trackStore }

func (r *fakeStageRepo) Create(e *entity.StageHistoryEntry) error {
	if r.store.openFor(e.JobID) != nil {
		return domain.ErrStageConflict
	}
	cp := *e
	r.store.entries = append(r.store.entries, &cp)
	return nil
}

func (r *fakeStageRepo) GetOpenForUpdate(jobID string) (*entity.StageHistoryEntry, error) {
	e := r.store.openFor(jobID)
	if e == nil {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeStageRepo) Close(entryID string, at time.Time) error {
	if r.store.closeErr != nil {
		return r.store.closeErr
	}
	for _, e := range r.store.entries {
		if e.ID == entryID && e.Open() {
			t := at
			e.ExitedAt = &t
			return nil
		}
	}
	return domain.ErrStageConflict
}

func (r *fakeStageRepo) ListByJob(jobID string) ([]*entity.StageHistoryEntry, error) {
	var out []*entity.StageHistoryEntry
	for _, e := range r.store.entries {
		if e.JobID == jobID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStageRepo) ListOpen(ctx context.Context) ([]*entity.StageHistoryEntry, error) {
	var out []*entity.StageHistoryEntry
	for _, e := range r.store.entries {
		if e.Open() {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStageRepo) ListForJobsReachingStages(ctx context.Context, stages []string, since time.Time) ([]*entity.StageHistoryEntry, error) {
	wanted := make(map[string]bool, len(stages))
	for _, s := range stages {
		wanted[s] = true
	}
	reached := make(map[string]bool)
	for _, e := range r.store.entries {
		if wanted[e.Stage] && !e.EnteredAt.Before(since) {
			reached[e.JobID] = true
		}
	}
	var out []*entity.StageHistoryEntry
	for _, e := range r.store.entries {
		if reached[e.JobID] {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeJobRepo struct{ store *trackStore }

func (r *fakeJobRepo) GetByID(id string) (*entity.Job, error) {
	j, ok := r.store.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) GetForUpdate(id string) (*entity.Job, error) { return r.GetByID(id) }

func (r *fakeJobRepo) UpdateStage(id, stage string, at time.Time) error {
	j, ok := r.store.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.ProductionStage = stage
	return nil
}

type fakeStagesTxRunner struct{ store *trackStore }

func (r *fakeStagesTxRunner) RunStages(ctx context.Context, fn func(
	stageRepo repository.StageHistoryRepository,
	jobRepo repository.JobRepository,
) error) error {
	work := r.store.clone()
	err := fn(&fakeStageRepo{store: work}, &fakeJobRepo{store: work})
	if err != nil {
		return err
	}
	*r.store = *work
	return nil
}

func entry(id, jobID, stage string, enteredAt time.Time, exitedAt *time.Time) *entity.StageHistoryEntry {
	return &entity.StageHistoryEntry{ID: id, JobID: jobID, Stage: stage, EnteredAt: enteredAt, ExitedAt: exitedAt}
}

func timePtr(t time.Time) *time.Time { return &t }

func hoursEqual(d *decimal.Decimal, want string) bool {
	return d != nil && d.Equal(decimal.RequireFromString(want))
}
