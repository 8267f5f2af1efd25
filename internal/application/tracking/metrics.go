package tracking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// MilestonePair dos hitos de etapa entre los que se mide una sub-fase.
type MilestonePair struct {
	From string
	To   string
}

// DefaultMilestones sub-fases reportadas en el tablero: impresión→prensado y
// impresión→entrega.
var DefaultMilestones = []MilestonePair{
	{From: entity.StagePrinting, To: entity.StagePressing},
	{From: entity.StagePrinting, To: entity.StageDelivered},
}

// MetricsUseCase agrega el historial de etapas en métricas de duración: tiempo en
// etapa actual, duración de cumplimiento y sub-fases entre hitos. Solo lecturas;
// toda la aritmética es función pura de la ventana consultada.
type MetricsUseCase struct {
	stageRepo         repository.StageHistoryRepository
	milestones        []MilestonePair
	defaultWindowDays int
}

// NewMetricsUseCase construye el caso de uso. milestones vacío usa los hitos por
// defecto (las instalaciones los sobreescriben vía METRICS_MILESTONES).
func NewMetricsUseCase(stageRepo repository.StageHistoryRepository, milestones []MilestonePair, defaultWindowDays int) *MetricsUseCase {
	if defaultWindowDays <= 0 {
		defaultWindowDays = 30
	}
	if len(milestones) == 0 {
		milestones = DefaultMilestones
	}
	return &MetricsUseCase{
		stageRepo:         stageRepo,
		milestones:        milestones,
		defaultWindowDays: defaultWindowDays,
	}
}

// ParseMilestones interpreta la forma "from:to,from:to" de METRICS_MILESTONES.
// Cadena vacía devuelve nil (el constructor aplica los hitos por defecto).
func ParseMilestones(s string) ([]MilestonePair, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pairs []MilestonePair
	for _, raw := range strings.Split(s, ",") {
		from, to, ok := strings.Cut(strings.TrimSpace(raw), ":")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("par de hitos inválido %q (se espera from:to)", raw)
		}
		pairs = append(pairs, MilestonePair{From: from, To: to})
	}
	return pairs, nil
}

// GetDurationMetrics responde la consulta del tablero para una ventana de días.
// days <= 0 usa la ventana por defecto.
func (uc *MetricsUseCase) GetDurationMetrics(ctx context.Context, days int) (*dto.DurationMetricsDTO, error) {
	if days <= 0 {
		days = uc.defaultWindowDays
	}
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	open, err := uc.stageRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	delivered, err := uc.stageRepo.ListForJobsReachingStages(ctx, []string{entity.StageDelivered}, since)
	if err != nil {
		return nil, err
	}
	// Las sub-fases no exigen que el pedido esté entregado: basta con que tenga
	// ambos hitos del par. Se consultan los pedidos que tocaron cualquier hito
	// dentro de la ventana y milestoneDurations excluye a los que les falte uno.
	milestones, err := uc.stageRepo.ListForJobsReachingStages(ctx, uc.milestoneStages(), since)
	if err != nil {
		return nil, err
	}

	return &dto.DurationMetricsDTO{
		WindowDays:    days,
		GeneratedAt:   now,
		CurrentStages: stageAverages(open, now),
		Fulfillment:   fulfillment(delivered),
		Milestones:    milestoneDurations(milestones, uc.milestones),
	}, nil
}

// milestoneStages lista las etapas distintas que participan en algún par de hitos.
func (uc *MetricsUseCase) milestoneStages() []string {
	seen := make(map[string]struct{}, len(uc.milestones)*2)
	var stages []string
	for _, p := range uc.milestones {
		for _, s := range []string{p.From, p.To} {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			stages = append(stages, s)
		}
	}
	return stages
}

// stageAverages promedia now - entered_at de los intervalos abiertos, por etapa.
// Duraciones negativas (desfase de reloj) o entradas sin sello de tiempo se
// excluyen del promedio; el conteo de pedidos abiertos sí las incluye.
func stageAverages(open []*entity.StageHistoryEntry, now time.Time) []dto.StageAverageDTO {
	durations := make(map[string][]time.Duration)
	counts := make(map[string]int)
	for _, e := range open {
		counts[e.Stage]++
		if e.EnteredAt.IsZero() {
			continue
		}
		d := now.Sub(e.EnteredAt)
		if d < 0 {
			continue
		}
		durations[e.Stage] = append(durations[e.Stage], d)
	}

	stages := make([]string, 0, len(counts))
	for s := range counts {
		stages = append(stages, s)
	}
	sort.Strings(stages)

	out := make([]dto.StageAverageDTO, 0, len(stages))
	for _, s := range stages {
		out = append(out, dto.StageAverageDTO{
			Stage:    s,
			OpenJobs: counts[s],
			AvgHours: avgHours(durations[s]),
		})
	}
	return out
}

// fulfillment mide delivered.entered_at - primera_entrada.entered_at por pedido
// entregado dentro de la ventana.
func fulfillment(histories []*entity.StageHistoryEntry) dto.FulfillmentDTO {
	byJob := groupByJob(histories)

	var durs []time.Duration
	delivered := 0
	for _, entries := range byJob {
		first := earliestEntry(entries)
		deliveredAt := earliestEnteredAt(entries, entity.StageDelivered)
		if deliveredAt == nil {
			continue
		}
		delivered++
		if first == nil || first.EnteredAt.IsZero() || deliveredAt.IsZero() {
			continue
		}
		d := deliveredAt.Sub(first.EnteredAt)
		if d < 0 {
			continue
		}
		durs = append(durs, d)
	}
	return dto.FulfillmentDTO{DeliveredJobs: delivered, AvgHours: avgHours(durs)}
}

// milestoneDurations mide, por par de hitos, to.entered_at - from.entered_at en
// los pedidos que tienen ambos hitos; los que carecen de alguno quedan fuera de
// ese promedio en particular.
func milestoneDurations(histories []*entity.StageHistoryEntry, pairs []MilestonePair) []dto.MilestoneDurationDTO {
	byJob := groupByJob(histories)

	out := make([]dto.MilestoneDurationDTO, 0, len(pairs))
	for _, pair := range pairs {
		var durs []time.Duration
		for _, entries := range byJob {
			from := earliestEnteredAt(entries, pair.From)
			to := earliestEnteredAt(entries, pair.To)
			if from == nil || to == nil || from.IsZero() || to.IsZero() {
				continue
			}
			d := to.Sub(*from)
			if d < 0 {
				continue
			}
			durs = append(durs, d)
		}
		out = append(out, dto.MilestoneDurationDTO{
			FromStage: pair.From,
			ToStage:   pair.To,
			Jobs:      len(durs),
			AvgHours:  avgHours(durs),
		})
	}
	return out
}

func groupByJob(entries []*entity.StageHistoryEntry) map[string][]*entity.StageHistoryEntry {
	byJob := make(map[string][]*entity.StageHistoryEntry)
	for _, e := range entries {
		byJob[e.JobID] = append(byJob[e.JobID], e)
	}
	return byJob
}

// earliestEntry devuelve la entrada con menor entered_at (ignora sellos en cero).
func earliestEntry(entries []*entity.StageHistoryEntry) *entity.StageHistoryEntry {
	var first *entity.StageHistoryEntry
	for _, e := range entries {
		if e.EnteredAt.IsZero() {
			continue
		}
		if first == nil || e.EnteredAt.Before(first.EnteredAt) {
			first = e
		}
	}
	return first
}

// earliestEnteredAt devuelve el primer entered_at del pedido en la etapa dada.
func earliestEnteredAt(entries []*entity.StageHistoryEntry, stage string) *time.Time {
	var at *time.Time
	for _, e := range entries {
		if e.Stage != stage || e.EnteredAt.IsZero() {
			continue
		}
		if at == nil || e.EnteredAt.Before(*at) {
			t := e.EnteredAt
			at = &t
		}
	}
	return at
}

// avgHours promedia duraciones en horas con dos decimales; nil si no hay datos.
func avgHours(durs []time.Duration) *decimal.Decimal {
	if len(durs) == 0 {
		return nil
	}
	var total time.Duration
	for _, d := range durs {
		total += d
	}
	avg := total / time.Duration(len(durs))
	h := decimal.NewFromFloat(avg.Hours()).Round(2)
	return &h
}
