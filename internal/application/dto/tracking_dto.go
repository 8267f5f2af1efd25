package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StageTransitionRequest body para POST /api/jobs/:id/stage.
// At opcional: si falta se usa la hora del servidor.
type StageTransitionRequest struct {
	Stage string     `json:"stage"`
	At    *time.Time `json:"at,omitempty"`
}

// StageHistoryEntryDTO intervalo de permanencia en una etapa.
type StageHistoryEntryDTO struct {
	Stage     string     `json:"stage"`
	EnteredAt time.Time  `json:"entered_at"`
	ExitedAt  *time.Time `json:"exited_at,omitempty"`
}

// JobStageHistoryDTO historial de etapas de un pedido.
type JobStageHistoryDTO struct {
	JobID        string                 `json:"job_id"`
	CurrentStage string                 `json:"current_stage"`
	History      []StageHistoryEntryDTO `json:"history"`
}

// StageAverageDTO promedio de tiempo en etapa actual, por etapa.
// AvgHours nil cuando ninguna duración del grupo es computable (sellos de tiempo
// faltantes o negativos por desfase de reloj se excluyen, nunca cuentan como cero).
type StageAverageDTO struct {
	Stage    string           `json:"stage"`
	OpenJobs int              `json:"open_jobs"`
	AvgHours *decimal.Decimal `json:"avg_hours,omitempty"`
}

// FulfillmentDTO duración de cumplimiento (primera etapa → delivered) en la ventana.
// AvgHours nil cuando ningún pedido de la ventana tiene duración computable.
type FulfillmentDTO struct {
	DeliveredJobs int              `json:"delivered_jobs"`
	AvgHours      *decimal.Decimal `json:"avg_hours,omitempty"`
}

// MilestoneDurationDTO duración promedio entre dos hitos de etapa.
// Los pedidos sin alguno de los dos hitos quedan fuera de ese promedio.
type MilestoneDurationDTO struct {
	FromStage string           `json:"from_stage"`
	ToStage   string           `json:"to_stage"`
	Jobs      int              `json:"jobs"`
	AvgHours  *decimal.Decimal `json:"avg_hours,omitempty"`
}

// DurationMetricsDTO respuesta de GET /api/metrics/durations.
type DurationMetricsDTO struct {
	WindowDays    int                    `json:"window_days"`
	GeneratedAt   time.Time              `json:"generated_at"`
	CurrentStages []StageAverageDTO      `json:"current_stages"`
	Fulfillment   FulfillmentDTO         `json:"fulfillment"`
	Milestones    []MilestoneDurationDTO `json:"milestones"`
}
