package entity

import "time"

// StageHistoryEntry es un intervalo de permanencia de un pedido en una etapa.
// ExitedAt = nil marca el intervalo abierto; a lo sumo existe uno por pedido.
type StageHistoryEntry struct {
	ID        string
	JobID     string
	Stage     string
	EnteredAt time.Time
	ExitedAt  *time.Time
}

// Open indica si el intervalo sigue abierto.
func (e *StageHistoryEntry) Open() bool {
	return e.ExitedAt == nil
}
