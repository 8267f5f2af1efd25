// Package inventory contiene servicios de dominio puros sobre materiales.
package inventory

import "github.com/jhoicas/Taller-api/internal/domain/entity"

// AlertStatus clasifica el saldo de un material frente a sus umbrales.
type AlertStatus string

// Estados de alerta. Se recalculan en cada lectura; nunca se persisten para no
// quedar desfasados respecto al saldo autoritativo.
const (
	AlertCritical AlertStatus = "critical" // saldo <= nivel mínimo
	AlertLow      AlertStatus = "low"      // saldo <= umbral de reposición
	AlertOk       AlertStatus = "ok"
)

// Classify evalúa el saldo del material contra sus umbrales.
func Classify(m *entity.Material) AlertStatus {
	if m.QtyOnHand.LessThanOrEqual(m.MinimumLevel) {
		return AlertCritical
	}
	if m.QtyOnHand.LessThanOrEqual(m.RestockThreshold) {
		return AlertLow
	}
	return AlertOk
}
