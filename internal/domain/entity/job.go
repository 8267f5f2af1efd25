package entity

import "github.com/shopspring/decimal"

// Etiquetas de etapa de producción usadas por las métricas de duración.
// Las etapas intermedias son libres; estas son los hitos fijos del tablero.
const (
	StagePrinting  = "printing"
	StagePressing  = "pressing"
	StageDelivered = "delivered"
)

// JobProduct es una línea del pedido: tipo de producto, talla opcional y cantidad.
// La cantidad debe ser positiva; las líneas malformadas se rechazan en el borde.
type JobProduct struct {
	ProductType string
	Size        *string
	Quantity    decimal.Decimal
}

// Job representa un pedido de producción. El pedido pertenece a un colaborador
// externo (pipeline de leads); este núcleo solo lee la lista de productos y
// lee/escribe ProductionStage a través de las transiciones de etapa.
type Job struct {
	ID              string
	Products        []JobProduct
	ProductionStage string
}
