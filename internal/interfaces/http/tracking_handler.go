package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/application/tracking"
	"github.com/jhoicas/Taller-api/internal/domain"
)

// TrackingHandler transiciones de etapa de producción y métricas de duración.
type TrackingHandler struct {
	transition *tracking.TransitionUseCase
	metrics    *tracking.MetricsUseCase
}

// NewTrackingHandler construye el handler.
func NewTrackingHandler(transition *tracking.TransitionUseCase, metrics *tracking.MetricsUseCase) *TrackingHandler {
	return &TrackingHandler{transition: transition, metrics: metrics}
}

// TransitionStage godoc
// @Summary      Mover un pedido a una nueva etapa de producción
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.StageTransitionRequest  true  "stage, at (opcional)"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/stage [post]
func (h *TrackingHandler) TransitionStage(c *fiber.Ctx) error {
	var in dto.StageTransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	at := time.Now()
	if in.At != nil {
		at = *in.At
	}

	err := h.transition.Transition(c.Context(), c.Params("id"), in.Stage, at)
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(fiber.Map{"job_id": c.Params("id"), "stage": in.Stage})
}

// GetStageHistory godoc
// @Summary      Historial de etapas de un pedido
// @Tags         tracking
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.JobStageHistoryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/stages [get]
func (h *TrackingHandler) GetStageHistory(c *fiber.Ctx) error {
	history, err := h.transition.History(c.Params("id"))
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(history)
}

// GetDurationMetrics godoc
// @Summary      Métricas de duración: tiempo en etapa, cumplimiento y sub-fases
// @Tags         tracking
// @Produce      json
// @Param        days  query  int  false  "ventana en días (default de configuración)"
// @Success      200  {object}  dto.DurationMetricsDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/metrics/durations [get]
func (h *TrackingHandler) GetDurationMetrics(c *fiber.Ctx) error {
	days := c.QueryInt("days")
	metrics, err := h.metrics.GetDurationMetrics(c.Context(), days)
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(metrics)
}

func trackingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrStageConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STAGE_CONFLICT", Message: "transición concurrente detectada, reintente con estado fresco"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
