package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	appinventory "github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/domain"
)

// MaterialHandler consultas read-only de saldos, alertas y auditoría de materiales.
type MaterialHandler struct {
	queries *appinventory.QueryUseCase
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(queries *appinventory.QueryUseCase) *MaterialHandler {
	return &MaterialHandler{queries: queries}
}

// GetBalance godoc
// @Summary      Saldo actual de un material con su estado de alerta
// @Tags         materials
// @Produce      json
// @Param        id  path  string  true  "ID del material"
// @Success      200  {object}  dto.MaterialBalanceDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/balance [get]
func (h *MaterialHandler) GetBalance(c *fiber.Ctx) error {
	balance, err := h.queries.GetBalance(c.Params("id"))
	if err != nil {
		return materialError(c, err)
	}
	return c.JSON(balance)
}

// GetAlerts godoc
// @Summary      Materiales en estado crítico o bajo
// @Tags         materials
// @Produce      json
// @Success      200  {array}  dto.MaterialBalanceDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materials/alerts [get]
func (h *MaterialHandler) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.queries.GetAlerts()
	if err != nil {
		return materialError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(alerts), "alerts": alerts})
}

// ListMovements godoc
// @Summary      Rastro de auditoría de un material
// @Tags         materials
// @Produce      json
// @Param        id     path   string  true   "ID del material"
// @Param        from   query  string  false  "desde (RFC3339)"
// @Param        to     query  string  false  "hasta (RFC3339)"
// @Param        limit  query  int     false  "máx. filas (default 20)"
// @Param        offset query  int     false  "desplazamiento"
// @Success      200  {array}  dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/movements [get]
func (h *MaterialHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetro from inválido"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetro to inválido"})
	}

	list, err := h.queries.ListMovements(c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return materialError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

// VerifyBalance godoc
// @Summary      Verificar el invariante de saldo contra el libro de movimientos
// @Tags         materials
// @Produce      json
// @Param        id  path  string  true  "ID del material"
// @Success      200  {object}  dto.BalanceAuditDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/balance/verify [get]
func (h *MaterialHandler) VerifyBalance(c *fiber.Ctx) error {
	audit, err := h.queries.VerifyBalance(c.Params("id"))
	if err != nil {
		return materialError(c, err)
	}
	return c.JSON(audit)
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func materialError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
