package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// LedgerHandler maneja las peticiones HTTP del motor de transacciones: deducciones
// por pedido, compras/ajustes y lecturas de transacciones.
type LedgerHandler struct {
	deduction *ledger.DeductionUseCase
	apply     *ledger.ApplyUseCase
	queries   *ledger.TransactionQueryUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(
	deduction *ledger.DeductionUseCase,
	apply *ledger.ApplyUseCase,
	queries *ledger.TransactionQueryUseCase,
) *LedgerHandler {
	return &LedgerHandler{deduction: deduction, apply: apply, queries: queries}
}

// DeductForJob godoc
// @Summary      Resolver receta y deducir materiales de un pedido
// @Tags         ledger
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.DeductionReportDTO  "deducción ya aplicada (idempotente)"
// @Success      201  {object}  dto.DeductionReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/deduction [post]
func (h *LedgerHandler) DeductForJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	actor := c.Get("X-Actor")

	report, err := h.deduction.ResolveAndDeduct(c.Context(), jobID, actor)
	if err != nil {
		return ledgerError(c, err)
	}
	if report.AlreadyApplied {
		return c.JSON(report)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// PreviewDeduction godoc
// @Summary      Vista previa de deducciones esperadas (dry-run, sin aplicar)
// @Tags         ledger
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.DeductionReportDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/deduction/preview [get]
func (h *LedgerHandler) PreviewDeduction(c *fiber.Ctx) error {
	report, err := h.deduction.Preview(c.Context(), c.Params("id"))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(report)
}

// ApplyTransaction godoc
// @Summary      Aplicar una transacción de compra o ajuste
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyTransactionRequest  true  "kind, reference, notes, lines"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *LedgerHandler) ApplyTransaction(c *fiber.Ctx) error {
	var in dto.ApplyTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]ledger.Line, 0, len(in.Lines))
	for _, ln := range in.Lines {
		lines = append(lines, ledger.Line{MaterialID: ln.MaterialID, Delta: ln.Delta})
	}
	res, err := h.apply.Apply(c.Context(), ledger.ApplyInput{
		Kind:      in.Kind,
		Reference: in.Reference,
		Notes:     in.Notes,
		Actor:     c.Get("X-Actor"),
		Lines:     lines,
	})
	if err != nil {
		return ledgerError(c, err)
	}
	status := fiber.StatusCreated
	if res.Duplicate {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{"transaction_id": res.TransactionID})
}

// GetTransaction godoc
// @Summary      Obtener una transacción con sus líneas
// @Tags         ledger
// @Produce      json
// @Param        id  path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *LedgerHandler) GetTransaction(c *fiber.Ctx) error {
	tx, err := h.queries.GetTransaction(c.Params("id"))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(tx)
}

// ListTransactions godoc
// @Summary      Listar transacciones recientes por tipo
// @Tags         ledger
// @Produce      json
// @Param        kind   query  string  true   "purchase_order | production_deduction | adjustment"
// @Param        limit  query  int     false  "máx. filas (default 20)"
// @Param        offset query  int     false  "desplazamiento"
// @Success      200  {array}  dto.TransactionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *LedgerHandler) ListTransactions(c *fiber.Ctx) error {
	kind := c.Query("kind")
	if !entity.ValidTransactionKind(kind) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "kind desconocido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.queries.ListByKind(kind, page.Limit, page.Offset)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "transactions": list})
}

// ledgerError mapea errores de dominio del ledger a códigos HTTP.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
