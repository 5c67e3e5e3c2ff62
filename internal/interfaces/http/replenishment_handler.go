package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
)

// ReplenishmentHandler asesor de reposición y recálculos batch.
type ReplenishmentHandler struct {
	uc *stock.ReplenishmentUseCase
	errorResponder
}

func NewReplenishmentHandler(uc *stock.ReplenishmentUseCase, errs errorResponder) *ReplenishmentHandler {
	return &ReplenishmentHandler{uc: uc, errorResponder: errs}
}

// Suggestions godoc
// @Summary      Sugerencias de reposición (disponible <= punto de reorden)
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id        query  string  false  "Bodega"
// @Param        category_id         query  string  false  "Categoría"
// @Param        abc_classification  query  string  false  "A, B o C"
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/stock/replenishment/suggestions [get]
func (h *ReplenishmentHandler) Suggestions(c *fiber.Ctx) error {
	var in dto.ReplenishmentFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	out, err := h.uc.Suggestions(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	if out == nil {
		out = []dto.ReplenishmentSuggestionDTO{}
	}
	return c.JSON(out)
}

func (h *ReplenishmentHandler) Consumption(c *fiber.Ctx) error {
	out, err := h.uc.ConsumptionStats(c.UserContext(), GetCompanyID(c), c.Params("product_id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(out)
}

func (h *ReplenishmentHandler) ReorderPoints(c *fiber.Ctx) error {
	out, err := h.uc.CalculateReorderPoints(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(out)
}

func (h *ReplenishmentHandler) ABCClassification(c *fiber.Ctx) error {
	out, err := h.uc.CalculateABCClassification(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(out)
}
