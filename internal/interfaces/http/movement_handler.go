package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementHandler maneja las peticiones HTTP de movimientos de stock.
type MovementHandler struct {
	uc *stock.MovementUseCase
	errorResponder
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *stock.MovementUseCase, errs errorResponder) *MovementHandler {
	return &MovementHandler{uc: uc, errorResponder: errs}
}

// Create godoc
// @Summary      Crear movimiento en borrador
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	m, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(m))
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	in.DefaultPage()
	list, total, err := h.uc.List(c.UserContext(), GetCompanyID(c), repository.MovementFilter{
		Type:       in.Type,
		Status:     in.Status,
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Search:     in.Search,
		Page:       repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewMovementListResponse(list, total, in.PageRequest))
}

func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// Update edita un movimiento en borrador.
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	m, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// Validate godoc
// @Summary      Validar movimiento (aplica deltas al ledger)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id}/validate [post]
func (h *MovementHandler) Validate(c *fiber.Ctx) error {
	m, err := h.uc.Validate(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	m, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}
