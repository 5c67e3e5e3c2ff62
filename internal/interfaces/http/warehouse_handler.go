package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
)

// WarehouseHandler maneja bodegas y sus ubicaciones (protegido).
type WarehouseHandler struct {
	uc *usecase.WarehouseUseCase
	errorResponder
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase, errs errorResponder) *WarehouseHandler {
	return &WarehouseHandler{uc: uc, errorResponder: errs}
}

// Create godoc
// @Summary      Crear bodega (con ubicación interna por defecto)
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWarehouseRequest  true  "Datos de la bodega"
// @Success      201   {object}  dto.WarehouseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/warehouses [post]
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener bodega por ID
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(out)
}

func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	var in dto.PageRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(out)
}

func (h *WarehouseHandler) CreateLocation(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	out, err := h.uc.CreateLocation(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *WarehouseHandler) ListLocations(c *fiber.Ctx) error {
	out, err := h.uc.ListLocations(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(out)
}
