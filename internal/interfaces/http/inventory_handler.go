package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler inventarios físicos (conteos) y sus líneas.
type InventoryHandler struct {
	uc *stock.InventoryUseCase
	errorResponder
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *stock.InventoryUseCase, errs errorResponder) *InventoryHandler {
	return &InventoryHandler{uc: uc, errorResponder: errs}
}

// Create godoc
// @Summary      Crear inventario (foto del ledger de la bodega salvo empty=true)
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInventoryRequest  true  "Inventario"
// @Success      201   {object}  dto.InventoryResponse
// @Router       /api/stock/inventories [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInventoryRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	inv, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewInventoryResponse(inv))
}

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var in dto.InventoryListRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	in.DefaultPage()
	list, total, err := h.uc.List(c.UserContext(), GetCompanyID(c), repository.InventoryFilter{
		Status:      in.Status,
		WarehouseID: in.WarehouseID,
		Search:      in.Search,
		Page:        repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewInventoryListResponse(list, total, in.PageRequest))
}

func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id")))
}

func (h *InventoryHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddInventoryLineRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	return h.reply(c)(h.uc.AddLine(c.UserContext(), GetCompanyID(c), c.Params("id"), in))
}

// UpdateLine registra la cantidad contada de una línea.
func (h *InventoryHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdateInventoryLineRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	return h.reply(c)(h.uc.UpdateLine(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("line_id"), in))
}

func (h *InventoryHandler) Start(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Start(c.UserContext(), GetCompanyID(c), c.Params("id")))
}

// Validate godoc
// @Summary      Validar inventario (ajustes por diferencia, todo o nada)
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del inventario"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      422  {object}  dto.ErrorResponse  "line indica la línea que falló"
// @Router       /api/stock/inventories/{id}/validate [post]
func (h *InventoryHandler) Validate(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Validate(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id")))
}

func (h *InventoryHandler) Cancel(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id")))
}

func (h *InventoryHandler) reply(c *fiber.Ctx) func(*entity.Inventory, error) error {
	return func(inv *entity.Inventory, err error) error {
		if err != nil {
			return h.respond(c, err)
		}
		return c.JSON(dto.NewInventoryResponse(inv))
	}
}
