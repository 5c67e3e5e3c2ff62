package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// CycleHandler ciclos de conteo.
type CycleHandler struct {
	uc *stock.CycleUseCase
	errorResponder
}

func NewCycleHandler(uc *stock.CycleUseCase, errs errorResponder) *CycleHandler {
	return &CycleHandler{uc: uc, errorResponder: errs}
}

func (h *CycleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCycleRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	cy, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCycleResponse(cy))
}

// Generate planifica ciclos por clase ABC (A mensual, B trimestral, C anual).
func (h *CycleHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateCyclesRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	list, err := h.uc.Generate(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCycleList(list))
}

func (h *CycleHandler) List(c *fiber.Ctx) error {
	var in dto.CycleListRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	in.DefaultPage()
	list, total, err := h.uc.List(c.UserContext(), GetCompanyID(c), repository.CycleFilter{
		Status:         in.Status,
		Classification: in.Classification,
		WarehouseID:    in.WarehouseID,
		Page:           repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewCycleListResponse(list, total, in.PageRequest))
}

func (h *CycleHandler) Start(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Start(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id")))
}

func (h *CycleHandler) Complete(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Complete(c.UserContext(), GetCompanyID(c), c.Params("id")))
}

func (h *CycleHandler) Cancel(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id")))
}

func (h *CycleHandler) reply(c *fiber.Ctx) func(*entity.InventoryCycle, error) error {
	return func(cy *entity.InventoryCycle, err error) error {
		if err != nil {
			return h.respond(c, err)
		}
		return c.JSON(dto.NewCycleResponse(cy))
	}
}
