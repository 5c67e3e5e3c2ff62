package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TransferHandler traslados entre bodegas.
type TransferHandler struct {
	uc *stock.TransferUseCase
	errorResponder
}

func NewTransferHandler(uc *stock.TransferUseCase, errs errorResponder) *TransferHandler {
	return &TransferHandler{uc: uc, errorResponder: errs}
}

// Create godoc
// @Summary      Crear traslado en borrador
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Traslado"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	t, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferResponse(t))
}

func (h *TransferHandler) List(c *fiber.Ctx) error {
	var in dto.TransferListRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	in.DefaultPage()
	list, total, err := h.uc.List(c.UserContext(), GetCompanyID(c), repository.TransferFilter{
		Status:      in.Status,
		WarehouseID: in.WarehouseID,
		Search:      in.Search,
		Page:        repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewTransferListResponse(list, total, in.PageRequest))
}

func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id")))
}

func (h *TransferHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTransferRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	return h.reply(c)(h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in))
}

// Validate descuenta el stock de origen de todas las líneas en una sola transacción.
func (h *TransferHandler) Validate(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Validate(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id")))
}

func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	var in dto.ShipTransferRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return h.respond(c, err)
		}
	}
	return h.reply(c)(h.uc.Ship(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in))
}

// Receive godoc
// @Summary      Recibir líneas de un traslado en tránsito
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del traslado"
// @Param        body  body  dto.ReceiveTransferRequest  true  "Cantidades recibidas"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	return h.reply(c)(h.uc.Receive(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in))
}

func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.reply(c)(h.uc.Cancel(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id")))
}

func (h *TransferHandler) reply(c *fiber.Ctx) func(*entity.StockTransfer, error) error {
	return func(t *entity.StockTransfer, err error) error {
		if err != nil {
			return h.respond(c, err)
		}
		return c.JSON(dto.NewTransferResponse(t))
	}
}
