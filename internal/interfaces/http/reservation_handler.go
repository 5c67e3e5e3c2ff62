package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReservationHandler reservas sobre el disponible.
type ReservationHandler struct {
	uc *stock.ReservationUseCase
	errorResponder
}

func NewReservationHandler(uc *stock.ReservationUseCase, errs errorResponder) *ReservationHandler {
	return &ReservationHandler{uc: uc, errorResponder: errs}
}

// Create godoc
// @Summary      Reservar stock
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "Reserva"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	r, err := h.uc.Reserve(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReservationResponse(r))
}

func (h *ReservationHandler) List(c *fiber.Ctx) error {
	var in dto.ReservationListRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	in.DefaultPage()
	list, total, err := h.uc.List(c.UserContext(), GetCompanyID(c), repository.ReservationFilter{
		Status:        in.Status,
		ProductID:     in.ProductID,
		LocationID:    in.LocationID,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Page:          repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewReservationListResponse(list, total, in.PageRequest))
}

func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	r, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewReservationResponse(r))
}

func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	r, err := h.uc.Release(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewReservationResponse(r))
}

// ReleaseByReference libera todas las reservas activas de un documento externo.
func (h *ReservationHandler) ReleaseByReference(c *fiber.Ctx) error {
	var in dto.ReleaseByReferenceRequest
	if err := bindBody(c, &in); err != nil {
		return h.respond(c, err)
	}
	n, err := h.uc.ReleaseByReference(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.CountResponse{Count: n})
}
