package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LevelHandler consultas de solo lectura sobre el ledger.
type LevelHandler struct {
	ledger *stock.Ledger
	errorResponder
}

func NewLevelHandler(ledger *stock.Ledger, errs errorResponder) *LevelHandler {
	return &LevelHandler{ledger: ledger, errorResponder: errs}
}

// Available godoc
// @Summary      Disponible de una clave (producto, ubicación, lote)
// @Tags         levels
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true   "Producto"
// @Param        location_id  query  string  true   "Ubicación"
// @Param        lot_id       query  string  false  "Lote"
// @Success      200  {object}  dto.StockLevelResponse
// @Router       /api/stock/levels/available [get]
func (h *LevelHandler) Available(c *fiber.Ctx) error {
	var in dto.AvailableRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	lvl, err := h.ledger.GetAvailable(c.UserContext(), GetCompanyID(c),
		entity.StockKey{ProductID: in.ProductID, LocationID: in.LocationID, LotID: in.LotID})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewStockLevelResponse(lvl))
}

// List filas del ledger por ubicación o por producto.
func (h *LevelHandler) List(c *fiber.Ctx) error {
	var in dto.LevelListRequest
	if err := bindQuery(c, &in); err != nil {
		return h.respond(c, err)
	}
	var (
		list []*entity.StockLevel
		err  error
	)
	if in.LocationID != "" {
		list, err = h.ledger.ListByLocation(c.UserContext(), GetCompanyID(c), in.LocationID)
	} else {
		list, err = h.ledger.ListByProduct(c.UserContext(), GetCompanyID(c), in.ProductID)
	}
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.NewStockLevelList(list))
}
