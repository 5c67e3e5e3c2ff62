package stock

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Ventanas de consumo reportadas; la de 30 días alimenta el punto de reorden.
var consumptionWindows = []int{7, 30, 90}

const reorderWindowDays = 30

// ReplenishmentUseCase asesor de reposición: lectura de sugerencias y recálculos batch
// de punto de reorden y clasificación ABC.
type ReplenishmentUseCase struct {
	ledger *Ledger
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(ledger *Ledger) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{ledger: ledger}
}

// Suggestions devuelve los productos stockable activos con disponible <= punto de reorden,
// con la cantidad sugerida y prioridad por déficit relativo (1 = más urgente).
// Con warehouse_id se considera solo el stock de las ubicaciones de esa bodega.
func (uc *ReplenishmentUseCase) Suggestions(ctx context.Context, companyID string, f dto.ReplenishmentFilterRequest) ([]dto.ReplenishmentSuggestionDTO, error) {
	repos := uc.ledger.repos
	products, _, err := repos.Products.List(ctx, companyID, repository.ProductFilter{
		CategoryID:        f.CategoryID,
		ABCClassification: f.ABCClassification,
		ProductType:       entity.ProductTypeStockable,
		ActiveOnly:        true,
	})
	if err != nil {
		return nil, err
	}

	totals := map[string]entity.StockTotals{}
	if f.WarehouseID != "" {
		wh, err := repos.Warehouses.GetByID(ctx, companyID, f.WarehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.NotFound("bodega %s no encontrada", f.WarehouseID)
		}
		locs, err := repos.Locations.ListByWarehouse(ctx, companyID, f.WarehouseID, false)
		if err != nil {
			return nil, err
		}
		if len(locs) > 0 {
			ids := make([]string, 0, len(locs))
			for _, l := range locs {
				ids = append(ids, l.ID)
			}
			if totals, err = repos.Levels.TotalsByProduct(ctx, companyID, ids); err != nil {
				return nil, err
			}
		}
	} else if totals, err = repos.Levels.TotalsByProduct(ctx, companyID, nil); err != nil {
		return nil, err
	}

	type ranked struct {
		dto.ReplenishmentSuggestionDTO
		deficit decimal.Decimal
	}
	var list []ranked
	for _, p := range products {
		if !p.ReorderPoint.IsPositive() {
			continue
		}
		t := totals[p.ID]
		available := t.Available()
		if available.GreaterThan(p.ReorderPoint) {
			continue
		}
		suggested := inventory.SuggestedQuantity(p.ReorderPoint, p.ReorderQuantity, available)
		list = append(list, ranked{
			ReplenishmentSuggestionDTO: dto.ReplenishmentSuggestionDTO{
				ProductID:         p.ID,
				SKU:               p.SKU,
				ProductName:       p.Name,
				CategoryID:        p.CategoryID,
				ABCClassification: p.ABCClassification,
				OnHand:            t.Quantity,
				Reserved:          t.Reserved,
				Available:         available,
				ReorderPoint:      p.ReorderPoint,
				ReorderQuantity:   p.ReorderQuantity,
				SuggestedQuantity: suggested,
				UnitCost:          p.Cost,
				EstimatedCost:     suggested.Mul(p.Cost),
				LeadTimeDays:      p.LeadTimeDays,
			},
			deficit: inventory.Deficit(p.ReorderPoint, available),
		})
	}

	// Mayor déficit relativo primero; empate por SKU para un orden estable.
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].deficit.Equal(list[j].deficit) {
			return list[i].deficit.GreaterThan(list[j].deficit)
		}
		return list[i].SKU < list[j].SKU
	})

	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for i := range list {
		s := list[i].ReplenishmentSuggestionDTO
		s.Priority = i + 1
		out = append(out, s)
	}
	return out, nil
}

// ConsumptionStats salidas validadas de un producto en 7/30/90 días.
func (uc *ReplenishmentUseCase) ConsumptionStats(ctx context.Context, companyID, productID string) (*dto.ConsumptionStatsDTO, error) {
	p, err := uc.ledger.repos.Products.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %s no encontrado", productID)
	}
	now := uc.ledger.Now()
	out := &dto.ConsumptionStatsDTO{
		ProductID:               p.ID,
		AverageDailyConsumption: p.AverageDailyConsumption,
		ReorderPoint:            p.ReorderPoint,
		LeadTimeDays:            p.LeadTimeDays,
	}
	for _, days := range consumptionWindows {
		total, err := uc.ledger.repos.Movements.SumValidatedOut(ctx, companyID, productID, now.AddDate(0, 0, -days))
		if err != nil {
			return nil, err
		}
		out.Windows = append(out.Windows, dto.ConsumptionWindowDTO{
			Days:         days,
			Total:        total,
			DailyAverage: inventory.AverageDailyConsumption(total, days),
		})
	}
	return out, nil
}

// CalculateReorderPoints guarda el consumo diario promedio (30 días) de cada producto y,
// si tiene lead time, punto de reorden = consumo × lead time + stock mínimo.
// Cada producto se escribe por separado; cancelar ctx detiene el proceso entre productos.
func (uc *ReplenishmentUseCase) CalculateReorderPoints(ctx context.Context, companyID string) (*dto.RecomputeResultDTO, error) {
	products, consumption, err := uc.batchInputs(ctx, companyID, reorderWindowDays)
	if err != nil {
		return nil, err
	}
	res := &dto.RecomputeResultDTO{}
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		avg := inventory.AverageDailyConsumption(consumption[p.ID], reorderWindowDays)
		var rp *decimal.Decimal
		if v, ok := inventory.ReorderPoint(avg, p.LeadTimeDays, p.MinStockLevel); ok {
			rp = &v
		}
		res.Processed++
		if avg.Equal(p.AverageDailyConsumption) && (rp == nil || rp.Equal(p.ReorderPoint)) {
			continue
		}
		if err := uc.ledger.repos.Products.UpdatePlanning(ctx, companyID, p.ID, avg, rp); err != nil {
			return res, err
		}
		res.Updated++
	}
	uc.ledger.log.Info().Str("company_id", companyID).Int("processed", res.Processed).Int("updated", res.Updated).
		Msg("puntos de reorden recalculados")
	return res, nil
}

// CalculateABCClassification clasifica por valor de consumo (salidas validadas en la ventana × costo)
// con los cortes configurados. Cada producto se actualiza por separado.
func (uc *ReplenishmentUseCase) CalculateABCClassification(ctx context.Context, companyID string) (*dto.RecomputeResultDTO, error) {
	policy := uc.ledger.policy
	products, consumption, err := uc.batchInputs(ctx, companyID, policy.ABCWindowDays)
	if err != nil {
		return nil, err
	}
	values := make([]inventory.ProductValue, 0, len(products))
	for _, p := range products {
		values = append(values, inventory.ProductValue{ProductID: p.ID, Value: consumption[p.ID].Mul(p.Cost)})
	}
	classes := inventory.ClassifyABC(values, policy.ABCCutoffA, policy.ABCCutoffB)

	res := &dto.RecomputeResultDTO{Classes: map[string]int{entity.ABCClassA: 0, entity.ABCClassB: 0, entity.ABCClassC: 0}}
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		class := classes[p.ID]
		res.Processed++
		res.Classes[class]++
		if class == p.ABCClassification {
			continue
		}
		if err := uc.ledger.repos.Products.UpdateClassification(ctx, companyID, p.ID, class); err != nil {
			return res, err
		}
		res.Updated++
	}
	uc.ledger.log.Info().Str("company_id", companyID).Int("processed", res.Processed).Int("updated", res.Updated).
		Int("a", res.Classes[entity.ABCClassA]).Int("b", res.Classes[entity.ABCClassB]).Int("c", res.Classes[entity.ABCClassC]).
		Msg("clasificación ABC recalculada")
	if err := uc.ledger.events.Publish(ctx, Event{
		Type: EventClassificationDone, CompanyID: companyID, AggregateID: companyID, OccurredAt: uc.ledger.Now(),
		Data: map[string]any{"processed": res.Processed, "updated": res.Updated},
	}); err != nil {
		uc.ledger.log.Warn().Err(err).Msg("no se pudo publicar el evento de clasificación ABC")
	}
	return res, nil
}

// RecomputeAll ejecuta puntos de reorden y ABC para las empresas indicadas (o todas).
func (uc *ReplenishmentUseCase) RecomputeAll(ctx context.Context, companies []string) error {
	if len(companies) == 0 {
		ids, err := uc.Companies(ctx)
		if err != nil {
			return err
		}
		companies = ids
	}
	for _, companyID := range companies {
		if _, err := uc.CalculateReorderPoints(ctx, companyID); err != nil {
			return err
		}
		if _, err := uc.CalculateABCClassification(ctx, companyID); err != nil {
			return err
		}
	}
	return nil
}

// Companies empresas con productos activos.
func (uc *ReplenishmentUseCase) Companies(ctx context.Context) ([]string, error) {
	return uc.ledger.repos.Products.CompanyIDs(ctx)
}

// batchInputs productos stockable activos (orden estable) y consumo por producto en la ventana.
func (uc *ReplenishmentUseCase) batchInputs(ctx context.Context, companyID string, days int) ([]*entity.Product, map[string]decimal.Decimal, error) {
	if companyID == "" {
		return nil, nil, domain.Invalid("company_id es requerido")
	}
	products, _, err := uc.ledger.repos.Products.List(ctx, companyID, repository.ProductFilter{
		ProductType: entity.ProductTypeStockable,
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	consumption, err := uc.ledger.repos.Movements.ConsumptionByProduct(ctx, companyID, uc.ledger.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, nil, err
	}
	return products, consumption, nil
}
