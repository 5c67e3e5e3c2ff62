package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProductUseCase casos de uso de catálogo para productos. Cost se maneja vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto activo. Cost inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if in.SKU == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("sku y name son requeridos")
	}
	existing, err := uc.repo.GetByCompanyAndSKU(ctx, companyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.ProductType == "" {
		in.ProductType = entity.ProductTypeStockable
	}
	if !entity.IsValidProductType(in.ProductType) {
		return nil, domain.Invalid("tipo de producto desconocido: %q", in.ProductType)
	}
	for name, v := range map[string]decimal.Decimal{
		"price": in.Price, "min_stock_level": in.MinStockLevel,
		"reorder_point": in.ReorderPoint, "reorder_quantity": in.ReorderQuantity,
	} {
		if v.IsNegative() {
			return nil, domain.Invalid("%s no puede ser negativo", name)
		}
	}
	if in.LeadTimeDays < 0 {
		return nil, domain.Invalid("lead_time_days no puede ser negativo")
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unit"
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		SKU:             in.SKU,
		Name:            in.Name,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		ProductType:     in.ProductType,
		IsActive:        true,
		Price:           in.Price,
		Cost:            decimal.Zero,
		UnitMeasure:     in.UnitMeasure,
		MinStockLevel:   in.MinStockLevel,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		LeadTimeDays:    in.LeadTimeDays,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %s no encontrado", id)
	}
	return toProductResponse(p), nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repo.List(ctx, companyID, repository.ProductFilter{
		CategoryID:        in.CategoryID,
		ABCClassification: in.ABCClassification,
		ProductType:       in.ProductType,
		Search:            in.Search,
		Page:              repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                      p.ID,
		CompanyID:               p.CompanyID,
		SKU:                     p.SKU,
		Name:                    p.Name,
		Description:             p.Description,
		CategoryID:              p.CategoryID,
		ProductType:             p.ProductType,
		IsActive:                p.IsActive,
		Price:                   p.Price,
		Cost:                    p.Cost,
		UnitMeasure:             p.UnitMeasure,
		MinStockLevel:           p.MinStockLevel,
		ReorderPoint:            p.ReorderPoint,
		ReorderQuantity:         p.ReorderQuantity,
		LeadTimeDays:            p.LeadTimeDays,
		AverageDailyConsumption: p.AverageDailyConsumption,
		ABCClassification:       p.ABCClassification,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
}
