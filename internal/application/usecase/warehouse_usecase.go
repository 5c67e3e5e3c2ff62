package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// WarehouseUseCase casos de uso para bodegas y sus ubicaciones.
type WarehouseUseCase struct {
	repo      repository.WarehouseRepository
	locations repository.LocationRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository, locations repository.LocationRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, locations: locations}
}

// Create crea una bodega activa junto con su ubicación interna por defecto.
func (uc *WarehouseUseCase) Create(ctx context.Context, companyID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("code y name son requeridos")
	}
	now := time.Now().UTC()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Code:      code,
		Name:      in.Name,
		Address:   in.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	stockLoc := &entity.Location{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		WarehouseID:  warehouse.ID,
		Code:         code + "/STOCK",
		Name:         in.Name + " - Stock",
		LocationType: entity.LocationTypeInternal,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := uc.locations.Create(ctx, stockLoc); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	w, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NotFound("bodega %s no encontrada", id)
	}
	return toWarehouseResponse(w), nil
}

// List lista bodegas por empresa con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, companyID, repository.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// CreateLocation agrega una ubicación a una bodega de la empresa.
func (uc *WarehouseUseCase) CreateLocation(ctx context.Context, companyID, warehouseID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	w, err := uc.repo.GetByID(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NotFound("bodega %s no encontrada", warehouseID)
	}
	if in.LocationType == "" {
		in.LocationType = entity.LocationTypeInternal
	}
	if !entity.IsValidLocationType(in.LocationType) {
		return nil, domain.Invalid("tipo de ubicación desconocido: %q", in.LocationType)
	}
	loc := &entity.Location{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		WarehouseID:  w.ID,
		Code:         strings.TrimSpace(in.Code),
		Name:         in.Name,
		LocationType: in.LocationType,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if loc.Code == "" {
		return nil, domain.Invalid("code es requerido")
	}
	if err := uc.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// ListLocations ubicaciones de una bodega.
func (uc *WarehouseUseCase) ListLocations(ctx context.Context, companyID, warehouseID string) ([]dto.LocationResponse, error) {
	list, err := uc.locations.ListByWarehouse(ctx, companyID, warehouseID, false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *toLocationResponse(l))
	}
	return out, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:           l.ID,
		WarehouseID:  l.WarehouseID,
		Code:         l.Code,
		Name:         l.Name,
		LocationType: l.LocationType,
		IsActive:     l.IsActive,
		CreatedAt:    l.CreatedAt,
	}
}
