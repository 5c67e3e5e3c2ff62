package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Prefijos de referencia por tipo de documento.
const (
	PrefixMovement  = "MOV"
	PrefixTransfer  = "TRF"
	PrefixInventory = "INV"
)

// Policy parámetros de negocio configurables.
type Policy struct {
	// AllowNegativeAdjustments permite que un ajuste manual deje el físico en negativo.
	// Nunca relaja reservado <= físico.
	AllowNegativeAdjustments bool
	ABCCutoffA               decimal.Decimal
	ABCCutoffB               decimal.Decimal
	ABCWindowDays            int
}

// DefaultPolicy cortes 80/95 sobre un año de consumo.
func DefaultPolicy() Policy {
	return Policy{
		ABCCutoffA:    decimal.RequireFromString("0.80"),
		ABCCutoffB:    decimal.RequireFromString("0.95"),
		ABCWindowDays: 365,
	}
}

// Deps dependencias del ledger. Repos es el acceso sin transacción para lecturas.
type Deps struct {
	Tx     TxRunner
	Repos  repository.Repos
	Events EventPublisher
	Cache  LevelCache
	Clock  Clock
	Log    *logger.Logger
	Policy Policy
}

// Ledger núcleo compartido por los motores: transacciones, deltas sobre el ledger,
// referencias y publicación de eventos tras el commit.
type Ledger struct {
	tx     TxRunner
	repos  repository.Repos
	events EventPublisher
	cache  LevelCache
	clock  Clock
	log    *logger.Logger
	policy Policy
}

// NewLedger construye el ledger con valores por defecto para las dependencias opcionales.
func NewLedger(d Deps) *Ledger {
	l := &Ledger{
		tx:     d.Tx,
		repos:  d.Repos,
		events: d.Events,
		cache:  d.Cache,
		clock:  d.Clock,
		log:    d.Log,
		policy: d.Policy,
	}
	if l.events == nil {
		l.events = nopPublisher{}
	}
	if l.cache == nil {
		l.cache = nopCache{}
	}
	if l.clock == nil {
		l.clock = SystemClock()
	}
	if l.log == nil {
		l.log = logger.Nop()
	}
	if l.policy.ABCCutoffA.IsZero() && l.policy.ABCCutoffB.IsZero() {
		allow := l.policy.AllowNegativeAdjustments
		l.policy = DefaultPolicy()
		l.policy.AllowNegativeAdjustments = allow
	}
	if l.policy.ABCWindowDays <= 0 {
		l.policy.ABCWindowDays = 365
	}
	return l
}

// Now hora actual según el reloj del ledger.
func (l *Ledger) Now() time.Time { return l.clock.Now() }

// GetAvailable lee la fila sin bloquear (vía caché si está configurada).
// Una clave nunca tocada devuelve (0,0).
func (l *Ledger) GetAvailable(ctx context.Context, companyID string, key entity.StockKey) (*entity.StockLevel, error) {
	if companyID == "" || key.ProductID == "" || key.LocationID == "" {
		return nil, domain.Invalid("product_id y location_id son requeridos")
	}
	cached, gen, ok := l.cache.Get(ctx, companyID, key)
	if ok {
		return cached, nil
	}
	lvl, err := l.repos.Levels.Get(ctx, companyID, key)
	if err != nil {
		return nil, err
	}
	if lvl == nil {
		return entity.NewStockLevel(companyID, key), nil
	}
	l.cache.Set(ctx, lvl, gen)
	return lvl, nil
}

// ListByLocation filas de una ubicación.
func (l *Ledger) ListByLocation(ctx context.Context, companyID, locationID string) ([]*entity.StockLevel, error) {
	return l.repos.Levels.ListByLocations(ctx, companyID, []string{locationID})
}

// ListByProduct filas de un producto en todas sus ubicaciones.
func (l *Ledger) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.StockLevel, error) {
	return l.repos.Levels.ListByProduct(ctx, companyID, productID)
}

// unitOfWork estado de una transacción: repos atados a la tx, claves tocadas y eventos pendientes.
type unitOfWork struct {
	repos     repository.Repos
	companyID string
	now       time.Time
	touched   map[entity.StockKey]struct{}
	events    []Event
	policy    Policy
}

// run ejecuta fn dentro de una transacción. Tras el commit invalida la caché de las claves
// tocadas y publica los eventos; un fallo al publicar no revierte nada y solo se registra.
func (l *Ledger) run(ctx context.Context, companyID string, fn func(u *unitOfWork) error) error {
	if companyID == "" {
		return domain.Invalid("company_id es requerido")
	}
	var u *unitOfWork
	err := l.tx.Run(ctx, func(r repository.Repos) error {
		u = &unitOfWork{
			repos:     r,
			companyID: companyID,
			now:       l.clock.Now(),
			touched:   make(map[entity.StockKey]struct{}),
			policy:    l.policy,
		}
		return fn(u)
	})
	if err != nil {
		return err
	}
	l.afterCommit(ctx, u)
	return nil
}

func (l *Ledger) afterCommit(ctx context.Context, u *unitOfWork) {
	if len(u.touched) > 0 {
		keys := make([]entity.StockKey, 0, len(u.touched))
		for k := range u.touched {
			keys = append(keys, k)
		}
		l.cache.Invalidate(ctx, u.companyID, keys...)
	}
	if len(u.events) == 0 {
		return
	}
	if err := l.events.Publish(ctx, u.events...); err != nil {
		l.log.Warn().Err(err).Str("company_id", u.companyID).Int("events", len(u.events)).
			Msg("no se pudieron publicar eventos de stock")
	}
}

// lockKeys bloquea las filas en orden canónico antes de modificarlas.
func (u *unitOfWork) lockKeys(ctx context.Context, keys []entity.StockKey) error {
	for _, k := range entity.SortedKeys(keys) {
		if _, err := u.repos.Levels.GetForUpdate(ctx, u.companyID, k); err != nil {
			return err
		}
	}
	return nil
}

// applyDelta bloquea la fila (creándola en 0,0), aplica los deltas y la guarda.
func (u *unitOfWork) applyDelta(ctx context.Context, key entity.StockKey, quantityDelta, reservedDelta decimal.Decimal, allowNegative bool) (*entity.StockLevel, error) {
	lvl, err := u.repos.Levels.GetForUpdate(ctx, u.companyID, key)
	if err != nil {
		return nil, err
	}
	if err := inventory.ApplyDelta(lvl, quantityDelta, reservedDelta, allowNegative); err != nil {
		return nil, err
	}
	lvl.UpdatedAt = u.now
	if err := u.repos.Levels.Save(ctx, lvl); err != nil {
		return nil, err
	}
	u.touched[key] = struct{}{}
	return lvl, nil
}

// nextReference genera PREFIJO-AAAAMMDD-NNNN con contador diario por empresa.
func (u *unitOfWork) nextReference(ctx context.Context, prefix string) (string, error) {
	n, err := u.repos.Sequences.Next(ctx, u.companyID, prefix, u.now)
	if err != nil {
		return "", fmt.Errorf("generar referencia %s: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, u.now.Format("20060102"), n), nil
}

func (u *unitOfWork) emit(e Event) {
	e.CompanyID = u.companyID
	if e.OccurredAt.IsZero() {
		e.OccurredAt = u.now
	}
	u.events = append(u.events, e)
}

// product carga un producto de la empresa o NotFound.
func (u *unitOfWork) product(ctx context.Context, id string) (*entity.Product, error) {
	p, err := u.repos.Products.GetByID(ctx, u.companyID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %s no encontrado", id)
	}
	return p, nil
}

// location carga una ubicación activa de la empresa.
func (u *unitOfWork) location(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := u.repos.Locations.GetByID(ctx, u.companyID, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.NotFound("ubicación %s no encontrada", id)
	}
	if !loc.IsActive {
		return nil, domain.Invalid("la ubicación %s está inactiva", loc.Code)
	}
	return loc, nil
}

// warehouse carga una bodega activa de la empresa.
func (u *unitOfWork) warehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	wh, err := u.repos.Warehouses.GetByID(ctx, u.companyID, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.NotFound("bodega %s no encontrada", id)
	}
	if !wh.IsActive {
		return nil, domain.Invalid("la bodega %s está inactiva", wh.Code)
	}
	return wh, nil
}

// defaultLocation primera ubicación activa de la bodega.
func (u *unitOfWork) defaultLocation(ctx context.Context, warehouseID string) (*entity.Location, error) {
	loc, err := u.repos.Locations.DefaultForWarehouse(ctx, u.companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.Invalid("la bodega %s no tiene ubicaciones activas", warehouseID)
	}
	return loc, nil
}

func newID() string { return uuid.New().String() }

// pageOrDefault aplica límite por defecto 20 y máximo 100.
func pageOrDefault(p repository.Page) repository.Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
