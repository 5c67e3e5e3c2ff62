// Package memory implementa los puertos de persistencia en memoria. Sirve para tests y para
// ejecutar el servicio sin Postgres (STORE_DRIVER=memory). Las transacciones se serializan
// con un mutex y trabajan sobre una copia del estado que solo se publica al confirmar.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type levelID struct {
	companyID string
	key       entity.StockKey
}

type seqID struct {
	companyID string
	prefix    string
	day       string
}

// state contiene copias propias de cada entidad. Las escrituras reemplazan la entrada,
// nunca la modifican, así clonar el estado solo copia los mapas.
type state struct {
	levels       map[levelID]*entity.StockLevel
	movements    map[string]*entity.StockMovement
	reservations map[string]*entity.StockReservation
	transfers    map[string]*entity.StockTransfer
	inventories  map[string]*entity.Inventory
	cycles       map[string]*entity.InventoryCycle
	products     map[string]*entity.Product
	warehouses   map[string]*entity.Warehouse
	locations    map[string]*entity.Location
	sequences    map[seqID]int
}

func newState() *state {
	return &state{
		levels:       map[levelID]*entity.StockLevel{},
		movements:    map[string]*entity.StockMovement{},
		reservations: map[string]*entity.StockReservation{},
		transfers:    map[string]*entity.StockTransfer{},
		inventories:  map[string]*entity.Inventory{},
		cycles:       map[string]*entity.InventoryCycle{},
		products:     map[string]*entity.Product{},
		warehouses:   map[string]*entity.Warehouse{},
		locations:    map[string]*entity.Location{},
		sequences:    map[seqID]int{},
	}
}

func (s *state) clone() *state {
	return &state{
		levels:       cloneMap(s.levels),
		movements:    cloneMap(s.movements),
		reservations: cloneMap(s.reservations),
		transfers:    cloneMap(s.transfers),
		inventories:  cloneMap(s.inventories),
		cycles:       cloneMap(s.cycles),
		products:     cloneMap(s.products),
		warehouses:   cloneMap(s.warehouses),
		locations:    cloneMap(s.locations),
		sequences:    cloneMap(s.sequences),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store almacenamiento en memoria seguro para uso concurrente.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New crea un almacenamiento vacío.
func New() *Store {
	return &Store{st: newState()}
}

// handle resuelve el estado sobre el que opera un repositorio: el de la transacción en curso
// o el compartido, protegido por el mutex.
type handle struct {
	s  *Store
	tx *state
}

func (h handle) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	return fn(h.s.st)
}

func (h handle) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.st)
}

// Repos repositorios fuera de transacción.
func (s *Store) Repos() repository.Repos {
	return reposFor(handle{s: s})
}

// Run ejecuta fn con repositorios sobre una copia del estado; si fn no falla la copia
// reemplaza al estado compartido.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(reposFor(handle{s: s, tx: tx})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx
	return nil
}

func reposFor(h handle) repository.Repos {
	return repository.Repos{
		Levels:       &levelRepo{h},
		Movements:    &movementRepo{h},
		Reservations: &reservationRepo{h},
		Transfers:    &transferRepo{h},
		Inventories:  &inventoryRepo{h},
		Cycles:       &cycleRepo{h},
		Products:     &productRepo{h},
		Warehouses:   &warehouseRepo{h},
		Locations:    &locationRepo{h},
		Sequences:    &sequenceRepo{h},
	}
}

// paginate aplica Page a una lista ya ordenada.
func paginate[T any](list []T, p repository.Page) []T {
	if p.Offset > 0 {
		if p.Offset >= len(list) {
			return []T{}
		}
		list = list[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(list) {
		list = list[:p.Limit]
	}
	return list
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// newestFirst orden descendente por fecha de creación con desempate por ID.
func newestFirst[T any](list []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := created(list[i]), created(list[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return id(list[i]) > id(list[j])
	})
}
