package repository

// Repos agrupa los repositorios atados a una misma transacción (o al pool para lecturas).
type Repos struct {
	Levels       StockLevelRepository
	Movements    StockMovementRepository
	Reservations StockReservationRepository
	Transfers    StockTransferRepository
	Inventories  InventoryRepository
	Cycles       InventoryCycleRepository
	Products     ProductRepository
	Warehouses   WarehouseRepository
	Locations    LocationRepository
	Sequences    SequenceRepository
}
