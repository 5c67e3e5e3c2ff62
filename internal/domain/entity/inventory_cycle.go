package entity

import "time"

// Frecuencias de conteo cíclico.
const (
	CycleFrequencyMonthly   = "monthly"
	CycleFrequencyQuarterly = "quarterly"
	CycleFrequencyYearly    = "yearly"
)

// Estados de un ciclo de inventario.
const (
	CycleStatusPlanned    = "planned"
	CycleStatusInProgress = "in_progress"
	CycleStatusCompleted  = "completed"
	CycleStatusCancelled  = "cancelled"
)

// InventoryCycle metadatos de planificación; al iniciar materializa un Inventory.
type InventoryCycle struct {
	ID             string
	CompanyID      string
	Name           string
	Frequency      string
	Classification string // A, B, C o "" (todas)
	CategoryID     string
	WarehouseID    string
	StartDate      time.Time
	EndDate        time.Time
	AssignedTo     string
	Status         string
	InventoryID    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FrequencyMonths intervalo en meses de cada frecuencia.
func FrequencyMonths(freq string) int {
	switch freq {
	case CycleFrequencyMonthly:
		return 1
	case CycleFrequencyQuarterly:
		return 3
	case CycleFrequencyYearly:
		return 12
	}
	return 0
}
