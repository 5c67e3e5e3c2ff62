package repository

import (
	"context"
	"time"
)

// SequenceRepository contadores diarios para referencias legibles (MOV-20240115-0001).
type SequenceRepository interface {
	// Next incrementa y devuelve el contador de (empresa, prefijo, día).
	Next(ctx context.Context, companyID, prefix string, day time.Time) (int, error)
}
