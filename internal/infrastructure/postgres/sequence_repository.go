package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores diarios por empresa y prefijo.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next upsert atómico; la fila queda bloqueada hasta el fin de la tx, así dos referencias nunca se repiten.
func (r *SequenceRepo) Next(ctx context.Context, companyID, prefix string, day time.Time) (int, error) {
	query := `
		INSERT INTO document_sequences (company_id, prefix, day, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, prefix, day) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var n int
	if err := r.q.QueryRow(ctx, query, companyID, prefix, day.UTC().Format("2006-01-02")).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", prefix, err)
	}
	return n, nil
}
