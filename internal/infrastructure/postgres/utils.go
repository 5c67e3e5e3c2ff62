package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// Códigos SQLSTATE de contención entre transacciones.
const (
	lockNotAvailable     = "55P03"
	deadlockDetected     = "40P01"
	serializationFailure = "40001"
)

// asConflict traduce la contención de locks a domain.ErrConflict; el resto pasa igual.
func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case lockNotAvailable, deadlockDetected, serializationFailure:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)
	}
	return err
}

// nullable convierte "" en NULL para columnas UUID opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref NULL → "".
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// whereBuilder arma cláusulas WHERE con placeholders posicionales.
type whereBuilder struct {
	conds []string
	args  []any
}

func newWhere(companyColumn, companyID string) *whereBuilder {
	w := &whereBuilder{}
	w.add(companyColumn+" = $%d", companyID)
	return w
}

// add agrega una condición; format recibe el número del placeholder.
func (w *whereBuilder) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))
}

// addIf agrega la condición solo si value no es vacío.
func (w *whereBuilder) addIf(format, value string) {
	if value != "" {
		w.add(format, value)
	}
}

// addAny misma comparación sobre varias columnas unidas con OR (ej. origen o destino).
func (w *whereBuilder) addAny(columns []string, op string, arg any) {
	w.args = append(w.args, arg)
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s %s $%d", c, op, len(w.args))
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

func (w *whereBuilder) sql() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page agrega LIMIT/OFFSET; Limit <= 0 devuelve todo.
func (w *whereBuilder) page(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}
