package postgres

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// call una sentencia recibida por el Querier falso.
type call struct {
	sql  string
	args []any
}

// fakeQuerier registra las sentencias y responde con filas o errores preparados en orden.
type fakeQuerier struct {
	calls   []call
	execErr []error
	rows    [][][]any // una entrada por QueryRow/Query; cada una con sus filas
	rowErr  []error
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.calls = append(q.calls, call{sql: sql, args: args})
	if len(q.execErr) > 0 {
		err := q.execErr[0]
		q.execErr = q.execErr[1:]
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *fakeQuerier) next() ([][]any, error) {
	var data [][]any
	var err error
	if len(q.rows) > 0 {
		data, q.rows = q.rows[0], q.rows[1:]
	}
	if len(q.rowErr) > 0 {
		err, q.rowErr = q.rowErr[0], q.rowErr[1:]
	}
	return data, err
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.calls = append(q.calls, call{sql: sql, args: args})
	data, err := q.next()
	if err != nil {
		return nil, err
	}
	return &fakeRows{data: data, pos: -1}, nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.calls = append(q.calls, call{sql: sql, args: args})
	data, err := q.next()
	if err != nil {
		return fakeRow{err: err}
	}
	if len(data) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: data[0]}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.values, dest)
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error { return scanInto(r.data[r.pos], dest) }

func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos], nil }

// scanInto copia cada valor en su destino; los tipos deben coincidir como lo haría pgx.
func scanInto(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d valores para %d destinos", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		val := reflect.ValueOf(v)
		if !val.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan columna %d: %s no asignable a %s", i, val.Type(), target.Type())
		}
		target.Set(val)
	}
	return nil
}
