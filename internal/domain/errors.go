package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidState      = errors.New("transición inválida para el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
)

// Error es un error de dominio con detalle legible. Kind es uno de los errores sentinela;
// errors.Is(err, domain.ErrX) funciona a través de Unwrap.
// Line es el índice (desde 1) de la línea que falló en operaciones multilínea; 0 si no aplica.
type Error struct {
	Kind    error
	Message string
	Line    int
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("línea %d: %s", e.Line, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Invalid construye un error de validación (campos faltantes o malformados).
func Invalid(format string, args ...any) error {
	return newError(ErrInvalidInput, format, args...)
}

// InvalidState construye un error de transición ilegal; el llamador debe refrescar el estado.
func InvalidState(format string, args ...any) error {
	return newError(ErrInvalidState, format, args...)
}

// Insufficient construye un error de stock insuficiente.
func Insufficient(format string, args ...any) error {
	return newError(ErrInsufficientStock, format, args...)
}

// NotFound construye un error de recurso inexistente.
func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// AtLine marca err con la línea (desde 1) que lo originó. Errores que no son de dominio
// se devuelven sin cambios.
func AtLine(err error, line int) error {
	var de *Error
	if errors.As(err, &de) {
		out := *de
		out.Line = line
		return &out
	}
	return err
}

// LineOf devuelve la línea asociada al error, o 0.
func LineOf(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.Line
	}
	return 0
}
