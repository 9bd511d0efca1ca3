package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrDuplicateQuote     = errors.New("la cotización ya tiene una reserva activa")
	ErrDuplicateContainer = errors.New("el contenedor ya existe")
	ErrAlreadyArrived     = errors.New("el contenedor ya llegó")
	ErrInvalidState       = errors.New("estado inválido para la operación")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	// ErrInvariantViolation indica un error en otra parte del sistema; nunca debe verse en operación normal.
	ErrInvariantViolation = errors.New("violación de invariante de inventario")
)

// ErrInvalidTransition transición no permitida desde un estado no terminal.
// errors.Is(ErrInvalidTransition, ErrInvalidState) es verdadero.
var ErrInvalidTransition = fmt.Errorf("%w: transición no permitida", ErrInvalidState)

// Code código estable del error para clientes y registros.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		return "VALIDATION"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrDuplicateQuote):
		return "DUPLICATE_QUOTE"
	case errors.Is(err, ErrDuplicateContainer):
		return "DUPLICATE_CONTAINER"
	case errors.Is(err, ErrAlreadyArrived):
		return "ALREADY_ARRIVED"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrInvariantViolation):
		return "INVARIANT_VIOLATION"
	case errors.Is(err, ErrInvalidCredentials):
		return "UNAUTHORIZED"
	}
	return "INTERNAL"
}
