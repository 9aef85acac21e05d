package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrLeaseNotHeld   = errors.New("el usuario no tiene el bloqueo vigente de la solicitud")
	ErrEstadoTerminal = errors.New("la solicitud está en un estado terminal")
	// ErrCambioTipoLease: el titular pide un lease de otro tipo sin liberar el que tiene.
	ErrCambioTipoLease = errors.New("libere el bloqueo actual antes de pedir uno de otro tipo")
	// ErrConfiguracion: falta un dato de referencia del sistema; reintentar no sirve hasta que un administrador lo cargue.
	ErrConfiguracion = errors.New("configuración incompleta")
	// ErrTransaccion: la transacción de la orden falló y se revirtió por completo; el cliente puede reintentar.
	ErrTransaccion = errors.New("no se pudo completar la transacción")
	// ErrDownstream: falló un colaborador externo (PDF, almacenamiento). Nunca revierte la orden.
	ErrDownstream = errors.New("falló un servicio externo")
)

// ValidationError identifica el campo inválido. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Campo  string
	Motivo string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo %s: %s", e.Campo, e.Motivo)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un ValidationError.
func NewValidationError(campo, motivo string) *ValidationError {
	return &ValidationError{Campo: campo, Motivo: motivo}
}
