// Package lease decide las transiciones del bloqueo temporal (lease) de una solicitud.
// No accede a la base de datos: la escritura la hace el caso de uso con un compare-and-swap
// condicionado al lease leído.
package lease

import (
	"time"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// Politica duración de cada tipo de lease.
type Politica struct {
	Edicion time.Duration
	Proceso time.Duration
}

// PoliticaPorDefecto 5 minutos para edición y 30 para proceso.
func PoliticaPorDefecto() Politica {
	return Politica{Edicion: 5 * time.Minute, Proceso: 30 * time.Minute}
}

// Timeout devuelve la duración del lease del tipo indicado.
func (p Politica) Timeout(tipo entity.EstadoSolicitud) time.Duration {
	if tipo == entity.EstadoEditando {
		return p.Edicion
	}
	return p.Proceso
}

// Decision resultado de evaluar una solicitud de lease.
type Decision int

const (
	// Libre: la solicitud está abierta.
	Libre Decision = iota
	// Renovacion: el mismo titular vuelve a pedir el lease del mismo tipo.
	Renovacion
	// Reclamo: el lease vigente expiró y puede tomarse.
	Reclamo
	// Ocupada: otro titular tiene un lease no expirado.
	Ocupada
	// Terminal: ordenada o eliminada.
	Terminal
	// CambioTipo: el titular pide otro tipo sin liberar el vigente.
	CambioTipo
)

func (d Decision) String() string {
	switch d {
	case Libre:
		return "libre"
	case Renovacion:
		return "renovacion"
	case Reclamo:
		return "reclamo"
	case Ocupada:
		return "ocupada"
	case Terminal:
		return "terminal"
	case CambioTipo:
		return "cambio_tipo"
	}
	return "desconocida"
}

// Otorgable indica si la decisión permite escribir el nuevo lease.
func (d Decision) Otorgable() bool {
	return d == Libre || d == Renovacion || d == Reclamo
}

// Expirado indica si el lease registrado superó el timeout del tipo que se tiene.
// Una solicitud sin lease nunca está expirada.
func Expirado(l entity.Lease, now time.Time, p Politica) bool {
	if !l.Estado.EsLease() || l.LeasedAt == nil {
		return false
	}
	return now.Sub(*l.LeasedAt) > p.Timeout(l.Estado)
}

// Decidir clasifica el pedido de lease de tipo por titular sobre el estado actual.
// Un lease vigente sólo se renueva con el mismo tipo: editando y procesando no se intercambian.
func Decidir(actual entity.Lease, tipo entity.EstadoSolicitud, titular string, now time.Time, p Politica) Decision {
	switch {
	case actual.Estado.EsTerminal():
		return Terminal
	case actual.Estado == entity.EstadoAbierta:
		return Libre
	case Expirado(actual, now, p):
		return Reclamo
	case actual.LeasedBy == titular && actual.Estado == tipo:
		return Renovacion
	case actual.LeasedBy == titular:
		return CambioTipo
	default:
		return Ocupada
	}
}

// Nuevo lease que se escribe al otorgar.
func Nuevo(tipo entity.EstadoSolicitud, titular string, now time.Time) entity.Lease {
	t := now
	return entity.Lease{Estado: tipo, LeasedAt: &t, LeasedBy: titular}
}

// Vigente verifica que titular tenga un lease no expirado del tipo indicado.
func Vigente(actual entity.Lease, tipo entity.EstadoSolicitud, titular string, now time.Time, p Politica) error {
	if actual.Estado.EsTerminal() {
		return domain.ErrEstadoTerminal
	}
	if actual.Estado != tipo || actual.LeasedBy != titular || actual.LeasedAt == nil {
		return domain.ErrLeaseNotHeld
	}
	if Expirado(actual, now, p) {
		return domain.ErrLeaseNotHeld
	}
	return nil
}

// TipoValido indica si se puede pedir un lease de ese tipo.
func TipoValido(tipo entity.EstadoSolicitud) bool {
	return tipo.EsLease()
}
