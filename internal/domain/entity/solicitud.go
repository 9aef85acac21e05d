package entity

import "time"

// EstadoSolicitud estado del ciclo de vida de una solicitud.
type EstadoSolicitud string

const (
	EstadoAbierta    EstadoSolicitud = "abierta"
	EstadoEditando   EstadoSolicitud = "editando"
	EstadoProcesando EstadoSolicitud = "procesando"
	EstadoOrdenada   EstadoSolicitud = "ordenada"
	EstadoEliminada  EstadoSolicitud = "eliminada"
)

// EsLease indica si el estado representa un bloqueo (edición o proceso).
func (e EstadoSolicitud) EsLease() bool {
	return e == EstadoEditando || e == EstadoProcesando
}

// EsTerminal indica si la solicitud ya no admite transiciones.
func (e EstadoSolicitud) EsTerminal() bool {
	return e == EstadoOrdenada || e == EstadoEliminada
}

// Valido indica si el valor es uno de los estados conocidos.
func (e EstadoSolicitud) Valido() bool {
	switch e {
	case EstadoAbierta, EstadoEditando, EstadoProcesando, EstadoOrdenada, EstadoEliminada:
		return true
	}
	return false
}

// Adjunto archivo asociado a la solicitud (se guarda como JSONB).
type Adjunto struct {
	URL       string `json:"url"`
	Eliminado bool   `json:"eliminado"`
}

// Solicitud representa una solicitud de compra pendiente de convertirse en orden.
// LeasedAt y LeasedBy son no nulos sólo mientras Estado es editando o procesando.
type Solicitud struct {
	ID                       int64
	Asunto                   string
	Descripcion              string
	UsuarioSolicitante       string
	CorreoSolicitante        string
	Adjuntos                 []Adjunto
	Estado                   EstadoSolicitud
	LeasedAt                 *time.Time
	LeasedBy                 string // usuario que tiene el bloqueo
	Eliminado                bool
	JustificacionEliminacion string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Lease valor de los campos de concurrencia de una solicitud (estado + marca de tiempo + titular).
type Lease struct {
	Estado   EstadoSolicitud
	LeasedAt *time.Time
	LeasedBy string
}

// LeaseActual devuelve el lease registrado en la solicitud.
func (s *Solicitud) LeaseActual() Lease {
	return Lease{Estado: s.Estado, LeasedAt: s.LeasedAt, LeasedBy: s.LeasedBy}
}

// AplicarLease copia el lease sobre la solicitud.
func (s *Solicitud) AplicarLease(l Lease) {
	s.Estado = l.Estado
	s.LeasedAt = l.LeasedAt
	s.LeasedBy = l.LeasedBy
}

// LeaseLibre lease de una solicitud en el estado indicado sin bloqueo.
func LeaseLibre(estado EstadoSolicitud) Lease {
	return Lease{Estado: estado}
}

// AdjuntosVigentes devuelve los adjuntos no eliminados.
func (s *Solicitud) AdjuntosVigentes() []Adjunto {
	out := make([]Adjunto, 0, len(s.Adjuntos))
	for _, a := range s.Adjuntos {
		if !a.Eliminado {
			out = append(out, a)
		}
	}
	return out
}
