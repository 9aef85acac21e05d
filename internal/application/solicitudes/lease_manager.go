package solicitudes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/lease"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// Clock reloj compartido por todos los procesos (en producción, el de la base de datos).
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// Resultado de AdquirirLease. Otorgado=false con err=nil significa que otro usuario tiene la solicitud;
// Solicitud refleja entonces el estado actual (incluido el titular).
type Resultado struct {
	Otorgado  bool
	Decision  lease.Decision
	Solicitud *entity.Solicitud
}

// LeaseManager controla el ciclo de vida concurrente de las solicitudes.
// Toda escritura de lease es un único UPDATE condicionado al lease leído (compare-and-swap);
// no hay reintentos internos.
type LeaseManager struct {
	repo     repository.SolicitudRepository
	clock    Clock
	politica lease.Politica
	log      zerolog.Logger
}

// NewLeaseManager construye el gestor.
func NewLeaseManager(repo repository.SolicitudRepository, clock Clock, politica lease.Politica, log zerolog.Logger) *LeaseManager {
	return &LeaseManager{repo: repo, clock: clock, politica: politica, log: log}
}

// Politica devuelve los timeouts configurados.
func (m *LeaseManager) Politica() lease.Politica { return m.politica }

// AdquirirLease intenta tomar (o renovar, o reclamar si expiró) el lease de tipo editando/procesando.
// El titular que pide otro tipo sin liberar el vigente recibe domain.ErrCambioTipoLease.
func (m *LeaseManager) AdquirirLease(ctx context.Context, id int64, tipo entity.EstadoSolicitud, titular string) (*Resultado, error) {
	if !lease.TipoValido(tipo) {
		return nil, domain.NewValidationError("tipo", "debe ser editando o procesando")
	}
	if titular == "" {
		return nil, domain.ErrUnauthorized
	}
	sol, err := m.obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	now, err := m.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer reloj: %w", err)
	}

	decision := lease.Decidir(sol.LeaseActual(), tipo, titular, now, m.politica)
	switch {
	case decision == lease.Terminal:
		return nil, domain.ErrEstadoTerminal
	case decision == lease.CambioTipo:
		return nil, domain.ErrCambioTipoLease
	case !decision.Otorgable():
		return &Resultado{Otorgado: false, Decision: decision, Solicitud: sol}, nil
	}

	nuevo := lease.Nuevo(tipo, titular, now)
	ok, err := m.repo.CompareAndSwapLease(ctx, id, sol.LeaseActual(), nuevo)
	if err != nil {
		return nil, fmt.Errorf("escribir lease: %w", err)
	}
	if !ok {
		// Otro escritor ganó la carrera entre la lectura y el UPDATE.
		actual, err := m.obtener(ctx, id)
		if err != nil {
			return nil, err
		}
		m.log.Debug().Int64("solicitud_id", id).Str("titular", titular).Msg("lease perdido por carrera")
		return &Resultado{Otorgado: false, Decision: lease.Ocupada, Solicitud: actual}, nil
	}

	ev := m.log.Debug()
	if decision == lease.Reclamo {
		ev = m.log.Info().Str("titular_anterior", sol.LeasedBy)
	}
	ev.Int64("solicitud_id", id).Str("titular", titular).Str("tipo", string(tipo)).
		Stringer("decision", decision).Msg("lease otorgado")

	sol.AplicarLease(nuevo)
	return &Resultado{Otorgado: true, Decision: decision, Solicitud: sol}, nil
}

// Liberar devuelve la solicitud a abierta. Sólo el titular puede liberar un lease vigente;
// un lease expirado puede liberarlo cualquiera. Liberar una solicitud abierta no hace nada.
func (m *LeaseManager) Liberar(ctx context.Context, id int64, titular string) error {
	sol, err := m.obtener(ctx, id)
	if err != nil {
		return err
	}
	if sol.Estado == entity.EstadoAbierta {
		return nil
	}
	if sol.Estado.EsTerminal() {
		return domain.ErrEstadoTerminal
	}
	now, err := m.clock.Now(ctx)
	if err != nil {
		return fmt.Errorf("leer reloj: %w", err)
	}
	if sol.LeasedBy != titular && !lease.Expirado(sol.LeaseActual(), now, m.politica) {
		return domain.ErrLeaseNotHeld
	}
	ok, err := m.repo.CompareAndSwapLease(ctx, id, sol.LeaseActual(), entity.LeaseLibre(entity.EstadoAbierta))
	if err != nil {
		return fmt.Errorf("liberar lease: %w", err)
	}
	if !ok {
		return domain.ErrLeaseNotHeld
	}
	m.log.Debug().Int64("solicitud_id", id).Str("titular", titular).Msg("lease liberado")
	return nil
}

// Transicionar mueve la solicitud a destino limpiando el lease, sin importar el titular.
// Lo usa la materialización para pasar a ordenada después del commit. Nunca sale de un estado terminal.
func (m *LeaseManager) Transicionar(ctx context.Context, id int64, destino entity.EstadoSolicitud) error {
	if destino != entity.EstadoAbierta && destino != entity.EstadoOrdenada {
		return domain.NewValidationError("estado", "transición no permitida")
	}
	ok, err := m.repo.ForzarLease(ctx, id, entity.LeaseLibre(destino))
	if err != nil {
		return fmt.Errorf("transicionar solicitud: %w", err)
	}
	if !ok {
		if _, err := m.obtener(ctx, id); err != nil {
			return err
		}
		return domain.ErrEstadoTerminal
	}
	m.log.Info().Int64("solicitud_id", id).Str("estado", string(destino)).Msg("solicitud transicionada")
	return nil
}

// Eliminar borra lógicamente la solicitud con justificación obligatoria.
// Permitido desde abierta, editando o procesando; si otro usuario tiene un lease vigente devuelve ErrLeaseNotHeld.
func (m *LeaseManager) Eliminar(ctx context.Context, id int64, justificacion, titular string) error {
	justificacion = strings.TrimSpace(justificacion)
	if justificacion == "" {
		return domain.NewValidationError("justificacion", "es obligatorio")
	}
	sol, err := m.obtener(ctx, id)
	if err != nil {
		return err
	}
	if sol.Estado.EsTerminal() {
		return domain.ErrEstadoTerminal
	}
	if sol.Estado.EsLease() && sol.LeasedBy != titular {
		now, err := m.clock.Now(ctx)
		if err != nil {
			return fmt.Errorf("leer reloj: %w", err)
		}
		if !lease.Expirado(sol.LeaseActual(), now, m.politica) {
			return domain.ErrLeaseNotHeld
		}
	}
	ok, err := m.repo.Eliminar(ctx, id, sol.LeaseActual(), justificacion)
	if err != nil {
		return fmt.Errorf("eliminar solicitud: %w", err)
	}
	if !ok {
		return domain.ErrConflict
	}
	m.log.Info().Int64("solicitud_id", id).Str("usuario", titular).Msg("solicitud eliminada")
	return nil
}

// ObtenerConReclamo lee la solicitud y, si su lease expiró, intenta devolverla a abierta por el mismo
// camino compare-and-swap. El reclamo es oportunista: si otro escritor gana, se devuelve lo que quedó.
func (m *LeaseManager) ObtenerConReclamo(ctx context.Context, id int64) (*entity.Solicitud, error) {
	sol, err := m.obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sol.Estado.EsLease() {
		return sol, nil
	}
	now, err := m.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer reloj: %w", err)
	}
	if !lease.Expirado(sol.LeaseActual(), now, m.politica) {
		return sol, nil
	}
	ok, err := m.repo.CompareAndSwapLease(ctx, id, sol.LeaseActual(), entity.LeaseLibre(entity.EstadoAbierta))
	if err != nil {
		m.log.Warn().Err(err).Int64("solicitud_id", id).Msg("reclamo de lease expirado")
	} else if ok {
		m.log.Info().Int64("solicitud_id", id).Str("titular_anterior", sol.LeasedBy).Msg("lease expirado reclamado")
	}
	return m.obtener(ctx, id)
}

// VerificarLease comprueba, sin escribir, que titular tenga un lease vigente del tipo indicado.
func (m *LeaseManager) VerificarLease(sol *entity.Solicitud, tipo entity.EstadoSolicitud, titular string, now time.Time) error {
	return lease.Vigente(sol.LeaseActual(), tipo, titular, now, m.politica)
}

func (m *LeaseManager) obtener(ctx context.Context, id int64) (*entity.Solicitud, error) {
	sol, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener solicitud: %w", err)
	}
	if sol == nil {
		return nil, domain.ErrNotFound
	}
	return sol, nil
}
