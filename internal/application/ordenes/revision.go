package ordenes

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/internal/application/validacion"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// RevisionUseCase cambios posteriores a la materialización: aprobación por niveles, rechazo,
// corrección de la nota del creador y eliminación lógica. Montos, líneas y código no cambian nunca.
type RevisionUseCase struct {
	repo  repository.OrdenRepository
	clock solicitudes.Clock
	log   zerolog.Logger
}

// NewRevisionUseCase construye el caso de uso.
func NewRevisionUseCase(repo repository.OrdenRepository, clock solicitudes.Clock, log zerolog.Logger) *RevisionUseCase {
	return &RevisionUseCase{repo: repo, clock: clock, log: log}
}

// Aprobar sube un nivel de aprobación. Una orden rechazada o con la aprobación final devuelve ErrConflict.
func (uc *RevisionUseCase) Aprobar(ctx context.Context, id int64, revisor string) (*dto.OrdenResponse, error) {
	orden, err := uc.obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case orden.Rechazada():
		return nil, fmt.Errorf("%w: la orden fue rechazada", domain.ErrConflict)
	case orden.AprobacionFinal():
		return nil, fmt.Errorf("%w: la orden ya tiene la aprobación final", domain.ErrConflict)
	}
	now, err := uc.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer reloj: %w", err)
	}
	ok, err := uc.repo.Aprobar(ctx, id, orden.NivelAprobacion, now)
	if err != nil {
		return nil, fmt.Errorf("aprobar orden: %w", err)
	}
	if !ok {
		return nil, domain.ErrConflict
	}
	uc.log.Info().Int64("orden_id", id).Str("revisor", revisor).
		Int("nivel", orden.NivelAprobacion+1).Msg("orden aprobada")
	return uc.respuesta(ctx, id)
}

// Rechazar deja la orden rechazada con justificación obligatoria.
func (uc *RevisionUseCase) Rechazar(ctx context.Context, id int64, revisor string, in dto.RechazarOrdenRequest) (*dto.OrdenResponse, error) {
	in.Justificacion = strings.TrimSpace(in.Justificacion)
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	orden, err := uc.obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	if orden.Rechazada() {
		return nil, fmt.Errorf("%w: la orden ya fue rechazada", domain.ErrConflict)
	}
	now, err := uc.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer reloj: %w", err)
	}
	ok, err := uc.repo.Rechazar(ctx, id, in.Justificacion, now)
	if err != nil {
		return nil, fmt.Errorf("rechazar orden: %w", err)
	}
	if !ok {
		return nil, domain.ErrConflict
	}
	uc.log.Info().Int64("orden_id", id).Str("revisor", revisor).Msg("orden rechazada")
	return uc.respuesta(ctx, id)
}

// ActualizarNota corrige la nota del creador. Sólo el creador o un admin, y sólo mientras la orden
// esté pendiente de aprobación y sin rechazo.
func (uc *RevisionUseCase) ActualizarNota(ctx context.Context, id int64, usuario string, esAdmin bool, in dto.NotaOrdenRequest) (*dto.OrdenResponse, error) {
	in.Nota = strings.TrimSpace(in.Nota)
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	orden, err := uc.obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	if !esAdmin && orden.CreadoPor != usuario {
		return nil, domain.ErrForbidden
	}
	if orden.Rechazada() || orden.NivelAprobacion != entity.NivelAprobacionPendiente {
		return nil, fmt.Errorf("%w: la orden ya fue revisada", domain.ErrConflict)
	}
	now, err := uc.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer reloj: %w", err)
	}
	ok, err := uc.repo.ActualizarNota(ctx, id, in.Nota, now)
	if err != nil {
		return nil, fmt.Errorf("actualizar nota: %w", err)
	}
	if !ok {
		return nil, domain.ErrConflict
	}
	return uc.respuesta(ctx, id)
}

// Eliminar borra lógicamente la orden. La solicitud de origen sigue ordenada: no se vuelve a materializar.
func (uc *RevisionUseCase) Eliminar(ctx context.Context, id int64, usuario string, in dto.EliminarOrdenRequest) error {
	in.Justificacion = strings.TrimSpace(in.Justificacion)
	if err := validacion.Struct(in); err != nil {
		return err
	}
	if _, err := uc.obtener(ctx, id); err != nil {
		return err
	}
	now, err := uc.clock.Now(ctx)
	if err != nil {
		return fmt.Errorf("leer reloj: %w", err)
	}
	ok, err := uc.repo.Eliminar(ctx, id, in.Justificacion, now)
	if err != nil {
		return fmt.Errorf("eliminar orden: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	uc.log.Info().Int64("orden_id", id).Str("usuario", usuario).Msg("orden eliminada")
	return nil
}

// obtener trata la orden eliminada como inexistente.
func (uc *RevisionUseCase) obtener(ctx context.Context, id int64) (*entity.Orden, error) {
	orden, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener orden: %w", err)
	}
	if orden == nil || orden.Eliminada {
		return nil, domain.ErrNotFound
	}
	return orden, nil
}

func (uc *RevisionUseCase) respuesta(ctx context.Context, id int64) (*dto.OrdenResponse, error) {
	orden, err := uc.obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toOrdenResponse(orden)
	return &out, nil
}
