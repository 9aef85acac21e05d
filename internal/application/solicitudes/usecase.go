package solicitudes

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/validacion"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/lease"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// SolicitudUseCase alta, listado y edición de solicitudes. Las transiciones de estado
// pasan siempre por LeaseManager.
type SolicitudUseCase struct {
	repo   repository.SolicitudRepository
	leases *LeaseManager
	clock  Clock
}

// NewSolicitudUseCase construye el caso de uso.
func NewSolicitudUseCase(repo repository.SolicitudRepository, leases *LeaseManager, clock Clock) *SolicitudUseCase {
	return &SolicitudUseCase{repo: repo, leases: leases, clock: clock}
}

// Crear registra una solicitud nueva en estado abierta.
func (uc *SolicitudUseCase) Crear(ctx context.Context, usuario entity.Usuario, in dto.CrearSolicitudRequest) (*dto.SolicitudResponse, error) {
	in.Asunto = strings.TrimSpace(in.Asunto)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	if usuario.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	now, err := uc.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer reloj: %w", err)
	}
	sol := &entity.Solicitud{
		Asunto:             in.Asunto,
		Descripcion:        in.Descripcion,
		UsuarioSolicitante: usuario.Nombre,
		CorreoSolicitante:  usuario.Correo,
		Adjuntos:           adjuntosDesdeDTO(in.Adjuntos),
		Estado:             entity.EstadoAbierta,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if sol.UsuarioSolicitante == "" {
		sol.UsuarioSolicitante = usuario.ID
	}
	if err := uc.repo.Create(ctx, sol); err != nil {
		return nil, fmt.Errorf("crear solicitud: %w", err)
	}
	out := ToResponse(sol)
	return &out, nil
}

// Obtener devuelve la solicitud reclamando el lease si expiró.
func (uc *SolicitudUseCase) Obtener(ctx context.Context, id int64) (*dto.SolicitudResponse, error) {
	sol, err := uc.leases.ObtenerConReclamo(ctx, id)
	if err != nil {
		return nil, err
	}
	if sol.Eliminado {
		return nil, domain.ErrNotFound
	}
	out := ToResponse(sol)
	return &out, nil
}

// Listar devuelve las solicitudes no eliminadas, más recientes primero.
func (uc *SolicitudUseCase) Listar(ctx context.Context, in dto.ListarSolicitudesRequest) (*dto.ListaSolicitudesResponse, error) {
	in.DefaultPage()
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	items, total, err := uc.repo.List(ctx, repository.FiltroSolicitudes{
		Estado: entity.EstadoSolicitud(in.Estado),
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar solicitudes: %w", err)
	}
	out := &dto.ListaSolicitudesResponse{
		Items: make([]dto.SolicitudResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, s := range items {
		out.Items = append(out.Items, ToResponse(s))
	}
	return out, nil
}

// Actualizar edita asunto, descripción y adjuntos. Requiere que titular tenga el lease de edición vigente.
func (uc *SolicitudUseCase) Actualizar(ctx context.Context, id int64, titular string, in dto.ActualizarSolicitudRequest) (*dto.SolicitudResponse, error) {
	in.Asunto = strings.TrimSpace(in.Asunto)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	sol, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener solicitud: %w", err)
	}
	if sol == nil {
		return nil, domain.ErrNotFound
	}
	now, err := uc.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer reloj: %w", err)
	}
	if err := lease.Vigente(sol.LeaseActual(), entity.EstadoEditando, titular, now, uc.leases.Politica()); err != nil {
		return nil, err
	}

	sol.Asunto = in.Asunto
	sol.Descripcion = in.Descripcion
	sol.Adjuntos = adjuntosDesdeDTO(in.Adjuntos)
	sol.UpdatedAt = now
	ok, err := uc.repo.UpdateContenido(ctx, sol, titular)
	if err != nil {
		return nil, fmt.Errorf("actualizar solicitud: %w", err)
	}
	if !ok {
		return nil, domain.ErrLeaseNotHeld
	}
	out := ToResponse(sol)
	return &out, nil
}

// ToResponse mapea la entidad a su DTO.
func ToResponse(s *entity.Solicitud) dto.SolicitudResponse {
	adj := make([]dto.AdjuntoDTO, 0, len(s.Adjuntos))
	for _, a := range s.Adjuntos {
		adj = append(adj, dto.AdjuntoDTO{URL: a.URL, Eliminado: a.Eliminado})
	}
	return dto.SolicitudResponse{
		ID:                 s.ID,
		Asunto:             s.Asunto,
		Descripcion:        s.Descripcion,
		UsuarioSolicitante: s.UsuarioSolicitante,
		CorreoSolicitante:  s.CorreoSolicitante,
		Adjuntos:           adj,
		Estado:             string(s.Estado),
		LeasedAt:           s.LeasedAt,
		LeasedBy:           s.LeasedBy,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func adjuntosDesdeDTO(in []dto.AdjuntoDTO) []entity.Adjunto {
	out := make([]entity.Adjunto, 0, len(in))
	for _, a := range in {
		out = append(out, entity.Adjunto{URL: strings.TrimSpace(a.URL), Eliminado: a.Eliminado})
	}
	return out
}
