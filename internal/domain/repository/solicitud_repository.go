package repository

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// FiltroSolicitudes filtros del listado de solicitudes.
type FiltroSolicitudes struct {
	Estado entity.EstadoSolicitud // vacío = todos los no eliminados
	Limit  int
	Offset int
}

// SolicitudRepository define el puerto de persistencia para Solicitud.
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type SolicitudRepository interface {
	Create(ctx context.Context, s *entity.Solicitud) error
	GetByID(ctx context.Context, id int64) (*entity.Solicitud, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Solicitud, error)
	List(ctx context.Context, f FiltroSolicitudes) ([]*entity.Solicitud, int, error)
	// UpdateContenido actualiza asunto, descripción y adjuntos si titular sigue teniendo el lease de edición.
	UpdateContenido(ctx context.Context, s *entity.Solicitud, titular string) (bool, error)

	// CompareAndSwapLease escribe nuevo sólo si el lease almacenado sigue siendo esperado.
	// Devuelve false si otro escritor ganó la carrera.
	CompareAndSwapLease(ctx context.Context, id int64, esperado, nuevo entity.Lease) (bool, error)
	// ForzarLease escribe nuevo sin condición de lease, salvo que la solicitud ya sea terminal.
	ForzarLease(ctx context.Context, id int64, nuevo entity.Lease) (bool, error)
	// Eliminar marca la solicitud como eliminada si el lease sigue siendo esperado.
	Eliminar(ctx context.Context, id int64, esperado entity.Lease, justificacion string) (bool, error)
}
