package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// FiltroOrdenes filtros del listado de órdenes. Las eliminadas nunca se listan.
type FiltroOrdenes struct {
	SolicitudID int64
	ProveedorID int64
	Limit       int
	Offset      int
}

// OrdenRepository define el puerto de persistencia para Orden y sus detalles.
type OrdenRepository interface {
	// Create inserta la cabecera y asigna orden.ID.
	Create(ctx context.Context, orden *entity.Orden) error
	SetCodigo(ctx context.Context, id int64, codigo string) error
	CreateDetalle(ctx context.Context, d *entity.DetalleOrden) error
	GetByID(ctx context.Context, id int64) (*entity.Orden, error)
	GetDetalles(ctx context.Context, ordenID int64) ([]*entity.DetalleOrden, error)
	ExistsBySolicitud(ctx context.Context, solicitudID int64) (bool, error)
	List(ctx context.Context, f FiltroOrdenes) ([]*entity.Orden, int, error)

	// UpdatePDF guarda la ruta del PDF; repetirlo con la misma ruta no tiene efecto.
	UpdatePDF(ctx context.Context, id int64, ruta string) error
	// RegistrarFalloPDF incrementa el contador de intentos y guarda el último error.
	RegistrarFalloPDF(ctx context.Context, id int64, msg string) error
	// ListPendientesPDF órdenes sin PDF con menos de maxIntentos fallidos.
	ListPendientesPDF(ctx context.Context, maxIntentos, limit int) ([]int64, error)

	// Los cambios de revisión son condicionales: devuelven false si la orden ya no cumple
	// la condición (otro escritor ganó, fue rechazada o eliminada) y no escriben nada.

	// Aprobar sube el nivel en uno si sigue en nivelActual, sin rechazo y no eliminada.
	Aprobar(ctx context.Context, id int64, nivelActual int, at time.Time) (bool, error)
	// Rechazar guarda la justificación si la orden no fue rechazada ni eliminada.
	Rechazar(ctx context.Context, id int64, justificacion string, at time.Time) (bool, error)
	// ActualizarNota cambia la nota del creador mientras la orden está pendiente y sin rechazo.
	ActualizarNota(ctx context.Context, id int64, nota string, at time.Time) (bool, error)
	// Eliminar marca la orden como eliminada con justificación; la fila y sus detalles se conservan.
	Eliminar(ctx context.Context, id int64, justificacion string, at time.Time) (bool, error)

	// ListInconsistencias solicitudes que tienen orden pero no quedaron en estado ordenada.
	ListInconsistencias(ctx context.Context) ([]entity.Inconsistencia, error)
}
