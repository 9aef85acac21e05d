package ordenes

import (
	"context"
	"fmt"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/validacion"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// OrdenUseCase consultas de órdenes.
type OrdenUseCase struct {
	repo repository.OrdenRepository
}

// NewOrdenUseCase construye el caso de uso.
func NewOrdenUseCase(repo repository.OrdenRepository) *OrdenUseCase {
	return &OrdenUseCase{repo: repo}
}

// Obtener devuelve la orden con sus detalles.
func (uc *OrdenUseCase) Obtener(ctx context.Context, id int64) (*dto.OrdenResponse, error) {
	orden, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener orden: %w", err)
	}
	if orden == nil || orden.Eliminada {
		return nil, domain.ErrNotFound
	}
	detalles, err := uc.repo.GetDetalles(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener detalles: %w", err)
	}
	out := toOrdenResponse(orden)
	out.Detalles = make([]dto.DetalleOrdenResponse, 0, len(detalles))
	for _, d := range detalles {
		out.Detalles = append(out.Detalles, dto.DetalleOrdenResponse{
			ID:                 d.ID,
			ProductoID:         d.ProductoID,
			PrecioUnitario:     d.PrecioUnitario,
			Cantidad:           d.Cantidad,
			Total:              d.Total,
			CantidadPorRecibir: d.CantidadPorRecibir,
		})
	}
	return &out, nil
}

// Listar órdenes, más recientes primero.
func (uc *OrdenUseCase) Listar(ctx context.Context, in dto.ListarOrdenesRequest) (*dto.ListaOrdenesResponse, error) {
	in.DefaultPage()
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	items, total, err := uc.repo.List(ctx, repository.FiltroOrdenes{
		SolicitudID: in.SolicitudID,
		ProveedorID: in.ProveedorID,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar órdenes: %w", err)
	}
	out := &dto.ListaOrdenesResponse{
		Items: make([]dto.OrdenResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, o := range items {
		out.Items = append(out.Items, toOrdenResponse(o))
	}
	return out, nil
}

// InconsistenciasUseCase reporta solicitudes cuya orden se confirmó pero que no pasaron a ordenada
// (caída entre el commit y la transición). Sólo detecta; la corrección es manual.
type InconsistenciasUseCase struct {
	repo repository.OrdenRepository
}

// NewInconsistenciasUseCase construye el caso de uso.
func NewInconsistenciasUseCase(repo repository.OrdenRepository) *InconsistenciasUseCase {
	return &InconsistenciasUseCase{repo: repo}
}

// Listar devuelve las inconsistencias encontradas.
func (uc *InconsistenciasUseCase) Listar(ctx context.Context) ([]dto.InconsistenciaResponse, error) {
	items, err := uc.repo.ListInconsistencias(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar inconsistencias: %w", err)
	}
	out := make([]dto.InconsistenciaResponse, 0, len(items))
	for _, i := range items {
		out = append(out, dto.InconsistenciaResponse{
			SolicitudID: i.SolicitudID,
			Estado:      string(i.Estado),
			OrdenID:     i.OrdenID,
			Codigo:      i.Codigo,
			CreadoEn:    i.CreadoEn,
		})
	}
	return out, nil
}

func toOrdenResponse(o *entity.Orden) dto.OrdenResponse {
	out := dto.OrdenResponse{
		ID:                   o.ID,
		Codigo:               o.Codigo,
		SolicitudID:          o.SolicitudID,
		ProveedorID:          o.ProveedorID,
		BancoID:              o.BancoID,
		MonedaID:             o.MonedaID,
		EmpresaID:            o.EmpresaID,
		CentroCostoID:        o.CentroCostoID,
		PlazoPagoID:          o.PlazoPagoID,
		TipoOrdenID:          o.TipoOrdenID,
		CuentaID:             o.CuentaID,
		Subtotal:             o.Subtotal,
		Impuesto:             o.Impuesto,
		Retencion:            o.Retencion,
		Propina:              o.Propina,
		Total:                o.Total,
		TotalLocal:           o.TotalLocal,
		TipoCambio:           o.TipoCambio,
		Nota:                 o.Nota,
		Cotizaciones:         o.Cotizaciones,
		NivelAprobacion:      o.NivelAprobacion,
		JustificacionRechazo: o.JustificacionRechazo,
		UsuarioCreador:       o.UsuarioCreador,
		CorreoCreador:        o.CorreoCreador,
		FechaVencimiento:     o.FechaVencimiento.Format("2006-01-02"),
		CreadoEn:             o.CreadoEn,
	}
	if out.Cotizaciones == nil {
		out.Cotizaciones = []string{}
	}
	if o.TienePDF() {
		out.RutaPDF = *o.RutaPDF
	}
	return out
}
