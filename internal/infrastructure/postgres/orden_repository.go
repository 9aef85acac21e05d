package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.OrdenRepository = (*OrdenRepo)(nil)

// OrdenRepo implementación de OrdenRepository (usable con pool o tx).
type OrdenRepo struct {
	q Querier
}

// NewOrdenRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrdenRepository(q Querier) *OrdenRepo {
	return &OrdenRepo{q: q}
}

const columnasOrden = `
	id, COALESCE(codigo, ''), solicitud_id, proveedor_id, banco_id, moneda_id, empresa_id,
	centro_costo_id, plazo_pago_id, tipo_orden_id, cuenta_id,
	subtotal, impuesto, retencion, propina, total, total_local, tipo_cambio,
	nota, cotizaciones, ruta_pdf, pdf_intentos, COALESCE(pdf_ultimo_error, ''), nivel_aprobacion,
	COALESCE(justificacion_rechazo, ''), eliminada, COALESCE(justificacion_eliminacion, ''),
	usuario_creador, COALESCE(creado_por, ''), COALESCE(correo_creador, ''), fecha_vencimiento, created_at, updated_at`

// Create inserta la cabecera y asigna orden.ID. Una segunda orden para la misma solicitud
// viola uq_ordenes_solicitud y se devuelve como domain.ErrConflict.
func (r *OrdenRepo) Create(ctx context.Context, o *entity.Orden) error {
	query := `
		INSERT INTO ordenes (
			solicitud_id, proveedor_id, banco_id, moneda_id, empresa_id, centro_costo_id,
			plazo_pago_id, tipo_orden_id, cuenta_id,
			subtotal, impuesto, retencion, propina, total, total_local, tipo_cambio,
			nota, cotizaciones, nivel_aprobacion, usuario_creador, correo_creador,
			fecha_vencimiento, created_at, updated_at, creado_por
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		          $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id`
	cotizaciones := o.Cotizaciones
	if cotizaciones == nil {
		cotizaciones = []string{}
	}
	err := r.q.QueryRow(ctx, query,
		o.SolicitudID, o.ProveedorID, o.BancoID, o.MonedaID, o.EmpresaID, o.CentroCostoID,
		o.PlazoPagoID, o.TipoOrdenID, o.CuentaID,
		o.Subtotal, o.Impuesto, o.Retencion, o.Propina, o.Total, o.TotalLocal, o.TipoCambio,
		o.Nota, cotizaciones, o.NivelAprobacion, o.UsuarioCreador, nullIfEmpty(o.CorreoCreador),
		o.FechaVencimiento, o.CreadoEn, o.UpdatedAt, nullIfEmpty(o.CreadoPor),
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la solicitud %d ya tiene orden", domain.ErrConflict, o.SolicitudID)
		}
		return fmt.Errorf("insert orden: %w", err)
	}
	return nil
}

// SetCodigo asigna el código derivado del ID.
func (r *OrdenRepo) SetCodigo(ctx context.Context, id int64, codigo string) error {
	tag, err := r.q.Exec(ctx, `UPDATE ordenes SET codigo = $2 WHERE id = $1`, id, codigo)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %s duplicado", domain.ErrConflict, codigo)
		}
		return fmt.Errorf("set codigo: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("set codigo: orden %d no encontrada", id)
	}
	return nil
}

// CreateDetalle inserta una línea de la orden.
func (r *OrdenRepo) CreateDetalle(ctx context.Context, d *entity.DetalleOrden) error {
	query := `
		INSERT INTO detalles_orden (orden_id, solicitud_id, producto_id, precio_unitario, cantidad, total, cantidad_por_recibir)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		d.OrdenID, d.SolicitudID, d.ProductoID, d.PrecioUnitario, d.Cantidad, d.Total, d.CantidadPorRecibir,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("insert detalle orden: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *OrdenRepo) GetByID(ctx context.Context, id int64) (*entity.Orden, error) {
	o, err := scanOrden(r.q.QueryRow(ctx, `SELECT `+columnasOrden+` FROM ordenes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get orden: %w", err)
	}
	return o, nil
}

// GetDetalles devuelve las líneas de la orden en orden de inserción.
func (r *OrdenRepo) GetDetalles(ctx context.Context, ordenID int64) ([]*entity.DetalleOrden, error) {
	query := `
		SELECT id, orden_id, solicitud_id, producto_id, precio_unitario, cantidad, total, cantidad_por_recibir
		FROM detalles_orden WHERE orden_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, ordenID)
	if err != nil {
		return nil, fmt.Errorf("get detalles orden: %w", err)
	}
	defer rows.Close()
	var list []*entity.DetalleOrden
	for rows.Next() {
		var d entity.DetalleOrden
		if err := rows.Scan(&d.ID, &d.OrdenID, &d.SolicitudID, &d.ProductoID, &d.PrecioUnitario,
			&d.Cantidad, &d.Total, &d.CantidadPorRecibir); err != nil {
			return nil, fmt.Errorf("scan detalle orden: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// ExistsBySolicitud indica si la solicitud ya tiene orden.
func (r *OrdenRepo) ExistsBySolicitud(ctx context.Context, solicitudID int64) (bool, error) {
	var existe bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ordenes WHERE solicitud_id = $1)`, solicitudID).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("exists orden: %w", err)
	}
	return existe, nil
}

// List devuelve una página de órdenes (más recientes primero) y el total del filtro.
func (r *OrdenRepo) List(ctx context.Context, f repository.FiltroOrdenes) ([]*entity.Orden, int, error) {
	where := `WHERE NOT eliminada AND ($1 = 0 OR solicitud_id = $1) AND ($2 = 0 OR proveedor_id = $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM ordenes `+where, f.SolicitudID, f.ProveedorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ordenes: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+columnasOrden+` FROM ordenes `+where+` ORDER BY id DESC LIMIT $3 OFFSET $4`,
		f.SolicitudID, f.ProveedorID, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list ordenes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Orden
	for rows.Next() {
		o, err := scanOrden(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan orden: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

// UpdatePDF guarda la ruta; sólo escribe si la orden aún no tiene PDF.
func (r *OrdenRepo) UpdatePDF(ctx context.Context, id int64, ruta string) error {
	query := `
		UPDATE ordenes SET ruta_pdf = $2, pdf_ultimo_error = NULL, updated_at = now()
		WHERE id = $1 AND (ruta_pdf IS NULL OR ruta_pdf = $2)`
	if _, err := r.q.Exec(ctx, query, id, ruta); err != nil {
		return fmt.Errorf("update ruta pdf: %w", err)
	}
	return nil
}

// RegistrarFalloPDF incrementa pdf_intentos y guarda el último error.
func (r *OrdenRepo) RegistrarFalloPDF(ctx context.Context, id int64, msg string) error {
	query := `
		UPDATE ordenes SET pdf_intentos = pdf_intentos + 1, pdf_ultimo_error = $2, updated_at = now()
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, id, msg); err != nil {
		return fmt.Errorf("registrar fallo pdf: %w", err)
	}
	return nil
}

// ListPendientesPDF órdenes sin PDF con menos de maxIntentos fallidos, las más antiguas primero.
func (r *OrdenRepo) ListPendientesPDF(ctx context.Context, maxIntentos, limit int) ([]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id FROM ordenes WHERE ruta_pdf IS NULL AND NOT eliminada AND pdf_intentos < $1 ORDER BY id LIMIT $2`,
		maxIntentos, limit)
	if err != nil {
		return nil, fmt.Errorf("list pendientes pdf: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pendiente pdf: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Aprobar sube nivel_aprobacion sólo si nadie lo cambió desde nivelActual.
func (r *OrdenRepo) Aprobar(ctx context.Context, id int64, nivelActual int, at time.Time) (bool, error) {
	query := `
		UPDATE ordenes SET nivel_aprobacion = nivel_aprobacion + 1, updated_at = $3
		WHERE id = $1 AND nivel_aprobacion = $2 AND nivel_aprobacion < $4
		  AND justificacion_rechazo IS NULL AND NOT eliminada`
	return r.execUna(ctx, "aprobar orden", query, id, nivelActual, at, entity.NivelAprobacionFinal)
}

// Rechazar guarda la justificación; una orden se rechaza una sola vez.
func (r *OrdenRepo) Rechazar(ctx context.Context, id int64, justificacion string, at time.Time) (bool, error) {
	query := `
		UPDATE ordenes SET justificacion_rechazo = $2, updated_at = $3
		WHERE id = $1 AND justificacion_rechazo IS NULL AND NOT eliminada`
	return r.execUna(ctx, "rechazar orden", query, id, justificacion, at)
}

// ActualizarNota cambia la nota mientras la orden siga pendiente de aprobación.
func (r *OrdenRepo) ActualizarNota(ctx context.Context, id int64, nota string, at time.Time) (bool, error) {
	query := `
		UPDATE ordenes SET nota = $2, updated_at = $3
		WHERE id = $1 AND nivel_aprobacion = $4 AND justificacion_rechazo IS NULL AND NOT eliminada`
	return r.execUna(ctx, "actualizar nota orden", query, id, nota, at, entity.NivelAprobacionPendiente)
}

// Eliminar marca la orden como eliminada; los detalles quedan para auditoría.
func (r *OrdenRepo) Eliminar(ctx context.Context, id int64, justificacion string, at time.Time) (bool, error) {
	query := `
		UPDATE ordenes SET eliminada = TRUE, justificacion_eliminacion = $2, updated_at = $3
		WHERE id = $1 AND NOT eliminada`
	return r.execUna(ctx, "eliminar orden", query, id, justificacion, at)
}

func (r *OrdenRepo) execUna(ctx context.Context, op, query string, args ...any) (bool, error) {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListInconsistencias solicitudes con orden que no quedaron en estado ordenada.
func (r *OrdenRepo) ListInconsistencias(ctx context.Context) ([]entity.Inconsistencia, error) {
	query := `
		SELECT s.id, s.estado, o.id, COALESCE(o.codigo, ''), o.created_at
		FROM ordenes o
		JOIN solicitudes s ON s.id = o.solicitud_id
		WHERE s.estado <> 'ordenada'
		ORDER BY o.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inconsistencias: %w", err)
	}
	defer rows.Close()
	var list []entity.Inconsistencia
	for rows.Next() {
		var i entity.Inconsistencia
		if err := rows.Scan(&i.SolicitudID, &i.Estado, &i.OrdenID, &i.Codigo, &i.CreadoEn); err != nil {
			return nil, fmt.Errorf("scan inconsistencia: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

func scanOrden(row pgx.Row) (*entity.Orden, error) {
	var o entity.Orden
	err := row.Scan(
		&o.ID, &o.Codigo, &o.SolicitudID, &o.ProveedorID, &o.BancoID, &o.MonedaID, &o.EmpresaID,
		&o.CentroCostoID, &o.PlazoPagoID, &o.TipoOrdenID, &o.CuentaID,
		&o.Subtotal, &o.Impuesto, &o.Retencion, &o.Propina, &o.Total, &o.TotalLocal, &o.TipoCambio,
		&o.Nota, &o.Cotizaciones, &o.RutaPDF, &o.PDFIntentos, &o.PDFUltimoError, &o.NivelAprobacion,
		&o.JustificacionRechazo, &o.Eliminada, &o.JustificacionEliminacion,
		&o.UsuarioCreador, &o.CreadoPor, &o.CorreoCreador, &o.FechaVencimiento, &o.CreadoEn, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
