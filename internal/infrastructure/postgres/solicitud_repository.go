package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.SolicitudRepository = (*SolicitudRepo)(nil)

// SolicitudRepo implementación de SolicitudRepository (usable con pool o tx).
// Toda escritura de lease es un UPDATE condicionado al lease leído.
type SolicitudRepo struct {
	q Querier
}

// NewSolicitudRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSolicitudRepository(q Querier) *SolicitudRepo {
	return &SolicitudRepo{q: q}
}

const columnasSolicitud = `
	id, asunto, descripcion, usuario_solicitante, correo_solicitante, adjuntos,
	estado, leased_at, leased_by, eliminado, justificacion_eliminacion, created_at, updated_at`

// Create inserta la solicitud y asigna su ID.
func (r *SolicitudRepo) Create(ctx context.Context, s *entity.Solicitud) error {
	query := `
		INSERT INTO solicitudes (asunto, descripcion, usuario_solicitante, correo_solicitante, adjuntos,
		                         estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.Asunto, s.Descripcion, s.UsuarioSolicitante, nullIfEmpty(s.CorreoSolicitante), adjuntosNoNulos(s.Adjuntos),
		s.Estado, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert solicitud: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *SolicitudRepo) GetByID(ctx context.Context, id int64) (*entity.Solicitud, error) {
	return r.get(ctx, `SELECT `+columnasSolicitud+` FROM solicitudes WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *SolicitudRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Solicitud, error) {
	return r.get(ctx, `SELECT `+columnasSolicitud+` FROM solicitudes WHERE id = $1 FOR UPDATE`, id)
}

func (r *SolicitudRepo) get(ctx context.Context, query string, id int64) (*entity.Solicitud, error) {
	s, err := scanSolicitud(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get solicitud: %w", err)
	}
	return s, nil
}

// List devuelve una página de solicitudes y el total que cumple el filtro.
func (r *SolicitudRepo) List(ctx context.Context, f repository.FiltroSolicitudes) ([]*entity.Solicitud, int, error) {
	where := `WHERE ($1 = '' AND NOT eliminado) OR estado = $1`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM solicitudes `+where, string(f.Estado)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count solicitudes: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+columnasSolicitud+` FROM solicitudes `+where+` ORDER BY id DESC LIMIT $2 OFFSET $3`,
		string(f.Estado), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list solicitudes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Solicitud
	for rows.Next() {
		s, err := scanSolicitud(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan solicitud: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// UpdateContenido sólo escribe si titular sigue teniendo el lease de edición.
func (r *SolicitudRepo) UpdateContenido(ctx context.Context, s *entity.Solicitud, titular string) (bool, error) {
	query := `
		UPDATE solicitudes
		SET asunto = $2, descripcion = $3, adjuntos = $4, updated_at = $5
		WHERE id = $1 AND estado = 'editando' AND leased_by = $6`
	tag, err := r.q.Exec(ctx, query, s.ID, s.Asunto, s.Descripcion, adjuntosNoNulos(s.Adjuntos), s.UpdatedAt, titular)
	if err != nil {
		return false, fmt.Errorf("update solicitud: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompareAndSwapLease escribe nuevo sólo si el lease almacenado coincide con esperado.
func (r *SolicitudRepo) CompareAndSwapLease(ctx context.Context, id int64, esperado, nuevo entity.Lease) (bool, error) {
	query := `
		UPDATE solicitudes
		SET estado = $5, leased_at = $6, leased_by = $7, updated_at = now()
		WHERE id = $1
		  AND estado = $2
		  AND leased_at IS NOT DISTINCT FROM $3::timestamptz
		  AND leased_by IS NOT DISTINCT FROM $4::text`
	tag, err := r.q.Exec(ctx, query,
		id, esperado.Estado, esperado.LeasedAt, nullIfEmpty(esperado.LeasedBy),
		nuevo.Estado, nuevo.LeasedAt, nullIfEmpty(nuevo.LeasedBy),
	)
	if err != nil {
		return false, fmt.Errorf("cas lease: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ForzarLease escribe nuevo salvo que la solicitud ya sea terminal.
func (r *SolicitudRepo) ForzarLease(ctx context.Context, id int64, nuevo entity.Lease) (bool, error) {
	query := `
		UPDATE solicitudes
		SET estado = $2, leased_at = $3, leased_by = $4, updated_at = now()
		WHERE id = $1 AND estado NOT IN ('ordenada', 'eliminada')`
	tag, err := r.q.Exec(ctx, query, id, nuevo.Estado, nuevo.LeasedAt, nullIfEmpty(nuevo.LeasedBy))
	if err != nil {
		return false, fmt.Errorf("forzar lease: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Eliminar marca la solicitud como eliminada si el lease sigue siendo esperado.
func (r *SolicitudRepo) Eliminar(ctx context.Context, id int64, esperado entity.Lease, justificacion string) (bool, error) {
	query := `
		UPDATE solicitudes
		SET estado = 'eliminada', leased_at = NULL, leased_by = NULL,
		    eliminado = TRUE, justificacion_eliminacion = $5, updated_at = now()
		WHERE id = $1
		  AND estado = $2
		  AND estado NOT IN ('ordenada', 'eliminada')
		  AND leased_at IS NOT DISTINCT FROM $3::timestamptz
		  AND leased_by IS NOT DISTINCT FROM $4::text`
	tag, err := r.q.Exec(ctx, query, id, esperado.Estado, esperado.LeasedAt, nullIfEmpty(esperado.LeasedBy), justificacion)
	if err != nil {
		return false, fmt.Errorf("eliminar solicitud: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanSolicitud(row pgx.Row) (*entity.Solicitud, error) {
	var s entity.Solicitud
	var correo, leasedBy, justificacion *string
	err := row.Scan(
		&s.ID, &s.Asunto, &s.Descripcion, &s.UsuarioSolicitante, &correo, &s.Adjuntos,
		&s.Estado, &s.LeasedAt, &leasedBy, &s.Eliminado, &justificacion, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CorreoSolicitante = derefStr(correo)
	s.LeasedBy = derefStr(leasedBy)
	s.JustificacionEliminacion = derefStr(justificacion)
	return &s, nil
}

func adjuntosNoNulos(a []entity.Adjunto) []entity.Adjunto {
	if a == nil {
		return []entity.Adjunto{}
	}
	return a
}
