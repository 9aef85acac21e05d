package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ordenes-api/internal/domain/compras"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.ReglaTarifaRepository = (*ReglaTarifaRepo)(nil)

// ReglaTarifaRepo reglas de tarifa por tipo de orden (usable con pool o tx).
type ReglaTarifaRepo struct {
	q Querier
}

// NewReglaTarifaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReglaTarifaRepository(q Querier) *ReglaTarifaRepo {
	return &ReglaTarifaRepo{q: q}
}

// ListByTipoOrden devuelve las reglas del tipo con el nombre ya resuelto a TipoRegla.
func (r *ReglaTarifaRepo) ListByTipoOrden(ctx context.Context, tipoOrdenID int64) ([]entity.ReglaTarifa, error) {
	query := `
		SELECT id, tipo_orden_id, nombre, clase, magnitud, activa
		FROM reglas_tarifa WHERE tipo_orden_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, tipoOrdenID)
	if err != nil {
		return nil, fmt.Errorf("list reglas tarifa: %w", err)
	}
	defer rows.Close()
	var list []entity.ReglaTarifa
	for rows.Next() {
		var rt entity.ReglaTarifa
		if err := rows.Scan(&rt.ID, &rt.TipoOrdenID, &rt.NombreOriginal, &rt.Clase, &rt.Magnitud, &rt.Activa); err != nil {
			return nil, fmt.Errorf("scan regla tarifa: %w", err)
		}
		rt.Nombre = compras.ParsearTipoRegla(rt.NombreOriginal)
		list = append(list, rt)
	}
	return list, rows.Err()
}
