package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.CatalogoRepository = (*CatalogoRepo)(nil)

// tablaCatalogo columnas que exponen cada catálogo como (id, nombre, activo).
type tablaCatalogo struct {
	tabla  string
	nombre string
	activo string
}

var tablasCatalogo = map[entity.Catalogo]tablaCatalogo{
	entity.CatalogoProveedores:  {"proveedores", "nombre", "activo AND NOT eliminado"},
	entity.CatalogoBancos:       {"bancos", "nombre", "activo"},
	entity.CatalogoPlazosPago:   {"plazos_pago", "descripcion", "activo"},
	entity.CatalogoEmpresas:     {"empresas", "nombre", "activo"},
	entity.CatalogoCentrosCosto: {"centros_costo", "nombre", "activo"},
	entity.CatalogoTiposOrden:   {"tipos_orden", "nombre", "activo"},
	entity.CatalogoMonedas:      {"monedas", "codigo || ' - ' || nombre", "activa"},
	entity.CatalogoCuentas:      {"cuentas", "nombre", "activo"},
	entity.CatalogoCategorias:   {"categorias", "nombre", "activo"},
	entity.CatalogoProductos:    {"productos", "nombre", "activo"},
}

// CatalogoRepo acceso a las tablas de referencia (usable con pool o tx).
type CatalogoRepo struct {
	q Querier
}

// NewCatalogoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogoRepository(q Querier) *CatalogoRepo {
	return &CatalogoRepo{q: q}
}

func (r *CatalogoRepo) sqlItems(cat entity.Catalogo) (string, error) {
	t, ok := tablasCatalogo[cat]
	if !ok {
		return "", fmt.Errorf("catálogo desconocido: %s", cat)
	}
	return fmt.Sprintf(`SELECT id, %s, (%s) FROM %s`, t.nombre, t.activo, t.tabla), nil
}

// Listar devuelve todas las filas del catálogo ordenadas por nombre, activas o no.
func (r *CatalogoRepo) Listar(ctx context.Context, cat entity.Catalogo) ([]entity.ItemCatalogo, error) {
	base, err := r.sqlItems(cat)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, base+` ORDER BY 2, id`)
	if err != nil {
		return nil, fmt.Errorf("listar %s: %w", cat, err)
	}
	defer rows.Close()
	var items []entity.ItemCatalogo
	for rows.Next() {
		var it entity.ItemCatalogo
		if err := rows.Scan(&it.ID, &it.Nombre, &it.Activo); err != nil {
			return nil, fmt.Errorf("scan %s: %w", cat, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ObtenerItem devuelve (nil, nil) si no existe.
func (r *CatalogoRepo) ObtenerItem(ctx context.Context, cat entity.Catalogo, id int64) (*entity.ItemCatalogo, error) {
	base, err := r.sqlItems(cat)
	if err != nil {
		return nil, err
	}
	var it entity.ItemCatalogo
	err = r.q.QueryRow(ctx, base+` WHERE id = $1`, id).Scan(&it.ID, &it.Nombre, &it.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("obtener %s: %w", cat, err)
	}
	return &it, nil
}

// CrearItem inserta la fila; las tablas administrables tienen columnas nombre y activo.
func (r *CatalogoRepo) CrearItem(ctx context.Context, cat entity.Catalogo, item *entity.ItemCatalogo) error {
	t, err := tablaAdministrable(cat)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (nombre, activo) VALUES ($1, $2) RETURNING id`, t.tabla)
	if err := r.q.QueryRow(ctx, query, item.Nombre, item.Activo).Scan(&item.ID); err != nil {
		return fmt.Errorf("crear %s: %w", cat, err)
	}
	return nil
}

// ActualizarItem devuelve false si la fila no existe.
func (r *CatalogoRepo) ActualizarItem(ctx context.Context, cat entity.Catalogo, item entity.ItemCatalogo) (bool, error) {
	t, err := tablaAdministrable(cat)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`UPDATE %s SET nombre = $2, activo = $3 WHERE id = $1`, t.tabla)
	tag, err := r.q.Exec(ctx, query, item.ID, item.Nombre, item.Activo)
	if err != nil {
		return false, fmt.Errorf("actualizar %s: %w", cat, err)
	}
	return tag.RowsAffected() == 1, nil
}

func tablaAdministrable(cat entity.Catalogo) (tablaCatalogo, error) {
	t, ok := tablasCatalogo[cat]
	if !ok || !cat.Administrable() {
		return tablaCatalogo{}, fmt.Errorf("catálogo no administrable: %s", cat)
	}
	return t, nil
}

// GetPlazoPago devuelve (nil, nil) si no existe.
func (r *CatalogoRepo) GetPlazoPago(ctx context.Context, id int64) (*entity.PlazoPago, error) {
	var p entity.PlazoPago
	err := r.q.QueryRow(ctx, `SELECT id, descripcion, dias, activo FROM plazos_pago WHERE id = $1`, id).
		Scan(&p.ID, &p.Descripcion, &p.Dias, &p.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plazo pago: %w", err)
	}
	return &p, nil
}

const columnasMoneda = `id, codigo, nombre, simbolo, decimales, es_local, tipo_cambio, activa`

// GetMoneda devuelve (nil, nil) si no existe.
func (r *CatalogoRepo) GetMoneda(ctx context.Context, id int64) (*entity.Moneda, error) {
	return r.moneda(ctx, `SELECT `+columnasMoneda+` FROM monedas WHERE id = $1`, id)
}

// GetMonedaLocal devuelve la moneda marcada como local, o (nil, nil) si no hay.
func (r *CatalogoRepo) GetMonedaLocal(ctx context.Context) (*entity.Moneda, error) {
	return r.moneda(ctx, `SELECT `+columnasMoneda+` FROM monedas WHERE es_local LIMIT 1`)
}

func (r *CatalogoRepo) moneda(ctx context.Context, query string, args ...any) (*entity.Moneda, error) {
	var m entity.Moneda
	err := r.q.QueryRow(ctx, query, args...).
		Scan(&m.ID, &m.Codigo, &m.Nombre, &m.Simbolo, &m.Decimales, &m.EsLocal, &m.TipoCambio, &m.Activa)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get moneda: %w", err)
	}
	return &m, nil
}
