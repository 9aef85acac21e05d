package repository

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// CatalogoRepository acceso a las tablas de referencia.
// Los métodos Get* devuelven (nil, nil) si el registro no existe.
type CatalogoRepository interface {
	// CrearItem inserta (nombre, activo) en un catálogo administrable y asigna item.ID.
	CrearItem(ctx context.Context, cat entity.Catalogo, item *entity.ItemCatalogo) error
	// ActualizarItem reescribe nombre y activo; false si la fila no existe.
	ActualizarItem(ctx context.Context, cat entity.Catalogo, item entity.ItemCatalogo) (bool, error)
	Listar(ctx context.Context, cat entity.Catalogo) ([]entity.ItemCatalogo, error)
	ObtenerItem(ctx context.Context, cat entity.Catalogo, id int64) (*entity.ItemCatalogo, error)
	GetPlazoPago(ctx context.Context, id int64) (*entity.PlazoPago, error)
	GetMoneda(ctx context.Context, id int64) (*entity.Moneda, error)
	GetMonedaLocal(ctx context.Context) (*entity.Moneda, error)
}

// ReglaTarifaRepository reglas de tarifa por tipo de orden.
type ReglaTarifaRepository interface {
	ListByTipoOrden(ctx context.Context, tipoOrdenID int64) ([]entity.ReglaTarifa, error)
}
