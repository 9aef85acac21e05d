package ordenes

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// OrdenTxRunner ejecuta fn dentro de una transacción con repos atados a ella.
// Si fn devuelve error no queda ninguna escritura.
type OrdenTxRunner interface {
	RunOrden(ctx context.Context, fn func(
		solicitudRepo repository.SolicitudRepository,
		ordenRepo repository.OrdenRepository,
		catalogoRepo repository.CatalogoRepository,
		reglaRepo repository.ReglaTarifaRepository,
	) error) error
}

// GeneradorPDF renderiza la representación gráfica de una orden.
type GeneradorPDF interface {
	GenerarOrdenPDF(ctx context.Context, doc *DocumentoOrden) ([]byte, error)
}

// DespachadorPDF dispara la generación del PDF fuera del ciclo de la petición.
type DespachadorPDF interface {
	ProcessAsync(ordenID int64)
}

// DocumentoOrden datos ya resueltos que necesita el generador de PDF.
type DocumentoOrden struct {
	Orden       *entity.Orden
	Detalles    []DetalleDocumento
	Asunto      string // asunto de la solicitud de origen
	Proveedor   string
	Empresa     string
	Banco       string
	CentroCosto string
	TipoOrden   string
	Cuenta      string
	Moneda      *entity.Moneda
	Plazo       *entity.PlazoPago
}

// DetalleDocumento línea de detalle enriquecida con el nombre del producto.
type DetalleDocumento struct {
	entity.DetalleOrden
	ProductoNombre string
}
