package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterializarRequest body para POST /api/ordenes/solicitud/:id.
// Los IDs de referencia se validan contra los catálogos dentro de la transacción.
type MaterializarRequest struct {
	ProveedorID   int64              `json:"proveedor_id" validate:"required,gt=0"`
	BancoID       int64              `json:"banco_id" validate:"required,gt=0"`
	PlazoPagoID   int64              `json:"plazo_pago_id" validate:"required,gt=0"`
	EmpresaID     int64              `json:"empresa_id" validate:"required,gt=0"`
	CentroCostoID int64              `json:"centro_costo_id" validate:"required,gt=0"`
	TipoOrdenID   int64              `json:"tipo_orden_id" validate:"required,gt=0"`
	MonedaID      int64              `json:"moneda_id" validate:"required,gt=0"`
	CuentaID      int64              `json:"cuenta_id" validate:"required,gt=0"`
	Nota          string             `json:"nota" validate:"max=2000"`
	Cotizaciones  []string           `json:"cotizaciones" validate:"dive,url"`
	Items         []ItemOrdenRequest `json:"items"`
}

// ItemOrdenRequest línea de la orden.
type ItemOrdenRequest struct {
	ProductoID     int64           `json:"producto_id"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int64           `json:"cantidad"`
}

// OrdenCreadaResponse respuesta de la materialización.
type OrdenCreadaResponse struct {
	ID          int64           `json:"id"`
	Codigo      string          `json:"codigo"`
	SolicitudID int64           `json:"solicitud_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Impuesto    decimal.Decimal `json:"impuesto"`
	Retencion   decimal.Decimal `json:"retencion"`
	Propina     decimal.Decimal `json:"propina"`
	Total       decimal.Decimal `json:"total"`
	TotalLocal  decimal.Decimal `json:"total_local"`
}

// OrdenResponse orden con detalle para GET /api/ordenes/:id.
type OrdenResponse struct {
	ID                   int64                  `json:"id"`
	Codigo               string                 `json:"codigo"`
	SolicitudID          int64                  `json:"solicitud_id"`
	ProveedorID          int64                  `json:"proveedor_id"`
	BancoID              int64                  `json:"banco_id"`
	MonedaID             int64                  `json:"moneda_id"`
	EmpresaID            int64                  `json:"empresa_id"`
	CentroCostoID        int64                  `json:"centro_costo_id"`
	PlazoPagoID          int64                  `json:"plazo_pago_id"`
	TipoOrdenID          int64                  `json:"tipo_orden_id"`
	CuentaID             int64                  `json:"cuenta_id"`
	Subtotal             decimal.Decimal        `json:"subtotal"`
	Impuesto             decimal.Decimal        `json:"impuesto"`
	Retencion            decimal.Decimal        `json:"retencion"`
	Propina              decimal.Decimal        `json:"propina"`
	Total                decimal.Decimal        `json:"total"`
	TotalLocal           decimal.Decimal        `json:"total_local"`
	TipoCambio           decimal.Decimal        `json:"tipo_cambio"`
	Nota                 string                 `json:"nota,omitempty"`
	Cotizaciones         []string               `json:"cotizaciones"`
	RutaPDF              string                 `json:"ruta_pdf,omitempty"`
	NivelAprobacion      int                    `json:"nivel_aprobacion"`
	JustificacionRechazo string                 `json:"justificacion_rechazo,omitempty"`
	UsuarioCreador       string                 `json:"usuario_creador"`
	CorreoCreador        string                 `json:"correo_creador,omitempty"`
	FechaVencimiento     string                 `json:"fecha_vencimiento"`
	CreadoEn             time.Time              `json:"creado_en"`
	Detalles             []DetalleOrdenResponse `json:"detalles,omitempty"`
}

// DetalleOrdenResponse línea de detalle en la respuesta.
type DetalleOrdenResponse struct {
	ID                 int64           `json:"id"`
	ProductoID         int64           `json:"producto_id"`
	PrecioUnitario     decimal.Decimal `json:"precio_unitario"`
	Cantidad           int64           `json:"cantidad"`
	Total              decimal.Decimal `json:"total"`
	CantidadPorRecibir int64           `json:"cantidad_por_recibir"`
}

// ListarOrdenesRequest query de GET /api/ordenes.
type ListarOrdenesRequest struct {
	PageRequest
	SolicitudID int64 `query:"solicitud_id" validate:"min=0"`
	ProveedorID int64 `query:"proveedor_id" validate:"min=0"`
}

// ListaOrdenesResponse respuesta de GET /api/ordenes.
type ListaOrdenesResponse struct {
	Items []OrdenResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// InconsistenciaResponse solicitud con orden confirmada que no quedó ordenada.
type InconsistenciaResponse struct {
	SolicitudID int64     `json:"solicitud_id"`
	Estado      string    `json:"estado"`
	OrdenID     int64     `json:"orden_id"`
	Codigo      string    `json:"codigo"`
	CreadoEn    time.Time `json:"creado_en"`
}

// RechazarOrdenRequest body para POST /api/ordenes/:id/rechazar.
type RechazarOrdenRequest struct {
	Justificacion string `json:"justificacion" validate:"required,max=1000"`
}

// NotaOrdenRequest body para PUT /api/ordenes/:id/nota.
type NotaOrdenRequest struct {
	Nota string `json:"nota" validate:"max=2000"`
}

// EliminarOrdenRequest body para DELETE /api/ordenes/:id.
type EliminarOrdenRequest struct {
	Justificacion string `json:"justificacion" validate:"required,max=1000"`
}

// PDFResponse resultado de POST /api/ordenes/:id/pdf.
type PDFResponse struct {
	OrdenID int64  `json:"orden_id"`
	RutaPDF string `json:"ruta_pdf"`
}
