package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Niveles de aprobación: toda orden nace en el pendiente y cada aprobación sube uno hasta el final.
const (
	NivelAprobacionPendiente = 1
	NivelAprobacionFinal     = 3
)

// Orden representa la cabecera de una orden de compra.
// Codigo se asigna en la misma transacción del insert, una vez conocido el ID.
type Orden struct {
	ID              int64
	Codigo          string
	SolicitudID     int64
	ProveedorID     int64
	BancoID         int64
	MonedaID        int64
	EmpresaID       int64
	CentroCostoID   int64
	PlazoPagoID     int64
	TipoOrdenID     int64
	CuentaID        int64
	Subtotal        decimal.Decimal
	Impuesto        decimal.Decimal
	Retencion       decimal.Decimal
	Propina         decimal.Decimal
	Total           decimal.Decimal
	TotalLocal      decimal.Decimal
	TipoCambio      decimal.Decimal // tasa usada para TotalLocal
	Nota            string
	Cotizaciones    []string // URLs de cotizaciones adjuntas
	RutaPDF         *string  // nil hasta que el pipeline de PDF termina
	PDFIntentos     int
	PDFUltimoError  string
	NivelAprobacion int
	// JustificacionRechazo no vacía marca la orden como rechazada; ya no admite aprobaciones.
	JustificacionRechazo     string
	Eliminada                bool
	JustificacionEliminacion string
	UsuarioCreador           string // nombre para mostrar
	CreadoPor                string // ID de la cuenta que materializó la orden
	CorreoCreador            string
	FechaVencimiento         time.Time
	CreadoEn                 time.Time
	UpdatedAt                time.Time
}

// TienePDF indica si la orden ya tiene su representación gráfica almacenada.
func (o *Orden) TienePDF() bool {
	return o.RutaPDF != nil && *o.RutaPDF != ""
}

// Rechazada indica si la orden fue rechazada en la revisión.
func (o *Orden) Rechazada() bool {
	return o.JustificacionRechazo != ""
}

// AprobacionFinal indica si la orden ya alcanzó el último nivel de aprobación.
func (o *Orden) AprobacionFinal() bool {
	return o.NivelAprobacion >= NivelAprobacionFinal
}

// DetalleOrden línea de la orden.
type DetalleOrden struct {
	ID                 int64
	OrdenID            int64
	SolicitudID        int64
	ProductoID         int64
	PrecioUnitario     decimal.Decimal
	Cantidad           int64
	Total              decimal.Decimal // PrecioUnitario × Cantidad
	CantidadPorRecibir int64
}

// Inconsistencia solicitud con orden confirmada que no quedó en estado ordenada.
type Inconsistencia struct {
	SolicitudID int64
	Estado      EstadoSolicitud
	OrdenID     int64
	Codigo      string
	CreadoEn    time.Time
}
