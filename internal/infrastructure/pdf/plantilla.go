// Package pdf genera la representación gráfica de las órdenes de compra.
// ChromedpGenerator imprime la plantilla HTML con Chrome; MarotoGenerator dibuja el mismo
// contenido sin navegador.
package pdf

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
)

// Textos fijos del documento.
const (
	TituloDocumento = "Orden de Compra N° "
	LeyendaPie      = "Este documento no es una factura. Se emite con fines de registro."
)

//go:embed plantillas/orden.html
var plantillasFS embed.FS

var plantillaOrden = template.Must(template.ParseFS(plantillasFS, "plantillas/orden.html"))

// texto libre (asunto, nota, nombres de catálogo): sin marcado.
var politicaTexto = bluemonday.StrictPolicy()

var impresora = message.NewPrinter(language.MustParse("es-CL"))

// vistaOrden datos ya formateados que consume la plantilla.
type vistaOrden struct {
	Codigo      string
	Empresa     string
	Fecha       string
	Vencimiento string
	Proveedor   string
	TipoOrden   string
	Banco       string
	Cuenta      string
	CentroCosto string
	Plazo       string
	Moneda      string
	Creador     string
	Asunto      string
	Lineas      []vistaLinea
	Subtotal    string
	Impuesto    string
	Retencion   string
	Propina     string
	Total       string
	TotalLocal  string // vacío si la orden ya está en moneda local
	Nota        string
}

type vistaLinea struct {
	Producto string
	Cantidad string
	Precio   string
	Total    string
}

// RenderHTML arma el HTML completo de la orden.
func RenderHTML(doc *ordenes.DocumentoOrden) (string, error) {
	var buf bytes.Buffer
	if err := plantillaOrden.Execute(&buf, armarVista(doc)); err != nil {
		return "", fmt.Errorf("plantilla orden: %w", err)
	}
	return buf.String(), nil
}

func armarVista(doc *ordenes.DocumentoOrden) vistaOrden {
	o := doc.Orden
	dec := doc.Moneda.Decimales
	simbolo := doc.Moneda.Simbolo
	v := vistaOrden{
		Codigo:      o.Codigo,
		Empresa:     limpiar(doc.Empresa),
		Fecha:       o.CreadoEn.Format("02/01/2006"),
		Vencimiento: o.FechaVencimiento.Format("02/01/2006"),
		Proveedor:   limpiar(doc.Proveedor),
		TipoOrden:   limpiar(doc.TipoOrden),
		Banco:       limpiar(doc.Banco),
		Cuenta:      limpiar(doc.Cuenta),
		CentroCosto: limpiar(doc.CentroCosto),
		Plazo:       descripcionPlazo(doc),
		Moneda:      limpiar(doc.Moneda.Codigo),
		Creador:     limpiar(o.UsuarioCreador),
		Asunto:      limpiar(doc.Asunto),
		Subtotal:    FormatearMonto(o.Subtotal, dec, simbolo),
		Impuesto:    FormatearMonto(o.Impuesto, dec, simbolo),
		Retencion:   FormatearMonto(o.Retencion, dec, simbolo),
		Propina:     FormatearMonto(o.Propina, dec, simbolo),
		Total:       FormatearMonto(o.Total, dec, simbolo),
		Nota:        limpiar(o.Nota),
	}
	if !doc.Moneda.EsLocal {
		v.TotalLocal = FormatearMonto(o.TotalLocal, 0, "")
	}
	for _, d := range doc.Detalles {
		v.Lineas = append(v.Lineas, vistaLinea{
			Producto: limpiar(d.ProductoNombre),
			Cantidad: impresora.Sprint(d.Cantidad),
			Precio:   FormatearMonto(d.PrecioUnitario, dec, simbolo),
			Total:    FormatearMonto(d.Total, dec, simbolo),
		})
	}
	return v
}

// FormatearMonto formatea con separadores es-CL ("1.160", "12,35") y el símbolo de la moneda.
func FormatearMonto(v decimal.Decimal, decimales int32, simbolo string) string {
	v = v.Round(decimales)
	var s string
	if v.Abs().LessThan(decimal.New(1, 15)) {
		f, _ := v.Float64()
		s = impresora.Sprint(number.Decimal(f, number.Scale(int(decimales))))
	} else {
		// fuera del rango exacto de float64: sin separadores
		s = strings.Replace(v.StringFixed(decimales), ".", ",", 1)
	}
	if simbolo == "" {
		return s
	}
	return simbolo + " " + s
}

func descripcionPlazo(doc *ordenes.DocumentoOrden) string {
	if doc.Plazo == nil {
		return "#" + strconv.FormatInt(doc.Orden.PlazoPagoID, 10)
	}
	return limpiar(doc.Plazo.Descripcion)
}

// limpiar quita el marcado; el escape lo hace html/template.
func limpiar(s string) string {
	return strings.TrimSpace(html.UnescapeString(politicaTexto.Sanitize(s)))
}

// encabezadoHTML y pieHTML son las plantillas de Chrome para cada página.
func encabezadoHTML(codigo string) string {
	return `<div style="font-size:8px;width:100%;padding:0 10mm;color:#646464;">` +
		template.HTMLEscapeString(TituloDocumento+codigo) + `</div>`
}

func pieHTML() string {
	return `<div style="font-size:7px;width:100%;padding:0 10mm;color:#646464;display:flex;justify-content:space-between;">` +
		`<span>` + template.HTMLEscapeString(LeyendaPie) + `</span>` +
		`<span>Página <span class="pageNumber"></span> de <span class="totalPages"></span></span></div>`
}
