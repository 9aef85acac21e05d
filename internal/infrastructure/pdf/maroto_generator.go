package pdf

// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + tipo de orden  │  N° Orden + Fechas       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Proveedor / Banco / Cuenta / Centro / Plazo          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuesto / Retención / Propina / TOTAL  │
//	│  NOTA                                                        │
//	│  PIE: leyenda + N° de página                                 │
//	└─────────────────────────────────────────────────────────────┘

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
)

var _ ordenes.GeneradorPDF = (*MarotoGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoGenerator dibuja la orden con Maroto v2, sin navegador.
type MarotoGenerator struct{}

// NewMarotoGenerator construye el generador.
func NewMarotoGenerator() *MarotoGenerator { return &MarotoGenerator{} }

// GenerarOrdenPDF genera el PDF y devuelve sus bytes.
func (g *MarotoGenerator) GenerarOrdenPDF(_ context.Context, doc *ordenes.DocumentoOrden) ([]byte, error) {
	v := armarVista(doc)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(TituloDocumento+v.Codigo, true).
		WithAuthor(v.Empresa, true).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   colorGray,
		}).
		Build()

	m := maroto.New(cfg)
	if err := m.RegisterFooter(pieRow()); err != nil {
		return nil, fmt.Errorf("pdf: pie: %w", err)
	}

	m.AddRows(headerRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(datosRows(v)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(v.Lineas)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(v))
	if v.Nota != "" {
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New("Nota: "+v.Nota, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return pdf.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa y tipo de orden (izq), código y fechas (der).
func headerRow(v vistaOrden) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(nonEmpty(v.Empresa, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(v.TipoOrden, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+v.Codigo, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Emitida: "+v.Fecha+"   Vence: "+v.Vencimiento, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// datosRows: pares etiqueta/valor de la cabecera.
func datosRows(v vistaOrden) []core.Row {
	par := func(etiqueta, valor string) core.Col {
		return col.New(6).Add(
			text.New(etiqueta, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(valor, "—"), props.Text{Size: 8, Top: 1, Left: 28}),
		)
	}
	rows := []core.Row{
		row.New(6).Add(par("Proveedor", v.Proveedor), par("Moneda", v.Moneda)),
		row.New(6).Add(par("Banco", v.Banco), par("Cuenta", v.Cuenta)),
		row.New(6).Add(par("Centro de costo", v.CentroCosto), par("Plazo de pago", v.Plazo)),
		row.New(6).Add(par("Solicitado por", v.Creador), col.New(6)),
	}
	if v.Asunto != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Solicitud: "+v.Asunto, props.Text{Size: 8, Top: 1, Color: colorGray}),
		)))
	}
	return rows
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea de detalle.
func tableDetailRows(lineas []vistaLinea) []core.Row {
	result := make([]core.Row, 0, len(lineas))
	for _, l := range lineas {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(l.Cantidad, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(l.Producto, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(l.Precio, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(l.Total, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(v vistaOrden) core.Row {
	etiquetas := []string{"Subtotal:", "Impuesto:", "Retención:", "Propina:"}
	valores := []string{v.Subtotal, v.Impuesto, "-" + v.Retencion, v.Propina}
	if v.TotalLocal != "" {
		etiquetas = append(etiquetas, "Total moneda local:")
		valores = append(valores, v.TotalLocal)
	}

	izq := col.New(3)
	der := col.New(3)
	top := 0.0
	for i := range etiquetas {
		izq.Add(text.New(etiquetas[i], props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}))
		der.Add(text.New(valores[i], props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}))
		top += 5
	}
	izq.Add(text.New("TOTAL:", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: top,
	}))
	der.Add(text.New(v.Total, props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top,
	}))

	return row.New(top+8).Add(col.New(6), izq, der)
}

// pieRow: leyenda en todas las páginas.
func pieRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(LeyendaPie, props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
