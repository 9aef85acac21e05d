package entity

import "github.com/shopspring/decimal"

// Catalogo tabla de referencia consultable por los listados.
type Catalogo string

const (
	CatalogoProveedores  Catalogo = "proveedores"
	CatalogoBancos       Catalogo = "bancos"
	CatalogoPlazosPago   Catalogo = "plazos-pago"
	CatalogoEmpresas     Catalogo = "empresas"
	CatalogoCentrosCosto Catalogo = "centros-costo"
	CatalogoTiposOrden   Catalogo = "tipos-orden"
	CatalogoMonedas      Catalogo = "monedas"
	CatalogoCuentas      Catalogo = "cuentas"
	CatalogoCategorias   Catalogo = "categorias"
	CatalogoProductos    Catalogo = "productos"
)

// Catalogos lista de catálogos expuestos.
var Catalogos = []Catalogo{
	CatalogoProveedores, CatalogoBancos, CatalogoPlazosPago, CatalogoEmpresas, CatalogoCentrosCosto,
	CatalogoTiposOrden, CatalogoMonedas, CatalogoCuentas, CatalogoCategorias, CatalogoProductos,
}

// Valido indica si el catálogo existe.
func (c Catalogo) Valido() bool {
	for _, x := range Catalogos {
		if x == c {
			return true
		}
	}
	return false
}

// Administrable indica si el catálogo se mantiene por la API como (nombre, activo).
// Plazos y monedas llevan columnas propias (días, redondeo, tipo de cambio) y se cargan por migración.
func (c Catalogo) Administrable() bool {
	return c.Valido() && c != CatalogoPlazosPago && c != CatalogoMonedas
}

// ItemCatalogo fila genérica de un catálogo.
type ItemCatalogo struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}

// PlazoPago plazo de pago en días.
type PlazoPago struct {
	ID          int64
	Descripcion string
	Dias        int
	Activo      bool
}

// Moneda moneda con su política de redondeo y tipo de cambio a la moneda local.
type Moneda struct {
	ID         int64
	Codigo     string // ISO 4217
	Nombre     string
	Simbolo    string
	Decimales  int32 // decimales de redondeo de montos en esta moneda
	EsLocal    bool
	TipoCambio decimal.Decimal // unidades de moneda local por unidad de esta moneda
	Activa     bool
}

// Redondear aplica la política de redondeo de la moneda.
func (m *Moneda) Redondear(v decimal.Decimal) decimal.Decimal {
	return v.Round(m.Decimales)
}
