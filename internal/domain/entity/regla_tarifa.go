package entity

import "github.com/shopspring/decimal"

// TipoRegla componente de la orden al que aplica una regla de tarifa.
type TipoRegla string

const (
	ReglaImpuesto    TipoRegla = "impuesto"
	ReglaRetencion   TipoRegla = "retencion"
	ReglaPropina     TipoRegla = "propina"
	ReglaDesconocida TipoRegla = "desconocida"
)

// ClaseRegla forma de calcular el monto de la regla.
type ClaseRegla string

const (
	ClasePorcentaje ClaseRegla = "porcentaje"
	ClaseFijo       ClaseRegla = "fijo"
)

// ReglaTarifa regla de impuesto/retención/propina asociada a un tipo de orden.
// Nombre se resuelve una sola vez al cargar la regla; NombreOriginal conserva el valor almacenado.
type ReglaTarifa struct {
	ID             int64
	TipoOrdenID    int64
	Nombre         TipoRegla
	NombreOriginal string
	Clase          ClaseRegla
	Magnitud       decimal.Decimal
	Activa         bool
}
