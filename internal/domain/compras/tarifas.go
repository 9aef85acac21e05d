// Package compras contiene los servicios de dominio puros de las órdenes de compra:
// evaluación de reglas de tarifa, generación de códigos y normalización de moneda.
package compras

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

var cien = decimal.NewFromInt(100)

// Tarifas resultado de evaluar las reglas sobre un subtotal.
// Total = subtotal + Impuesto - Retencion + Propina.
type Tarifas struct {
	Impuesto  decimal.Decimal
	Retencion decimal.Decimal
	Propina   decimal.Decimal
	Total     decimal.Decimal
}

// ParsearTipoRegla resuelve el nombre almacenado de una regla sin distinguir mayúsculas ni acentos,
// estén precompuestos o no ("Retención", "IMPUESTO"). Acepta también tax, retention y gratuity.
// Nombres no reconocidos devuelven ReglaDesconocida.
func ParsearTipoRegla(nombre string) entity.TipoRegla {
	switch normalizarNombre(nombre) {
	case "impuesto", "tax":
		return entity.ReglaImpuesto
	case "retencion", "retention":
		return entity.ReglaRetencion
	case "propina", "gratuity":
		return entity.ReglaPropina
	default:
		return entity.ReglaDesconocida
	}
}

// normalizarNombre quita marcas diacríticas (NFD sin Mn) y pliega mayúsculas.
func normalizarNombre(nombre string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	sinAcentos, _, err := transform.String(t, strings.TrimSpace(nombre))
	if err != nil {
		sinAcentos = strings.TrimSpace(nombre)
	}
	return cases.Fold().String(sinAcentos)
}

// EvaluarTarifas aplica las reglas activas sobre el subtotal.
// Porcentaje: subtotal × magnitud / 100. Fijo: magnitud. Reglas del mismo tipo se suman;
// inactivas y desconocidas se ignoran. No redondea: eso lo decide la moneda de la orden.
func EvaluarTarifas(subtotal decimal.Decimal, reglas []entity.ReglaTarifa) Tarifas {
	t := Tarifas{Impuesto: decimal.Zero, Retencion: decimal.Zero, Propina: decimal.Zero}
	for _, r := range reglas {
		if !r.Activa {
			continue
		}
		monto := montoRegla(subtotal, r)
		switch r.Nombre {
		case entity.ReglaImpuesto:
			t.Impuesto = t.Impuesto.Add(monto)
		case entity.ReglaRetencion:
			t.Retencion = t.Retencion.Add(monto)
		case entity.ReglaPropina:
			t.Propina = t.Propina.Add(monto)
		}
	}
	t.Total = subtotal.Add(t.Impuesto).Sub(t.Retencion).Add(t.Propina)
	return t
}

// Redondear aplica la política de la moneda a cada componente y recalcula el total con los montos redondeados.
func (t Tarifas) Redondear(subtotal decimal.Decimal, m *entity.Moneda) Tarifas {
	r := Tarifas{
		Impuesto:  m.Redondear(t.Impuesto),
		Retencion: m.Redondear(t.Retencion),
		Propina:   m.Redondear(t.Propina),
	}
	r.Total = m.Redondear(subtotal).Add(r.Impuesto).Sub(r.Retencion).Add(r.Propina)
	return r
}

func montoRegla(subtotal decimal.Decimal, r entity.ReglaTarifa) decimal.Decimal {
	switch r.Clase {
	case entity.ClasePorcentaje:
		return subtotal.Mul(r.Magnitud).Div(cien)
	case entity.ClaseFijo:
		return r.Magnitud
	default:
		return decimal.Zero
	}
}

// Subtotal suma precio × cantidad de cada línea.
func Subtotal(lineas []entity.DetalleOrden) decimal.Decimal {
	s := decimal.Zero
	for _, l := range lineas {
		s = s.Add(l.PrecioUnitario.Mul(decimal.NewFromInt(l.Cantidad)))
	}
	return s
}
