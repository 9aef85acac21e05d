package compras_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ordenes-api/internal/domain/compras"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func regla(nombre entity.TipoRegla, clase entity.ClaseRegla, magnitud string) entity.ReglaTarifa {
	return entity.ReglaTarifa{Nombre: nombre, Clase: clase, Magnitud: dec(magnitud), Activa: true}
}

// ──────────────────────────────────────────────────────────────────────────────
// Vector de referencia: subtotal 1000 con IVA 16%, retención 5% y propina fija 50.
//
//	impuesto  = 1000 × 16 / 100 = 160
//	retencion = 1000 × 5 / 100  = 50
//	propina   = 50
//	total     = 1000 + 160 - 50 + 50 = 1160
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluarTarifas_VectorReferencia(t *testing.T) {
	reglas := []entity.ReglaTarifa{
		regla(entity.ReglaImpuesto, entity.ClasePorcentaje, "16"),
		regla(entity.ReglaRetencion, entity.ClasePorcentaje, "5"),
		regla(entity.ReglaPropina, entity.ClaseFijo, "50"),
	}

	tr := compras.EvaluarTarifas(dec("1000"), reglas)

	assert.True(t, dec("160").Equal(tr.Impuesto), "impuesto: %s", tr.Impuesto)
	assert.True(t, dec("50").Equal(tr.Retencion), "retencion: %s", tr.Retencion)
	assert.True(t, dec("50").Equal(tr.Propina), "propina: %s", tr.Propina)
	assert.True(t, dec("1160").Equal(tr.Total), "total: %s", tr.Total)
}

func TestEvaluarTarifas_MismoTipoSeSuma(t *testing.T) {
	reglas := []entity.ReglaTarifa{
		regla(entity.ReglaImpuesto, entity.ClasePorcentaje, "10"),
		regla(entity.ReglaImpuesto, entity.ClaseFijo, "5"),
	}

	tr := compras.EvaluarTarifas(dec("200"), reglas)

	assert.True(t, dec("25").Equal(tr.Impuesto))
	assert.True(t, dec("225").Equal(tr.Total))
}

func TestEvaluarTarifas_IgnoraInactivasYDesconocidas(t *testing.T) {
	inactiva := regla(entity.ReglaImpuesto, entity.ClasePorcentaje, "19")
	inactiva.Activa = false
	reglas := []entity.ReglaTarifa{
		inactiva,
		regla(entity.ReglaDesconocida, entity.ClaseFijo, "999"),
	}

	tr := compras.EvaluarTarifas(dec("100"), reglas)

	assert.True(t, tr.Impuesto.IsZero())
	assert.True(t, tr.Retencion.IsZero())
	assert.True(t, tr.Propina.IsZero())
	assert.True(t, dec("100").Equal(tr.Total), "sin reglas aplicables el total es el subtotal")
}

func TestEvaluarTarifas_SinReglas(t *testing.T) {
	tr := compras.EvaluarTarifas(dec("42.50"), nil)
	assert.True(t, dec("42.50").Equal(tr.Total))
}

func TestTarifas_RedondearConPoliticaDeMoneda(t *testing.T) {
	clp := &entity.Moneda{ID: 1, Codigo: "CLP", Decimales: 0, EsLocal: true}
	reglas := []entity.ReglaTarifa{regla(entity.ReglaImpuesto, entity.ClasePorcentaje, "19")}

	tr := compras.EvaluarTarifas(dec("1005"), reglas).Redondear(dec("1005"), clp)

	// 1005 × 0.19 = 190.95 → 191
	assert.True(t, dec("191").Equal(tr.Impuesto), "impuesto: %s", tr.Impuesto)
	assert.True(t, dec("1196").Equal(tr.Total), "total: %s", tr.Total)
}

func TestParsearTipoRegla_SinDistinguirMayusculasNiTildes(t *testing.T) {
	assert.Equal(t, entity.ReglaImpuesto, compras.ParsearTipoRegla("IMPUESTO"))
	assert.Equal(t, entity.ReglaRetencion, compras.ParsearTipoRegla("Retención"))
	assert.Equal(t, entity.ReglaRetencion, compras.ParsearTipoRegla(" retencion "))
	assert.Equal(t, entity.ReglaPropina, compras.ParsearTipoRegla("Propina"))
	assert.Equal(t, entity.ReglaDesconocida, compras.ParsearTipoRegla("descuento"))
}

func TestParsearTipoRegla_TildeDescompuesta(t *testing.T) {
	nfd := "rete\u0301ncion"
	assert.Equal(t, entity.ReglaRetencion, compras.ParsearTipoRegla(nfd))
	assert.Equal(t, entity.ReglaRetencion, compras.ParsearTipoRegla("RETENCIO\u0301N"))
	assert.Equal(t, entity.ReglaRetencion, compras.ParsearTipoRegla("RETENCIÓN"))
}

func TestParsearTipoRegla_NombresEnIngles(t *testing.T) {
	assert.Equal(t, entity.ReglaImpuesto, compras.ParsearTipoRegla("tax"))
	assert.Equal(t, entity.ReglaRetencion, compras.ParsearTipoRegla("Retention"))
	assert.Equal(t, entity.ReglaPropina, compras.ParsearTipoRegla("GRATUITY"))
}

func TestEvaluarTarifas_ReglaConNombreDescompuestoNoSePierde(t *testing.T) {
	reglas := []entity.ReglaTarifa{
		{Nombre: compras.ParsearTipoRegla("rete\u0301ncion"), Clase: entity.ClasePorcentaje, Magnitud: dec("5"), Activa: true},
	}

	got := compras.EvaluarTarifas(dec("1000"), reglas)

	assert.True(t, dec("50").Equal(got.Retencion), "retención = %s", got.Retencion)
	assert.True(t, dec("950").Equal(got.Total))
}

func TestSubtotal_SumaPrecioPorCantidad(t *testing.T) {
	lineas := []entity.DetalleOrden{
		{PrecioUnitario: dec("10.50"), Cantidad: 2},
		{PrecioUnitario: dec("3"), Cantidad: 5},
	}
	assert.True(t, dec("36").Equal(compras.Subtotal(lineas)))
}
