package compras

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// NormalizarTotal convierte el total de la orden a moneda local.
// Moneda local: identidad. Extranjera: round(total × tipo de cambio) con la política de la moneda local.
func NormalizarTotal(total decimal.Decimal, moneda, local *entity.Moneda) decimal.Decimal {
	if moneda.EsLocal || moneda.ID == local.ID {
		return total
	}
	return local.Redondear(total.Mul(moneda.TipoCambio))
}

// TipoCambioEfectivo tasa que se guarda junto a la orden (1 para moneda local).
func TipoCambioEfectivo(moneda, local *entity.Moneda) decimal.Decimal {
	if moneda.EsLocal || moneda.ID == local.ID {
		return decimal.NewFromInt(1)
	}
	return moneda.TipoCambio
}

// FechaVencimiento fecha de creación en la zona de la empresa más los días del plazo, a medianoche.
func FechaVencimiento(creacion time.Time, zona *time.Location, dias int) time.Time {
	if zona == nil {
		zona = time.UTC
	}
	local := creacion.In(zona)
	y, m, d := local.Date()
	return time.Date(y, m, d+dias, 0, 0, 0, 0, zona)
}
