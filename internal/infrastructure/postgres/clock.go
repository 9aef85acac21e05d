package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
)

var _ solicitudes.Clock = (*StoreClock)(nil)

// StoreClock reloj de la base de datos: todas las instancias comparan leases contra la misma hora.
type StoreClock struct {
	q Querier
}

// NewStoreClock construye el reloj sobre el pool.
func NewStoreClock(q Querier) *StoreClock {
	return &StoreClock{q: q}
}

// Now devuelve now() del servidor en UTC.
func (c *StoreClock) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := c.q.QueryRow(ctx, `SELECT now()`).Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("reloj db: %w", err)
	}
	return now.UTC(), nil
}
