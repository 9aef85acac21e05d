package repository

import (
	"context"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// CuentaRepository puerto de persistencia de cuentas de usuario.
type CuentaRepository interface {
	// Create devuelve domain.ErrConflict si el correo ya está registrado.
	Create(ctx context.Context, c *entity.Cuenta) error
	// GetByCorreo devuelve (nil, nil) si no existe.
	GetByCorreo(ctx context.Context, correo string) (*entity.Cuenta, error)
}
