package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.CuentaRepository = (*CuentaRepo)(nil)

// CuentaRepo cuentas de usuario en memoria, indexadas por correo.
type CuentaRepo struct {
	mu      sync.Mutex
	cuentas map[string]entity.Cuenta
}

// NewCuentaRepo crea el repositorio vacío.
func NewCuentaRepo() *CuentaRepo {
	return &CuentaRepo{cuentas: map[string]entity.Cuenta{}}
}

func (r *CuentaRepo) Create(_ context.Context, c *entity.Cuenta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clave := strings.ToLower(c.Correo)
	if _, ok := r.cuentas[clave]; ok {
		return fmt.Errorf("%w: el correo ya está registrado", domain.ErrConflict)
	}
	r.cuentas[clave] = *c
	return nil
}

func (r *CuentaRepo) GetByCorreo(_ context.Context, correo string) (*entity.Cuenta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cuentas[strings.ToLower(correo)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Desactivar marca la cuenta como inactiva.
func (r *CuentaRepo) Desactivar(correo string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cuentas[strings.ToLower(correo)]; ok {
		c.Activa = false
		r.cuentas[strings.ToLower(correo)] = c
	}
}
