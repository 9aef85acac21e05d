package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var _ repository.CuentaRepository = (*CuentaRepo)(nil)

// CuentaRepo implementación del puerto CuentaRepository sobre PostgreSQL.
type CuentaRepo struct {
	q Querier
}

// NewCuentaRepository construye el adaptador de persistencia para cuentas.
func NewCuentaRepository(q Querier) *CuentaRepo {
	return &CuentaRepo{q: q}
}

// Create persiste una cuenta nueva. El correo se compara sin distinguir mayúsculas.
func (r *CuentaRepo) Create(ctx context.Context, c *entity.Cuenta) error {
	query := `
		INSERT INTO cuentas_usuario (id, correo, password_hash, nombre, rol, activa, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Correo, c.PasswordHash, c.Nombre, c.Rol, c.Activa, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el correo ya está registrado", domain.ErrConflict)
		}
		return fmt.Errorf("insert cuenta: %w", err)
	}
	return nil
}

// GetByCorreo obtiene una cuenta por correo.
func (r *CuentaRepo) GetByCorreo(ctx context.Context, correo string) (*entity.Cuenta, error) {
	query := `
		SELECT id, correo, password_hash, nombre, rol, activa, created_at, updated_at
		FROM cuentas_usuario WHERE correo = lower($1)`
	var c entity.Cuenta
	err := r.q.QueryRow(ctx, query, correo).Scan(
		&c.ID, &c.Correo, &c.PasswordHash, &c.Nombre, &c.Rol, &c.Activa, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cuenta by correo: %w", err)
	}
	return &c, nil
}
