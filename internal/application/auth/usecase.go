package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/internal/application/validacion"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
	"github.com/jhoicas/ordenes-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta de cuentas y login.
type AuthUseCase struct {
	repo   repository.CuentaRepository
	clock  solicitudes.Clock
	jwtCfg JWTConfig
	costo  int
	log    zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(repo repository.CuentaRepository, clock solicitudes.Clock, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{repo: repo, clock: clock, jwtCfg: jwtCfg, costo: bcrypt.DefaultCost, log: log}
}

// ConCostoBcrypt cambia el costo del hash (los tests usan bcrypt.MinCost).
func (uc *AuthUseCase) ConCostoBcrypt(costo int) *AuthUseCase {
	uc.costo = costo
	return uc
}

// Registrar crea una cuenta activa con el password hasheado con bcrypt.
// Devuelve domain.ErrConflict si el correo ya existe.
func (uc *AuthUseCase) Registrar(ctx context.Context, in dto.RegistrarCuentaRequest) (*dto.CuentaResponse, error) {
	in.Correo = strings.ToLower(strings.TrimSpace(in.Correo))
	in.Nombre = strings.TrimSpace(in.Nombre)
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	existente, err := uc.repo.GetByCorreo(ctx, in.Correo)
	if err != nil {
		return nil, fmt.Errorf("buscar cuenta: %w", err)
	}
	if existente != nil {
		return nil, fmt.Errorf("%w: el correo ya está registrado", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.costo)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now, err := uc.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer reloj: %w", err)
	}
	cuenta := &entity.Cuenta{
		ID:           uuid.NewString(),
		Correo:       in.Correo,
		PasswordHash: string(hash),
		Nombre:       in.Nombre,
		Rol:          in.Rol,
		Activa:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, cuenta); err != nil {
		return nil, err
	}
	uc.log.Info().Str("cuenta_id", cuenta.ID).Str("rol", cuenta.Rol).Msg("cuenta registrada")
	return toCuentaResponse(cuenta), nil
}

// Login verifica correo/password y emite el JWT.
// Correo inexistente y password incorrecto devuelven el mismo domain.ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	in.Correo = strings.ToLower(strings.TrimSpace(in.Correo))
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	cuenta, err := uc.repo.GetByCorreo(ctx, in.Correo)
	if err != nil {
		return nil, fmt.Errorf("buscar cuenta: %w", err)
	}
	if cuenta == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cuenta.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !cuenta.Activa {
		return nil, domain.ErrForbidden
	}
	u := cuenta.Usuario()
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identidad{
		UserID: u.ID,
		Nombre: u.Nombre,
		Correo: u.Correo,
		Role:   cuenta.Rol,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	return &dto.LoginResponse{Token: token, Cuenta: *toCuentaResponse(cuenta)}, nil
}

// AsegurarAdmin crea la cuenta administradora inicial si todavía no existe.
func (uc *AuthUseCase) AsegurarAdmin(ctx context.Context, correo, password string) error {
	_, err := uc.Registrar(ctx, dto.RegistrarCuentaRequest{
		Correo:   correo,
		Password: password,
		Nombre:   "Administrador",
		Rol:      entity.RolAdmin,
	})
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("cuenta administradora: %w", err)
	}
	return nil
}

func toCuentaResponse(c *entity.Cuenta) *dto.CuentaResponse {
	return &dto.CuentaResponse{
		ID:        c.ID,
		Correo:    c.Correo,
		Nombre:    c.Nombre,
		Rol:       c.Rol,
		Activa:    c.Activa,
		CreatedAt: c.CreatedAt,
	}
}
