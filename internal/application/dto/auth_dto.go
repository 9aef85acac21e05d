package dto

import "time"

// RegistrarCuentaRequest body para POST /api/auth/cuentas (sólo admin).
type RegistrarCuentaRequest struct {
	Correo   string `json:"correo" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Nombre   string `json:"nombre" validate:"required,max=200"`
	Rol      string `json:"rol" validate:"required,oneof=solicitante comprador admin"`
}

// CuentaResponse salida de una cuenta (sin password).
type CuentaResponse struct {
	ID        string    `json:"id"`
	Correo    string    `json:"correo"`
	Nombre    string    `json:"nombre"`
	Rol       string    `json:"rol"`
	Activa    bool      `json:"activa"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Correo   string `json:"correo" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT y datos de la cuenta.
type LoginResponse struct {
	Token  string         `json:"token"`
	Cuenta CuentaResponse `json:"cuenta"`
}
