package entity

import "time"

// Roles de las cuentas.
const (
	RolSolicitante = "solicitante"
	RolComprador   = "comprador"
	RolAdmin       = "admin"
)

// Cuenta credenciales locales de un usuario. El token emitido al iniciar sesión
// lleva ID, Nombre, Correo y Rol; de ahí sale el Usuario que opera sobre las solicitudes.
type Cuenta struct {
	ID           string
	Correo       string
	PasswordHash string // bcrypt, nunca en claro
	Nombre       string
	Rol          string
	Activa       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Usuario identidad de la cuenta.
func (c *Cuenta) Usuario() Usuario {
	return Usuario{ID: c.ID, Nombre: c.Nombre, Correo: c.Correo}
}
