package entity

// Usuario identidad autenticada que opera sobre solicitudes y órdenes (viene del token).
// ID es también el titular de los leases.
type Usuario struct {
	ID     string
	Nombre string
	Correo string
}
