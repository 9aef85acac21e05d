package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el middleware RBAC.
const (
	RolSolicitante = "solicitante"
	RolComprador   = "comprador"
	RolAdmin       = "admin"
)

// Claims incluye los claims estándar JWT más la identidad del usuario.
// UserID es también el titular de los leases sobre solicitudes.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Role   string `json:"role"` // "solicitante" | "comprador" | "admin"
}

// Identidad datos del usuario que viajan en el token.
type Identidad struct {
	UserID string
	Nombre string
	Correo string
	Role   string
}

// Generate genera un token JWT firmado con la identidad del usuario.
func Generate(secret string, id Identidad, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID: id.UserID,
		Nombre: id.Nombre,
		Correo: id.Correo,
		Role:   id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (Identidad, error) {
	if secret == "" {
		return Identidad{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identidad{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identidad{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" {
		return Identidad{}, fmt.Errorf("claims inválidos: user_id vacío")
	}
	return Identidad{UserID: claims.UserID, Nombre: claims.Nombre, Correo: claims.Correo, Role: claims.Role}, nil
}
