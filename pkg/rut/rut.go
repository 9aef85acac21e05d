// Package rut valida y normaliza el RUT chileno de proveedores y empresas.
package rut

import (
	"fmt"
	"strings"
	"unicode"
)

// DigitoVerificador calcula el DV de un cuerpo numérico con el algoritmo módulo 11
// (pesos 2..7 cíclicos desde la derecha). 11 da '0' y 10 da 'K'.
func DigitoVerificador(cuerpo string) (byte, error) {
	if cuerpo == "" {
		return 0, fmt.Errorf("rut: cuerpo vacío")
	}
	suma, peso := 0, 2
	for i := len(cuerpo) - 1; i >= 0; i-- {
		c := cuerpo[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("rut: carácter no numérico %q en el cuerpo", c)
		}
		suma += int(c-'0') * peso
		peso++
		if peso > 7 {
			peso = 2
		}
	}
	switch r := 11 - suma%11; r {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + r), nil
	}
}

// Normalizar valida el RUT (con o sin puntos/guion, dv en mayúscula o minúscula)
// y lo devuelve como "12345678-5".
func Normalizar(rut string) (string, error) {
	limpio := extraer(rut)
	if len(limpio) < 2 {
		return "", fmt.Errorf("rut: %q demasiado corto", rut)
	}
	cuerpo := strings.TrimLeft(limpio[:len(limpio)-1], "0")
	dv := limpio[len(limpio)-1]
	if cuerpo == "" || len(cuerpo) > 9 {
		return "", fmt.Errorf("rut: largo inválido en %q", rut)
	}
	esperado, err := DigitoVerificador(cuerpo)
	if err != nil {
		return "", err
	}
	if dv != esperado {
		return "", fmt.Errorf("rut: dígito verificador inválido en %q: esperado %c, recibido %c", rut, esperado, dv)
	}
	return cuerpo + "-" + string(dv), nil
}

// Validar informa si el RUT es correcto.
func Validar(rut string) error {
	_, err := Normalizar(rut)
	return err
}

// extraer deja sólo dígitos y la K final (en mayúscula).
func extraer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsDigit(r) || r == 'K' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
