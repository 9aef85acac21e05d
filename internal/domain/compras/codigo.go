package compras

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	prefijoCodigo = "OC"
	formatoFecha  = "20060102"
)

// GenerarCodigo construye el código legible de una orden: OC-YYYYMMDD-NNNNNN.
// El ID se rellena con ceros hasta 6 dígitos; IDs mayores conservan todos sus dígitos.
func GenerarCodigo(id int64, fecha time.Time) string {
	return fmt.Sprintf("%s-%s-%06d", prefijoCodigo, fecha.Format(formatoFecha), id)
}

// ParsearCodigo recupera el ID y la fecha de un código generado por GenerarCodigo.
func ParsearCodigo(codigo string) (int64, time.Time, error) {
	partes := strings.Split(codigo, "-")
	if len(partes) != 3 || partes[0] != prefijoCodigo {
		return 0, time.Time{}, fmt.Errorf("código %q: formato inválido", codigo)
	}
	fecha, err := time.Parse(formatoFecha, partes[1])
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("código %q: fecha inválida: %w", codigo, err)
	}
	if len(partes[2]) < 6 {
		return 0, time.Time{}, fmt.Errorf("código %q: correlativo incompleto", codigo)
	}
	id, err := strconv.ParseInt(partes[2], 10, 64)
	if err != nil || id <= 0 {
		return 0, time.Time{}, fmt.Errorf("código %q: correlativo inválido", codigo)
	}
	return id, fecha, nil
}
