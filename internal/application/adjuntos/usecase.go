package adjuntos

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/domain"
)

// TamanoMaximo por defecto para un adjunto (10 MiB).
const TamanoMaximo = 10 << 20

var extensionesPermitidas = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".xlsx": true, ".xls": true, ".docx": true, ".doc": true, ".csv": true, ".txt": true,
}

// AdjuntoUseCase sube archivos (cotizaciones, respaldos) y devuelve su URL para
// referenciarla desde una solicitud o una orden.
type AdjuntoUseCase struct {
	blobs    ports.BlobStore
	maxBytes int64
}

// NewAdjuntoUseCase construye el caso de uso. maxBytes <= 0 usa TamanoMaximo.
func NewAdjuntoUseCase(blobs ports.BlobStore, maxBytes int64) *AdjuntoUseCase {
	if maxBytes <= 0 {
		maxBytes = TamanoMaximo
	}
	return &AdjuntoUseCase{blobs: blobs, maxBytes: maxBytes}
}

// Subir guarda el archivo bajo una clave ULID nueva, conservando la extensión original.
func (uc *AdjuntoUseCase) Subir(ctx context.Context, nombre, contentType string, data []byte) (*dto.AdjuntoSubidoResponse, error) {
	nombre = filepath.Base(strings.TrimSpace(nombre))
	if nombre == "" || nombre == "." || nombre == string(filepath.Separator) {
		return nil, domain.NewValidationError("archivo", "nombre de archivo vacío")
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError("archivo", "el archivo está vacío")
	}
	if int64(len(data)) > uc.maxBytes {
		return nil, domain.NewValidationError("archivo", fmt.Sprintf("supera el máximo de %d bytes", uc.maxBytes))
	}
	ext := strings.ToLower(filepath.Ext(nombre))
	if !extensionesPermitidas[ext] {
		return nil, domain.NewValidationError("archivo", fmt.Sprintf("extensión no permitida: %q", ext))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := uc.blobs.Subir(ctx, "adjuntos/"+ulid.Make().String()+ext, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("%w: subir adjunto: %w", domain.ErrDownstream, err)
	}
	return &dto.AdjuntoSubidoResponse{URL: url, Nombre: nombre, Tamano: int64(len(data))}, nil
}
