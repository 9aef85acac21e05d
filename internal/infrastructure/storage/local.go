package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jhoicas/ordenes-api/internal/application/ports"
)

var _ ports.BlobStore = (*LocalStore)(nil)

// LocalStore guarda los archivos en un directorio; la API los sirve bajo baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore crea el directorio si no existe.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("storage: STORAGE_LOCAL_DIR es requerido")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear directorio: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir directorio raíz (para servirlo como estático).
func (s *LocalStore) Dir() string { return s.dir }

// Subir escribe en un temporal y lo renombra: un lector nunca ve un archivo a medias.
func (s *LocalStore) Subir(ctx context.Context, clave, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	limpia := path.Clean("/" + clave)[1:]
	if limpia == "" || limpia != clave {
		return "", fmt.Errorf("storage: clave inválida %q", clave)
	}
	destino := filepath.Join(s.dir, filepath.FromSlash(limpia))
	if err := os.MkdirAll(filepath.Dir(destino), 0o755); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(destino), ".subida-*")
	if err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: escribir %s: %w", clave, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), destino); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	return s.baseURL + "/" + limpia, nil
}
