package ports

import "context"

// BlobStore define el puerto de salida para el almacenamiento de archivos (PDFs, adjuntos).
// Cualquier adaptador (S3, MinIO, disco local, mock) debe implementar esta interfaz.
// Subir con una clave ya existente la sobrescribe, así que reintentar es seguro.
type BlobStore interface {
	// Subir guarda data bajo clave y devuelve la URL pública del archivo.
	Subir(ctx context.Context, clave, contentType string, data []byte) (string, error)
}
