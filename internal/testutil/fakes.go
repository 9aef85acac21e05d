package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeClock reloj manual. Err, si no es nil, se devuelve en Now.
type FakeClock struct {
	mu  sync.Mutex
	t   time.Time
	Err error
}

// NewFakeClock reloj detenido en t.
func NewFakeClock(t time.Time) *FakeClock { return &FakeClock{t: t} }

func (c *FakeClock) Now(context.Context) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return time.Time{}, c.Err
	}
	return c.t, nil
}

// Avanzar mueve el reloj d hacia adelante.
func (c *FakeClock) Avanzar(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Set fija el reloj en t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// FakeBlobStore almacenamiento en memoria. Err, si no es nil, hace fallar Subir.
type FakeBlobStore struct {
	mu       sync.Mutex
	objetos  map[string][]byte
	BaseURL  string
	Err      error
	Llamadas int
}

// NewFakeBlobStore crea el almacenamiento con URLs bajo base.
func NewFakeBlobStore(base string) *FakeBlobStore {
	return &FakeBlobStore{objetos: map[string][]byte{}, BaseURL: base}
}

func (b *FakeBlobStore) Subir(_ context.Context, clave, _ string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Llamadas++
	if b.Err != nil {
		return "", b.Err
	}
	b.objetos[clave] = append([]byte(nil), data...)
	return b.BaseURL + "/" + clave, nil
}

// Objeto devuelve el contenido guardado bajo clave.
func (b *FakeBlobStore) Objeto(clave string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.objetos[clave]
	return d, ok
}

// FallarSubida configura el error de Subir (nil lo quita).
func (b *FakeBlobStore) FallarSubida(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Err = err
}
