package ordenes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
	"github.com/jhoicas/ordenes-api/internal/domain"
)

func TestOrdenUseCase_ObtenerIncluyeDetalles(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	creada, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
	require.NoError(t, err)

	out, err := ordenes.NewOrdenUseCase(e.store.Ordenes()).Obtener(context.Background(), creada.ID)

	require.NoError(t, err)
	assert.Equal(t, creada.Codigo, out.Codigo)
	assert.Equal(t, "2024-07-03", out.FechaVencimiento)
	assert.Len(t, out.Detalles, 2)
	assert.Empty(t, out.RutaPDF)
}

func TestOrdenUseCase_ObtenerInexistente(t *testing.T) {
	e := nuevoEntornoOrden(t)

	_, err := ordenes.NewOrdenUseCase(e.store.Ordenes()).Obtener(context.Background(), 1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrdenUseCase_ListarFiltraPorSolicitud(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
	require.NoError(t, err)
	uc := ordenes.NewOrdenUseCase(e.store.Ordenes())

	out, err := uc.Listar(context.Background(), dto.ListarOrdenesRequest{SolicitudID: e.id})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)

	out, err = uc.Listar(context.Background(), dto.ListarOrdenesRequest{SolicitudID: e.id + 1})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestInconsistencias_SinHallazgos(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
	require.NoError(t, err)

	inc, err := ordenes.NewInconsistenciasUseCase(e.store.Ordenes()).Listar(context.Background())

	require.NoError(t, err)
	assert.Empty(t, inc)
}
