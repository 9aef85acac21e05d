package ordenes_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/testutil"
)

// ordenMaterializada emite la orden de la solicitud del entorno y devuelve su ID.
func ordenMaterializada(t *testing.T, e *entornoOrden) (*ordenes.RevisionUseCase, int64) {
	t.Helper()
	e.tomarProceso(t, "ana")
	creada, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
	require.NoError(t, err)
	return ordenes.NewRevisionUseCase(e.store.Ordenes(), e.clock, zerolog.Nop()), creada.ID
}

func TestRevision_AprobarSubeNivelHastaElFinal(t *testing.T) {
	e := nuevoEntornoOrden(t)
	uc, id := ordenMaterializada(t, e)

	out, err := uc.Aprobar(context.Background(), id, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, out.NivelAprobacion)

	out, err = uc.Aprobar(context.Background(), id, "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.NivelAprobacionFinal, out.NivelAprobacion)

	_, err = uc.Aprobar(context.Background(), id, "admin")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRevision_RechazadaNoSeAprueba(t *testing.T) {
	e := nuevoEntornoOrden(t)
	uc, id := ordenMaterializada(t, e)

	out, err := uc.Rechazar(context.Background(), id, "admin", dto.RechazarOrdenRequest{Justificacion: "  proveedor sin contrato  "})
	require.NoError(t, err)
	assert.Equal(t, "proveedor sin contrato", out.JustificacionRechazo)

	_, err = uc.Aprobar(context.Background(), id, "admin")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.Rechazar(context.Background(), id, "admin", dto.RechazarOrdenRequest{Justificacion: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRevision_RechazoSinJustificacion(t *testing.T) {
	e := nuevoEntornoOrden(t)
	uc, id := ordenMaterializada(t, e)

	_, err := uc.Rechazar(context.Background(), id, "admin", dto.RechazarOrdenRequest{Justificacion: "   "})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "justificacion", ve.Campo)
}

func TestRevision_NotaSoloDelCreadorMientrasEstaPendiente(t *testing.T) {
	e := nuevoEntornoOrden(t)
	uc, id := ordenMaterializada(t, e)

	_, err := uc.ActualizarNota(context.Background(), id, "beto", false, dto.NotaOrdenRequest{Nota: "otra"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.ActualizarNota(context.Background(), id, "ana", false, dto.NotaOrdenRequest{Nota: "entregar en sucursal"})
	require.NoError(t, err)
	assert.Equal(t, "entregar en sucursal", out.Nota)

	_, err = uc.Aprobar(context.Background(), id, "admin")
	require.NoError(t, err)
	_, err = uc.ActualizarNota(context.Background(), id, "admin", true, dto.NotaOrdenRequest{Nota: "tarde"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRevision_AprobacionConcurrentePierdeUna(t *testing.T) {
	e := nuevoEntornoOrden(t)
	_, id := ordenMaterializada(t, e)
	// Otro revisor aprobó entre la lectura y la escritura.
	ok, err := e.store.Ordenes().Aprobar(context.Background(), id, entity.NivelAprobacionPendiente, inicio)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.store.Ordenes().Aprobar(context.Background(), id, entity.NivelAprobacionPendiente, inicio)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevision_EliminadaDesapareceDeConsultasYPDF(t *testing.T) {
	e := nuevoEntornoOrden(t)
	uc, id := ordenMaterializada(t, e)

	require.NoError(t, uc.Eliminar(context.Background(), id, "admin", dto.EliminarOrdenRequest{Justificacion: "duplicada"}))

	consulta := ordenes.NewOrdenUseCase(e.store.Ordenes())
	_, err := consulta.Obtener(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	lista, err := consulta.Listar(context.Background(), dto.ListarOrdenesRequest{})
	require.NoError(t, err)
	assert.Empty(t, lista.Items)
	pendientes, err := e.store.Ordenes().ListPendientesPDF(context.Background(), 5, 10)
	require.NoError(t, err)
	assert.Empty(t, pendientes)

	assert.ErrorIs(t, uc.Eliminar(context.Background(), id, "admin", dto.EliminarOrdenRequest{Justificacion: "otra"}), domain.ErrNotFound)
	_, err = uc.Aprobar(context.Background(), id, "admin")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// La solicitud no vuelve a quedar disponible.
	assert.Equal(t, entity.EstadoOrdenada, e.store.Solicitud(e.id).Estado)
}

func TestRevision_FalloDeEscrituraSePropaga(t *testing.T) {
	e := nuevoEntornoOrden(t)
	uc, id := ordenMaterializada(t, e)
	e.store.FallarEn("Orden.Rechazar", nil)

	_, err := uc.Rechazar(context.Background(), id, "admin", dto.RechazarOrdenRequest{Justificacion: "sin presupuesto"})

	assert.ErrorIs(t, err, testutil.ErrFalla)
}
