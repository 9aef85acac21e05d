package solicitudes_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

func nuevoUseCase(e *entorno) *solicitudes.SolicitudUseCase {
	return solicitudes.NewSolicitudUseCase(e.store.Solicitudes(), e.leases, e.clock)
}

var ana = entity.Usuario{ID: "ana", Nombre: "Ana Pérez", Correo: "ana@empresa.cl"}

func TestCrear_NaceAbiertaSinLease(t *testing.T) {
	e := nuevoEntorno(t)
	uc := nuevoUseCase(e)

	out, err := uc.Crear(context.Background(), ana, dto.CrearSolicitudRequest{
		Asunto:      "  Sillas de oficina ",
		Descripcion: "Reposición de 4 sillas",
		Adjuntos:    []dto.AdjuntoDTO{{URL: "https://files.example.com/cotizacion.pdf"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Sillas de oficina", out.Asunto)
	assert.Equal(t, string(entity.EstadoAbierta), out.Estado)
	assert.Equal(t, "Ana Pérez", out.UsuarioSolicitante)
	assert.Nil(t, out.LeasedAt)
	assert.Len(t, out.Adjuntos, 1)
	assert.NotNil(t, e.store.Solicitud(out.ID))
}

func TestCrear_AsuntoObligatorio(t *testing.T) {
	e := nuevoEntorno(t)

	_, err := nuevoUseCase(e).Crear(context.Background(), ana, dto.CrearSolicitudRequest{Asunto: "   ", Descripcion: "x"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "asunto", ve.Campo)
}

func TestCrear_AdjuntoConURLInvalida(t *testing.T) {
	e := nuevoEntorno(t)

	_, err := nuevoUseCase(e).Crear(context.Background(), ana, dto.CrearSolicitudRequest{
		Asunto: "x", Descripcion: "y", Adjuntos: []dto.AdjuntoDTO{{URL: "no es url"}},
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "adjuntos[0].url", ve.Campo)
}

func TestActualizar_RequiereLeaseDeEdicion(t *testing.T) {
	e := nuevoEntorno(t)
	uc := nuevoUseCase(e)
	in := dto.ActualizarSolicitudRequest{Asunto: "Nuevo asunto", Descripcion: "Nueva descripción"}

	_, err := uc.Actualizar(context.Background(), e.id, "ana", in)
	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)

	e.adquirir(t, entity.EstadoEditando, "ana")
	out, err := uc.Actualizar(context.Background(), e.id, "ana", in)
	require.NoError(t, err)
	assert.Equal(t, "Nuevo asunto", out.Asunto)
	assert.Equal(t, "Nuevo asunto", e.store.Solicitud(e.id).Asunto)
}

func TestActualizar_LeaseExpiradoSeRechaza(t *testing.T) {
	e := nuevoEntorno(t)
	e.adquirir(t, entity.EstadoEditando, "ana")
	e.clock.Avanzar(6 * time.Minute)

	_, err := nuevoUseCase(e).Actualizar(context.Background(), e.id, "ana",
		dto.ActualizarSolicitudRequest{Asunto: "a", Descripcion: "b"})

	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)
}

func TestObtener_EliminadaNoSeEncuentra(t *testing.T) {
	e := nuevoEntorno(t)
	require.NoError(t, e.leases.Eliminar(context.Background(), e.id, "duplicada", "ana"))

	_, err := nuevoUseCase(e).Obtener(context.Background(), e.id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListar_ExcluyeEliminadasYPagina(t *testing.T) {
	e := nuevoEntorno(t)
	for i := 0; i < 3; i++ {
		e.store.NuevaSolicitud("extra", "luis", inicio)
	}
	require.NoError(t, e.leases.Eliminar(context.Background(), e.id, "duplicada", "ana"))

	out, err := nuevoUseCase(e).Listar(context.Background(), dto.ListarSolicitudesRequest{
		PageRequest: dto.PageRequest{Limit: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, out.Page.Total)
	assert.Len(t, out.Items, 2)
	assert.Greater(t, out.Items[0].ID, out.Items[1].ID, "más recientes primero")
}

func TestListar_EstadoInvalido(t *testing.T) {
	e := nuevoEntorno(t)

	_, err := nuevoUseCase(e).Listar(context.Background(), dto.ListarSolicitudesRequest{Estado: "perdida"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
