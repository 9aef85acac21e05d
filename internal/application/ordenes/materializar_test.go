package ordenes_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/lease"
	"github.com/jhoicas/ordenes-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// 09:00 UTC = 05:00 en Santiago, mismo día.
var inicio = time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

var ana = entity.Usuario{ID: "ana", Nombre: "Ana Pérez", Correo: "ana@empresa.cl"}

// despachoRegistrado DespachadorPDF que sólo anota las órdenes recibidas.
type despachoRegistrado struct {
	mu  sync.Mutex
	ids []int64
}

func (d *despachoRegistrado) ProcessAsync(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
}

func (d *despachoRegistrado) despachados() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int64(nil), d.ids...)
}

type entornoOrden struct {
	store  *testutil.MemStore
	clock  *testutil.FakeClock
	leases *solicitudes.LeaseManager
	pdf    *despachoRegistrado
	uc     *ordenes.MaterializarUseCase
	id     int64
}

func nuevoEntornoOrden(t *testing.T) *entornoOrden {
	t.Helper()
	santiago, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	store := testutil.NewMemStore()
	store.SembrarCatalogos()
	clock := testutil.NewFakeClock(inicio)
	leases := solicitudes.NewLeaseManager(store.Solicitudes(), clock, lease.PoliticaPorDefecto(), zerolog.Nop())
	pdf := &despachoRegistrado{}
	e := &entornoOrden{
		store:  store,
		clock:  clock,
		leases: leases,
		pdf:    pdf,
		uc: ordenes.NewMaterializarUseCase(store, leases, clock, pdf,
			ordenes.Config{Zona: santiago, TxTimeout: 5 * time.Second}, zerolog.Nop()),
		id: store.NuevaSolicitud("Insumos de oficina", "ana", inicio),
	}
	return e
}

func (e *entornoOrden) tomarProceso(t *testing.T, titular string) {
	t.Helper()
	res, err := e.leases.AdquirirLease(context.Background(), e.id, entity.EstadoProcesando, titular)
	require.NoError(t, err)
	require.True(t, res.Otorgado)
}

// pedidoBase suma 1000 CLP: 2 × 250 + 5 × 100.
func pedidoBase() dto.MaterializarRequest {
	return dto.MaterializarRequest{
		ProveedorID:   1,
		BancoID:       1,
		PlazoPagoID:   testutil.Plazo30,
		EmpresaID:     1,
		CentroCostoID: 1,
		TipoOrdenID:   testutil.TipoOrden,
		MonedaID:      testutil.MonedaCLP,
		CuentaID:      1,
		Nota:          "entregar en bodega central",
		Cotizaciones:  []string{"https://files.example.com/cot-1.pdf"},
		Items: []dto.ItemOrdenRequest{
			{ProductoID: 1, PrecioUnitario: decimal.NewFromInt(250), Cantidad: 2},
			{ProductoID: 2, PrecioUnitario: decimal.NewFromInt(100), Cantidad: 5},
		},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, campo string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: esperado %s, obtenido %s", campo, want, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Camino feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestMaterializar_CreaOrdenConTarifasYCodigo(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")

	out, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	require.NoError(t, err)
	assert.Equal(t, "OC-20240603-000001", out.Codigo)
	assertDec(t, "1000", out.Subtotal, "subtotal")
	assertDec(t, "160", out.Impuesto, "impuesto")
	assertDec(t, "50", out.Retencion, "retención")
	assertDec(t, "50", out.Propina, "propina")
	assertDec(t, "1160", out.Total, "total")
	assertDec(t, "1160", out.TotalLocal, "total local")

	orden, err := e.store.Ordenes().GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	require.NotNil(t, orden)
	assert.Equal(t, entity.NivelAprobacionPendiente, orden.NivelAprobacion)
	assert.Equal(t, "Ana Pérez", orden.UsuarioCreador)
	assert.Equal(t, "2024-07-03", orden.FechaVencimiento.Format("2006-01-02"))
	assert.Nil(t, orden.RutaPDF)

	detalles, err := e.store.Ordenes().GetDetalles(context.Background(), out.ID)
	require.NoError(t, err)
	require.Len(t, detalles, 2)
	for _, d := range detalles {
		assert.Equal(t, d.Cantidad, d.CantidadPorRecibir)
		assert.Equal(t, e.id, d.SolicitudID)
	}
	assertDec(t, "500", detalles[0].Total, "total línea 1")
}

func TestMaterializar_SolicitudQuedaOrdenadaYSeDespachaPDF(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")

	out, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
	require.NoError(t, err)

	sol := e.store.Solicitud(e.id)
	assert.Equal(t, entity.EstadoOrdenada, sol.Estado)
	assert.Nil(t, sol.LeasedAt)
	assert.Empty(t, sol.LeasedBy)
	assert.Equal(t, []int64{out.ID}, e.pdf.despachados())
}

func TestMaterializar_MonedaExtranjeraNormalizaTotal(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	in := pedidoBase()
	in.MonedaID = testutil.MonedaUSD
	in.TipoOrdenID = testutil.TipoSinIVA
	in.Items = []dto.ItemOrdenRequest{{ProductoID: 1, PrecioUnitario: dec("12.34"), Cantidad: 1}}

	out, err := e.uc.Materializar(context.Background(), e.id, ana, in)

	require.NoError(t, err)
	assertDec(t, "12.34", out.Total, "total")
	assertDec(t, "11728", out.TotalLocal, "total local")
	orden, _ := e.store.Ordenes().GetByID(context.Background(), out.ID)
	assertDec(t, "950.37", orden.TipoCambio, "tipo de cambio")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lease
// ──────────────────────────────────────────────────────────────────────────────

func TestMaterializar_SinLeaseDeProceso(t *testing.T) {
	e := nuevoEntornoOrden(t)

	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)
	assert.Zero(t, e.store.CantidadOrdenes())
}

func TestMaterializar_LeaseDeOtroUsuario(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "luis")

	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)
	assert.Equal(t, "luis", e.store.Solicitud(e.id).LeasedBy)
}

func TestMaterializar_LeaseDeEdicionNoAlcanza(t *testing.T) {
	e := nuevoEntornoOrden(t)
	_, err := e.leases.AdquirirLease(context.Background(), e.id, entity.EstadoEditando, "ana")
	require.NoError(t, err)

	_, err = e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)
}

func TestMaterializar_LeaseExpirado(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	e.clock.Avanzar(31 * time.Minute)

	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)
	assert.Zero(t, e.store.CantidadOrdenes())
}

func TestMaterializar_SegundaVezEsTerminal(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
	require.NoError(t, err)

	_, err = e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	assert.ErrorIs(t, err, domain.ErrEstadoTerminal)
	assert.Equal(t, 1, e.store.CantidadOrdenes())
}

func TestMaterializar_ConcurrenteCreaUnaSolaOrden(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")

	const n = 6
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		exito int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
			if err == nil {
				mu.Lock()
				exito++
				mu.Unlock()
				return
			}
			assert.True(t, errorsIsAny(err, domain.ErrEstadoTerminal, domain.ErrConflict), "error inesperado: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, exito)
	assert.Equal(t, 1, e.store.CantidadOrdenes())
	assert.Equal(t, 2, e.store.CantidadDetalles())
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y referencias
// ──────────────────────────────────────────────────────────────────────────────

func TestMaterializar_ValidacionesDeEntrada(t *testing.T) {
	casos := []struct {
		nombre string
		mutar  func(*dto.MaterializarRequest)
		campo  string
	}{
		{"sin líneas", func(r *dto.MaterializarRequest) { r.Items = nil }, "items"},
		{"cantidad cero", func(r *dto.MaterializarRequest) { r.Items[0].Cantidad = 0 }, "items[0].cantidad"},
		{"precio negativo", func(r *dto.MaterializarRequest) { r.Items[1].PrecioUnitario = dec("-1") }, "items[1].precio_unitario"},
		{"sin proveedor", func(r *dto.MaterializarRequest) { r.ProveedorID = 0 }, "proveedor_id"},
		{"cotización inválida", func(r *dto.MaterializarRequest) { r.Cotizaciones = []string{"cot.pdf"} }, "cotizaciones[0]"},
		{"proveedor inexistente", func(r *dto.MaterializarRequest) { r.ProveedorID = 99 }, "proveedor_id"},
		{"moneda inexistente", func(r *dto.MaterializarRequest) { r.MonedaID = 99 }, "moneda_id"},
		{"plazo inexistente", func(r *dto.MaterializarRequest) { r.PlazoPagoID = 99 }, "plazo_pago_id"},
		{"producto inexistente", func(r *dto.MaterializarRequest) { r.Items[1].ProductoID = 99 }, "items[1].producto_id"},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			e := nuevoEntornoOrden(t)
			e.tomarProceso(t, "ana")
			in := pedidoBase()
			tc.mutar(&in)

			_, err := e.uc.Materializar(context.Background(), e.id, ana, in)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.campo, ve.Campo)
			assert.Zero(t, e.store.CantidadOrdenes())
			assert.Equal(t, entity.EstadoProcesando, e.store.Solicitud(e.id).Estado, "el lease se conserva para corregir y reintentar")
		})
	}
}

func TestMaterializar_ProveedorInactivo(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.store.AgregarItem(entity.CatalogoProveedores, entity.ItemCatalogo{ID: 7, Nombre: "De baja", Activo: false})
	e.tomarProceso(t, "ana")
	in := pedidoBase()
	in.ProveedorID = 7

	_, err := e.uc.Materializar(context.Background(), e.id, ana, in)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad
// ──────────────────────────────────────────────────────────────────────────────

func TestMaterializar_FalloAMitadNoDejaEscrituras(t *testing.T) {
	for _, op := range []string{"Orden.Create", "Orden.SetCodigo", "Orden.CreateDetalle", "Commit"} {
		t.Run(op, func(t *testing.T) {
			e := nuevoEntornoOrden(t)
			e.tomarProceso(t, "ana")
			e.store.FallarEn(op, nil)

			_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

			assert.ErrorIs(t, err, domain.ErrTransaccion)
			assert.Zero(t, e.store.CantidadOrdenes())
			assert.Zero(t, e.store.CantidadDetalles())
			assert.Empty(t, e.pdf.despachados())
			sol := e.store.Solicitud(e.id)
			assert.Equal(t, entity.EstadoProcesando, sol.Estado)
			assert.Equal(t, "ana", sol.LeasedBy)

			// El reintento crea una sola orden; la secuencia puede haber avanzado.
			e.store.NoFallar(op)
			out, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
			require.NoError(t, err)
			assert.Regexp(t, `^OC-20240603-\d{6}$`, out.Codigo)
			assert.Equal(t, 1, e.store.CantidadOrdenes())
		})
	}
}

func TestMaterializar_ReintentoNoReutilizaElCodigo(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	e.store.FallarEn("Orden.SetCodigo", nil)

	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())
	require.ErrorIs(t, err, domain.ErrTransaccion)

	e.store.NoFallar("Orden.SetCodigo")
	out, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	require.NoError(t, err)
	assert.Equal(t, "OC-20240603-000002", out.Codigo)
	assert.Equal(t, 1, e.store.CantidadOrdenes())
}

func TestMaterializar_SinMonedaLocalNoEsReintentable(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	e.store.QuitarMonedaLocal()

	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	assert.ErrorIs(t, err, domain.ErrConfiguracion)
	assert.NotErrorIs(t, err, domain.ErrTransaccion)
	assert.Zero(t, e.store.CantidadOrdenes())
	assert.Equal(t, entity.EstadoProcesando, e.store.Solicitud(e.id).Estado)
}

func TestMaterializar_RelojCaidoEsTransaccional(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	e.clock.Err = testutil.ErrFalla

	_, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	assert.ErrorIs(t, err, domain.ErrTransaccion)
}

func TestMaterializar_ContextoCanceladoNoAbortaLaTransaccion(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.uc.Materializar(ctx, e.id, ana, pedidoBase())

	require.NoError(t, err)
	assert.Equal(t, 1, e.store.CantidadOrdenes())
}

func TestMaterializar_TransicionFallidaQuedaComoInconsistencia(t *testing.T) {
	e := nuevoEntornoOrden(t)
	e.tomarProceso(t, "ana")
	e.store.FallarEn("Solicitud.ForzarLease", nil)

	out, err := e.uc.Materializar(context.Background(), e.id, ana, pedidoBase())

	require.NoError(t, err, "la orden ya está confirmada")
	assert.Equal(t, entity.EstadoProcesando, e.store.Solicitud(e.id).Estado)

	inc, err := ordenes.NewInconsistenciasUseCase(e.store.Ordenes()).Listar(context.Background())
	require.NoError(t, err)
	require.Len(t, inc, 1)
	assert.Equal(t, out.ID, inc[0].OrdenID)
	assert.Equal(t, string(entity.EstadoProcesando), inc[0].Estado)
}

func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
