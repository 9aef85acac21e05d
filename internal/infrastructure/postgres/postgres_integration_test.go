//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/lease"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
	"github.com/jhoicas/ordenes-api/pkg/config"
)

// nuevoPool levanta un PostgreSQL desechable, aplica las migraciones y siembra catálogos mínimos.
func nuevoPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ordenes_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, Migrate(dsn, zerolog.Nop()))
	// Segunda pasada: no hay cambios y no es error.
	require.NoError(t, Migrate(dsn, zerolog.Nop()))

	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		INSERT INTO empresas (id, nombre) VALUES (1, 'Empresa uno');
		INSERT INTO proveedores (id, nombre) VALUES (1, 'Proveedor uno');
		INSERT INTO proveedores (id, nombre, activo) VALUES (2, 'Proveedor inactivo', FALSE);
		INSERT INTO bancos (id, nombre) VALUES (1, 'Banco uno');
		INSERT INTO plazos_pago (id, descripcion, dias) VALUES (1, '30 días', 30);
		INSERT INTO centros_costo (id, nombre) VALUES (1, 'Administración');
		INSERT INTO tipos_orden (id, nombre) VALUES (1, 'Compra nacional');
		INSERT INTO cuentas (id, nombre) VALUES (1, 'Cuenta uno');
		INSERT INTO productos (id, nombre) VALUES (1, 'Resma carta'), (2, 'Tóner negro');
		INSERT INTO reglas_tarifa (tipo_orden_id, nombre, clase, magnitud) VALUES
			(1, 'IVA', 'porcentaje', 16), (1, 'Impuesto', 'porcentaje', 16),
			(1, 'Retención', 'porcentaje', 5), (1, 'Propina', 'fijo', 50);`)
	require.NoError(t, err)
	return pool
}

func crearSolicitud(t *testing.T, pool *pgxpool.Pool) *entity.Solicitud {
	t.Helper()
	now := time.Now().UTC()
	s := &entity.Solicitud{
		Asunto:             "Insumos de oficina",
		UsuarioSolicitante: "ana",
		Adjuntos:           []entity.Adjunto{{URL: "https://files.local/a.pdf"}},
		Estado:             entity.EstadoAbierta,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, NewSolicitudRepository(pool).Create(context.Background(), s))
	return s
}

// ─── Lease ──────────────────────────────────────────────────────────────────

func TestSolicitudRepo_CompareAndSwapLease(t *testing.T) {
	pool := nuevoPool(t)
	ctx := context.Background()
	repo := NewSolicitudRepository(pool)
	clock := NewStoreClock(pool)
	s := crearSolicitud(t, pool)

	now, err := clock.Now(ctx)
	require.NoError(t, err)
	nuevo := lease.Nuevo(entity.EstadoProcesando, "ana", now)

	ok, err := repo.CompareAndSwapLease(ctx, s.ID, s.LeaseActual(), nuevo)
	require.NoError(t, err)
	assert.True(t, ok)

	// El lease esperado ya no coincide: el segundo escritor pierde.
	ok, err = repo.CompareAndSwapLease(ctx, s.ID, s.LeaseActual(), lease.Nuevo(entity.EstadoProcesando, "beto", now))
	require.NoError(t, err)
	assert.False(t, ok)

	leida, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoProcesando, leida.Estado)
	assert.Equal(t, "ana", leida.LeasedBy)
	require.NotNil(t, leida.LeasedAt)
	assert.Len(t, leida.Adjuntos, 1)

	// Volver a abierta con el lease leído.
	ok, err = repo.CompareAndSwapLease(ctx, s.ID, leida.LeaseActual(), entity.LeaseLibre(entity.EstadoAbierta))
	require.NoError(t, err)
	assert.True(t, ok)
	leida, err = repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, leida.LeasedAt)
	assert.Empty(t, leida.LeasedBy)
}

func TestSolicitudRepo_CheckRechazaLeaseIncoherente(t *testing.T) {
	pool := nuevoPool(t)
	s := crearSolicitud(t, pool)

	_, err := pool.Exec(context.Background(),
		`UPDATE solicitudes SET estado = 'editando' WHERE id = $1`, s.ID)
	assert.Error(t, err)
}

func TestLeaseManager_ConcurrenciaUnSoloGanador(t *testing.T) {
	pool := nuevoPool(t)
	s := crearSolicitud(t, pool)
	m := solicitudes.NewLeaseManager(NewSolicitudRepository(pool), NewStoreClock(pool), lease.PoliticaPorDefecto(), zerolog.Nop())

	var wg sync.WaitGroup
	var mu sync.Mutex
	ganadores := 0
	for _, u := range []string{"ana", "beto", "carla", "dani", "eva", "fede"} {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			res, err := m.AdquirirLease(context.Background(), s.ID, entity.EstadoProcesando, u)
			if err == nil && res.Otorgado {
				mu.Lock()
				ganadores++
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()
	assert.Equal(t, 1, ganadores)
}

// ─── Materialización ────────────────────────────────────────────────────────

func TestMaterializar_ContraPostgres(t *testing.T) {
	pool := nuevoPool(t)
	ctx := context.Background()
	s := crearSolicitud(t, pool)
	clock := NewStoreClock(pool)
	m := solicitudes.NewLeaseManager(NewSolicitudRepository(pool), clock, lease.PoliticaPorDefecto(), zerolog.Nop())
	uc := ordenes.NewMaterializarUseCase(NewTxRunner(pool), m, clock, nil, ordenes.Config{Zona: time.UTC}, zerolog.Nop())

	res, err := m.AdquirirLease(ctx, s.ID, entity.EstadoProcesando, "ana")
	require.NoError(t, err)
	require.True(t, res.Otorgado)

	in := dto.MaterializarRequest{
		ProveedorID: 1, BancoID: 1, PlazoPagoID: 1, EmpresaID: 1, CentroCostoID: 1,
		TipoOrdenID: 1, MonedaID: 1, CuentaID: 1,
		Items: []dto.ItemOrdenRequest{
			{ProductoID: 1, PrecioUnitario: decimal.NewFromInt(100), Cantidad: 5},
			{ProductoID: 2, PrecioUnitario: decimal.NewFromInt(250), Cantidad: 2},
		},
	}
	out, err := uc.Materializar(ctx, s.ID, entity.Usuario{ID: "ana"}, in)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(out.Subtotal))
	assert.Regexp(t, `^OC-\d{8}-\d{6}$`, out.Codigo)

	orden, err := NewOrdenRepository(pool).GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Codigo, orden.Codigo)
	detalles, err := NewOrdenRepository(pool).GetDetalles(ctx, out.ID)
	require.NoError(t, err)
	assert.Len(t, detalles, 2)

	sol, err := NewSolicitudRepository(pool).GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoOrdenada, sol.Estado)

	pendientes, err := NewOrdenRepository(pool).ListPendientesPDF(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{out.ID}, pendientes)
}

func TestOrdenRepo_SegundaOrdenDeLaSolicitudEsConflicto(t *testing.T) {
	pool := nuevoPool(t)
	ctx := context.Background()
	s := crearSolicitud(t, pool)
	repo := NewOrdenRepository(pool)

	nueva := func() *entity.Orden {
		return &entity.Orden{
			SolicitudID: s.ID, ProveedorID: 1, BancoID: 1, MonedaID: 1, EmpresaID: 1, CentroCostoID: 1,
			PlazoPagoID: 1, TipoOrdenID: 1, CuentaID: 1,
			Subtotal: decimal.Zero, Impuesto: decimal.Zero, Retencion: decimal.Zero, Propina: decimal.Zero,
			Total: decimal.Zero, TotalLocal: decimal.Zero, TipoCambio: decimal.NewFromInt(1),
			NivelAprobacion: entity.NivelAprobacionPendiente, UsuarioCreador: "ana",
			FechaVencimiento: time.Now().UTC(), CreadoEn: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
	}
	require.NoError(t, repo.Create(ctx, nueva()))
	err := repo.Create(ctx, nueva())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTxRunner_ErrorRevierteTodo(t *testing.T) {
	pool := nuevoPool(t)
	ctx := context.Background()
	s := crearSolicitud(t, pool)
	falla := errors.New("falla a mitad de la transacción")

	err := NewTxRunner(pool).RunOrden(ctx, func(
		_ repository.SolicitudRepository,
		ordenRepo repository.OrdenRepository,
		_ repository.CatalogoRepository,
		_ repository.ReglaTarifaRepository,
	) error {
		o := &entity.Orden{
			SolicitudID: s.ID, ProveedorID: 1, BancoID: 1, MonedaID: 1, EmpresaID: 1, CentroCostoID: 1,
			PlazoPagoID: 1, TipoOrdenID: 1, CuentaID: 1,
			Subtotal: decimal.Zero, Impuesto: decimal.Zero, Retencion: decimal.Zero, Propina: decimal.Zero,
			Total: decimal.Zero, TotalLocal: decimal.Zero, TipoCambio: decimal.NewFromInt(1),
			NivelAprobacion: entity.NivelAprobacionPendiente, UsuarioCreador: "ana",
			FechaVencimiento: time.Now().UTC(), CreadoEn: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		require.NoError(t, ordenRepo.Create(ctx, o))
		return falla
	})
	assert.ErrorIs(t, err, falla)

	existe, err := NewOrdenRepository(pool).ExistsBySolicitud(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, existe)
}

func TestCatalogoRepo_ListarYReglas(t *testing.T) {
	pool := nuevoPool(t)
	ctx := context.Background()
	cat := NewCatalogoRepository(pool)

	items, err := cat.Listar(ctx, entity.CatalogoProveedores)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[0].Activo) // "Proveedor inactivo" ordena primero

	monedas, err := cat.Listar(ctx, entity.CatalogoMonedas)
	require.NoError(t, err)
	assert.Equal(t, "CLP - Peso chileno", monedas[0].Nombre)

	local, err := cat.GetMonedaLocal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CLP", local.Codigo)
	assert.Equal(t, int32(0), local.Decimales)

	reglas, err := NewReglaTarifaRepository(pool).ListByTipoOrden(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reglas, 4)
	assert.Equal(t, entity.ReglaDesconocida, reglas[0].Nombre)
	assert.Equal(t, entity.ReglaRetencion, reglas[2].Nombre)

	_, err = cat.Listar(ctx, entity.Catalogo("otra"))
	assert.Error(t, err)
}

func TestOrdenRepo_RevisionCondicional(t *testing.T) {
	pool := nuevoPool(t)
	ctx := context.Background()
	s := crearSolicitud(t, pool)
	repo := NewOrdenRepository(pool)
	ahora := time.Now().UTC()
	o := &entity.Orden{
		SolicitudID: s.ID, ProveedorID: 1, BancoID: 1, MonedaID: 1, EmpresaID: 1, CentroCostoID: 1,
		PlazoPagoID: 1, TipoOrdenID: 1, CuentaID: 1,
		Subtotal: decimal.Zero, Impuesto: decimal.Zero, Retencion: decimal.Zero, Propina: decimal.Zero,
		Total: decimal.Zero, TotalLocal: decimal.Zero, TipoCambio: decimal.NewFromInt(1),
		NivelAprobacion: entity.NivelAprobacionPendiente, UsuarioCreador: "Ana", CreadoPor: "ana",
		FechaVencimiento: ahora, CreadoEn: ahora, UpdatedAt: ahora,
	}
	require.NoError(t, repo.Create(ctx, o))

	ok, err := repo.Aprobar(ctx, o.ID, entity.NivelAprobacionPendiente, ahora)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Aprobar(ctx, o.ID, entity.NivelAprobacionPendiente, ahora)
	require.NoError(t, err)
	assert.False(t, ok, "el nivel ya cambió")

	ok, err = repo.ActualizarNota(ctx, o.ID, "tarde", ahora)
	require.NoError(t, err)
	assert.False(t, ok, "la orden ya fue aprobada")

	ok, err = repo.Rechazar(ctx, o.ID, "sin presupuesto", ahora)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Eliminar(ctx, o.ID, "duplicada", ahora)
	require.NoError(t, err)
	assert.True(t, ok)

	leida, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, leida.NivelAprobacion)
	assert.Equal(t, "sin presupuesto", leida.JustificacionRechazo)
	assert.True(t, leida.Eliminada)
	assert.Equal(t, "ana", leida.CreadoPor)

	lista, total, err := repo.List(ctx, repository.FiltroOrdenes{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, lista)
	assert.Zero(t, total)
}

func TestCatalogoRepo_CrearYActualizarItem(t *testing.T) {
	pool := nuevoPool(t)
	ctx := context.Background()
	cat := NewCatalogoRepository(pool)

	item := entity.ItemCatalogo{Nombre: "Papelería", Activo: true}
	require.NoError(t, cat.CrearItem(ctx, entity.CatalogoCategorias, &item))
	require.NotZero(t, item.ID)

	item.Activo = false
	ok, err := cat.ActualizarItem(ctx, entity.CatalogoCategorias, item)
	require.NoError(t, err)
	assert.True(t, ok)

	leido, err := cat.ObtenerItem(ctx, entity.CatalogoCategorias, item.ID)
	require.NoError(t, err)
	assert.False(t, leido.Activo)

	ok, err = cat.ActualizarItem(ctx, entity.CatalogoCategorias, entity.ItemCatalogo{ID: 9999, Nombre: "x"})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, cat.CrearItem(ctx, entity.CatalogoMonedas, &entity.ItemCatalogo{Nombre: "EUR"}))
}
