package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/ordenes-api/internal/application/adjuntos"
	"github.com/jhoicas/ordenes-api/internal/application/auth"
	"github.com/jhoicas/ordenes-api/internal/application/catalogo"
	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/internal/domain/lease"
	"github.com/jhoicas/ordenes-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/ordenes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ordenes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ordenes-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/ordenes-api/internal/interfaces/http"
	"github.com/jhoicas/ordenes-api/pkg/config"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	zona, err := cfg.Ordenes.Zona()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria de la empresa")
	}

	ctx := context.Background()

	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Componente("migraciones")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Componente("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	solicitudRepo := postgres.NewSolicitudRepository(pool)
	ordenRepo := postgres.NewOrdenRepository(pool)
	catalogoRepo := postgres.NewCatalogoRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	clock := postgres.NewStoreClock(pool)

	authUC := auth.NewAuthUseCase(postgres.NewCuentaRepository(pool), clock, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Componente("auth"))
	if cfg.JWT.AdminCorreo != "" && cfg.JWT.AdminPassword != "" {
		if err := authUC.AsegurarAdmin(ctx, cfg.JWT.AdminCorreo, cfg.JWT.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("cuenta administradora inicial")
		}
	}

	// Almacenamiento de PDFs y adjuntos
	var blobs ports.BlobStore
	var localDir string
	switch cfg.Storage.Driver {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage, log.Componente("s3"))
		if err != nil {
			log.Fatal().Err(err).Msg("cliente S3")
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.S3Bucket).Msg("bucket S3")
		}
		blobs = s3Store
	default:
		localStore, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.LocalBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento local")
		}
		blobs = localStore
		localDir = localStore.Dir()
	}

	// Caché de catálogos (opcional)
	var catalogoCache catalogo.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, catálogos sin caché")
		} else {
			defer redisCache.Close()
			catalogoCache = redisCache
		}
	}

	// PDF: representación gráfica de la orden de compra
	var generador ordenes.GeneradorPDF
	switch cfg.PDF.Renderer {
	case "maroto":
		generador = infrapdf.NewMarotoGenerator()
	default:
		chrome := infrapdf.NewChromedpGenerator(infrapdf.ChromedpConfig{
			RemoteURL: cfg.PDF.ChromeRemoteURL,
			NoSandbox: cfg.PDF.ChromeNoSandbox,
			Timeout:   cfg.PDF.Timeout,
		}, log.Componente("chromedp"))
		defer chrome.Close()
		generador = chrome
	}

	leases := solicitudes.NewLeaseManager(solicitudRepo, clock, lease.Politica{
		Edicion: cfg.Ordenes.LeaseEdicion,
		Proceso: cfg.Ordenes.LeaseProceso,
	}, log.Componente("leases"))
	solicitudUC := solicitudes.NewSolicitudUseCase(solicitudRepo, leases, clock)

	pdfUC := ordenes.NewPDFUseCase(ordenRepo, solicitudRepo, catalogoRepo, generador, blobs, cfg.PDF.Timeout, log.Componente("pdf"))
	materializarUC := ordenes.NewMaterializarUseCase(txRunner, leases, clock, pdfUC, ordenes.Config{
		Zona:      zona,
		TxTimeout: cfg.Ordenes.TxTimeout,
	}, log.Componente("ordenes"))
	ordenUC := ordenes.NewOrdenUseCase(ordenRepo)
	inconsistenciasUC := ordenes.NewInconsistenciasUseCase(ordenRepo)
	revisionUC := ordenes.NewRevisionUseCase(ordenRepo, clock, log.Componente("revision"))
	catalogoUC := catalogo.NewCatalogoUseCase(catalogoRepo, catalogoCache, cfg.Ordenes.CatalogoTTL, log.Componente("catalogos"))
	adjuntoUC := adjuntos.NewAdjuntoUseCase(blobs, cfg.Ordenes.AdjuntoMaximo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.HTTP.MaxUploadSize + 1<<20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: cfg.App.SwaggerFile,
		Path:     "docs",
		Title:    "Órdenes de Compra API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if localDir != "" {
		app.Static("/archivos", localDir)
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:            authUC,
		SolicitudUC:       solicitudUC,
		Leases:            leases,
		MaterializarUC:    materializarUC,
		OrdenUC:           ordenUC,
		PDFUC:             pdfUC,
		InconsistenciasUC: inconsistenciasUC,
		RevisionUC:        revisionUC,
		CatalogoUC:        catalogoUC,
		AdjuntoUC:         adjuntoUC,
		JWTSecret:         cfg.JWT.Secret,
		Log:               log.Componente("http"),
	})

	// Reintentos de PDFs pendientes
	workerCtx, stopWorker := context.WithCancel(ctx)
	worker := ordenes.NewPDFRetryWorker(ordenRepo, pdfUC, cfg.PDF.ReintentoInterval, cfg.PDF.MaxIntentos, log.Componente("pdf-worker"))
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(workerCtx)
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stopWorker()
	<-workerDone
	pdfUC.Esperar()

	log.Info().Msg("aplicación detenida")
}
