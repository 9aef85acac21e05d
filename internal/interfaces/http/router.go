package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ordenes-api/internal/application/adjuntos"
	"github.com/jhoicas/ordenes-api/internal/application/auth"
	"github.com/jhoicas/ordenes-api/internal/application/catalogo"
	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC            *auth.AuthUseCase
	SolicitudUC       *solicitudes.SolicitudUseCase
	Leases            *solicitudes.LeaseManager
	MaterializarUC    *ordenes.MaterializarUseCase
	OrdenUC           *ordenes.OrdenUseCase
	PDFUC             *ordenes.PDFUseCase // nil: sin generación de PDF
	InconsistenciasUC *ordenes.InconsistenciasUseCase
	RevisionUC        *ordenes.RevisionUseCase
	CatalogoUC        *catalogo.CatalogoUseCase
	AdjuntoUC         *adjuntos.AdjuntoUseCase
	JWTSecret         string
	Log               zerolog.Logger
}

// Router registra las rutas de la API. Salvo /api/auth/login, todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	errs := errorHandler{log: deps.Log}
	publico := app.Group("/api", RequestID(deps.Log))

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, errs)
	publico.Post("/auth/login", authHandler.Login)

	api := publico.Group("", AuthMiddleware(deps.JWTSecret))
	soloCompras := RequireRole(jwt.RolComprador, jwt.RolAdmin)
	soloAdmin := RequireRole(jwt.RolAdmin)
	api.Post("/auth/cuentas", soloAdmin, authHandler.Register)

	// Solicitudes
	solicitudesGroup := api.Group("/solicitudes")
	solicitudHandler := NewSolicitudHandler(deps.SolicitudUC, deps.Leases, errs)
	solicitudesGroup.Get("/", solicitudHandler.List)
	solicitudesGroup.Post("/", solicitudHandler.Create)
	solicitudesGroup.Get("/:id", solicitudHandler.GetByID)
	solicitudesGroup.Put("/:id", solicitudHandler.Update)
	solicitudesGroup.Delete("/:id", solicitudHandler.Delete)
	solicitudesGroup.Post("/:id/lease", solicitudHandler.AcquireLease)
	solicitudesGroup.Delete("/:id/lease", solicitudHandler.ReleaseLease)

	// Órdenes
	ordenesGroup := api.Group("/ordenes")
	ordenHandler := NewOrdenHandler(deps.MaterializarUC, deps.OrdenUC, deps.PDFUC, deps.InconsistenciasUC, deps.RevisionUC, errs)
	ordenesGroup.Get("/", ordenHandler.List)
	ordenesGroup.Get("/inconsistencias", soloAdmin, ordenHandler.Inconsistencias)
	ordenesGroup.Post("/solicitud/:id", soloCompras, ordenHandler.Materializar)
	ordenesGroup.Get("/:id", ordenHandler.GetByID)
	ordenesGroup.Delete("/:id", soloAdmin, ordenHandler.Delete)
	ordenesGroup.Post("/:id/pdf", soloCompras, ordenHandler.RegenerarPDF)
	ordenesGroup.Post("/:id/aprobar", soloAdmin, ordenHandler.Aprobar)
	ordenesGroup.Post("/:id/rechazar", soloAdmin, ordenHandler.Rechazar)
	ordenesGroup.Put("/:id/nota", soloCompras, ordenHandler.ActualizarNota)

	// Catálogos
	catalogoHandler := NewCatalogoHandler(deps.CatalogoUC, errs)
	api.Get("/catalogos/:tipo", catalogoHandler.List)
	api.Post("/catalogos/:tipo", soloAdmin, catalogoHandler.Create)
	api.Put("/catalogos/:tipo/:id", soloAdmin, catalogoHandler.Update)

	// Adjuntos
	adjuntoHandler := NewAdjuntoHandler(deps.AdjuntoUC, errs)
	api.Post("/adjuntos", adjuntoHandler.Upload)
}
