package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// SolicitudHandler maneja las peticiones HTTP de solicitudes (protegido).
type SolicitudHandler struct {
	uc     *solicitudes.SolicitudUseCase
	leases *solicitudes.LeaseManager
	errs   errorHandler
}

// NewSolicitudHandler construye el handler.
func NewSolicitudHandler(uc *solicitudes.SolicitudUseCase, leases *solicitudes.LeaseManager, errs errorHandler) *SolicitudHandler {
	return &SolicitudHandler{uc: uc, leases: leases, errs: errs}
}

// Create registra una solicitud nueva (estado abierta).
// POST /api/solicitudes
func (h *SolicitudHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearSolicitudRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.Crear(c.UserContext(), GetUsuario(c), in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List lista solicitudes con paginación y filtro opcional por estado.
// GET /api/solicitudes?estado=&limit=&offset=
func (h *SolicitudHandler) List(c *fiber.Ctx) error {
	var in dto.ListarSolicitudesRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Listar(c.UserContext(), in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// GetByID lee la solicitud; si su lease expiró vuelve a abierta antes de responder.
// GET /api/solicitudes/:id
func (h *SolicitudHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	out, err := h.uc.Obtener(c.UserContext(), int64(id))
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// Update modifica asunto, descripción y adjuntos. Requiere el lease de edición vigente.
// PUT /api/solicitudes/:id
func (h *SolicitudHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	var in dto.ActualizarSolicitudRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.Actualizar(c.UserContext(), int64(id), GetUserID(c), in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// AcquireLease toma (o renueva) el lease de edición o de proceso.
// Si otro usuario lo tiene responde 409 SOLICITUD_EN_PROCESO.
// POST /api/solicitudes/:id/lease
func (h *SolicitudHandler) AcquireLease(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	var in dto.LeaseRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	tipo := entity.EstadoSolicitud(in.Tipo)
	if tipo == entity.EstadoProcesando && !puedeProcesar(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sólo compradores pueden procesar solicitudes"})
	}
	res, err := h.leases.AdquirirLease(c.UserContext(), int64(id), tipo, GetUserID(c))
	if err != nil {
		return h.errs.responder(c, err)
	}
	if !res.Otorgado {
		return solicitudEnProceso(c)
	}
	return c.JSON(dto.LeaseResponse{Otorgado: true, Solicitud: solicitudes.ToResponse(res.Solicitud)})
}

// ReleaseLease devuelve la solicitud a abierta.
// DELETE /api/solicitudes/:id/lease
func (h *SolicitudHandler) ReleaseLease(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	if err := h.leases.Liberar(c.UserContext(), int64(id), GetUserID(c)); err != nil {
		return h.errs.responder(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete elimina lógicamente la solicitud con justificación.
// DELETE /api/solicitudes/:id
func (h *SolicitudHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	var in dto.EliminarSolicitudRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	if err := h.leases.Eliminar(c.UserContext(), int64(id), in.Justificacion, GetUserID(c)); err != nil {
		return h.errs.responder(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
