package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
	"github.com/jhoicas/ordenes-api/pkg/jwt"
)

// OrdenHandler maneja las peticiones HTTP de órdenes de compra (protegido).
type OrdenHandler struct {
	materializar    *ordenes.MaterializarUseCase
	consulta        *ordenes.OrdenUseCase
	pdf             *ordenes.PDFUseCase
	inconsistencias *ordenes.InconsistenciasUseCase
	revision        *ordenes.RevisionUseCase
	errs            errorHandler
}

// NewOrdenHandler construye el handler. pdf puede ser nil (sin generación de PDF).
func NewOrdenHandler(
	materializar *ordenes.MaterializarUseCase,
	consulta *ordenes.OrdenUseCase,
	pdf *ordenes.PDFUseCase,
	inconsistencias *ordenes.InconsistenciasUseCase,
	revision *ordenes.RevisionUseCase,
	errs errorHandler,
) *OrdenHandler {
	return &OrdenHandler{
		materializar: materializar, consulta: consulta, pdf: pdf,
		inconsistencias: inconsistencias, revision: revision, errs: errs,
	}
}

// Materializar convierte la solicitud en proceso en una orden de compra.
// POST /api/ordenes/solicitud/:id
func (h *OrdenHandler) Materializar(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	var in dto.MaterializarRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.materializar.Materializar(c.UserContext(), int64(id), GetUsuario(c), in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List lista órdenes filtrando por solicitud o proveedor.
// GET /api/ordenes?solicitud_id=&proveedor_id=&limit=&offset=
func (h *OrdenHandler) List(c *fiber.Ctx) error {
	var in dto.ListarOrdenesRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.consulta.Listar(c.UserContext(), in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// GetByID orden con sus detalles.
// GET /api/ordenes/:id
func (h *OrdenHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	out, err := h.consulta.Obtener(c.UserContext(), int64(id))
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// RegenerarPDF genera el PDF de forma síncrona; si ya existe devuelve la ruta guardada.
// POST /api/ordenes/:id/pdf
func (h *OrdenHandler) RegenerarPDF(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	if h.pdf == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "PDF_DESHABILITADO", Message: "la generación de PDF no está configurada"})
	}
	ruta, err := h.pdf.GenerarYGuardar(c.UserContext(), int64(id))
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(dto.PDFResponse{OrdenID: int64(id), RutaPDF: ruta})
}

// Inconsistencias solicitudes con orden confirmada que no quedaron ordenadas (sólo admin).
// GET /api/ordenes/inconsistencias
func (h *OrdenHandler) Inconsistencias(c *fiber.Ctx) error {
	out, err := h.inconsistencias.Listar(c.UserContext())
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// Aprobar sube un nivel de aprobación (sólo admin).
// POST /api/ordenes/:id/aprobar
func (h *OrdenHandler) Aprobar(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	out, err := h.revision.Aprobar(c.UserContext(), int64(id), GetUserID(c))
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// Rechazar rechaza la orden con justificación (sólo admin).
// POST /api/ordenes/:id/rechazar
func (h *OrdenHandler) Rechazar(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	var in dto.RechazarOrdenRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.revision.Rechazar(c.UserContext(), int64(id), GetUserID(c), in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// ActualizarNota corrige la nota del creador mientras la orden está pendiente.
// PUT /api/ordenes/:id/nota
func (h *OrdenHandler) ActualizarNota(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	var in dto.NotaOrdenRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.revision.ActualizarNota(c.UserContext(), int64(id), GetUserID(c), GetRole(c) == jwt.RolAdmin, in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// Delete elimina lógicamente la orden con justificación (sólo admin).
// DELETE /api/ordenes/:id
func (h *OrdenHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	var in dto.EliminarOrdenRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	if err := h.revision.Eliminar(c.UserContext(), int64(id), GetUserID(c), in); err != nil {
		return h.errs.responder(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
