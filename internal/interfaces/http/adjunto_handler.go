package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/adjuntos"
	"github.com/jhoicas/ordenes-api/internal/application/dto"
)

// CampoArchivo nombre del campo multipart con el archivo.
const CampoArchivo = "archivo"

// AdjuntoHandler sube archivos adjuntos de solicitudes y cotizaciones.
type AdjuntoHandler struct {
	uc   *adjuntos.AdjuntoUseCase
	errs errorHandler
}

// NewAdjuntoHandler construye el handler.
func NewAdjuntoHandler(uc *adjuntos.AdjuntoUseCase, errs errorHandler) *AdjuntoHandler {
	return &AdjuntoHandler{uc: uc, errs: errs}
}

// Upload POST /api/adjuntos (multipart/form-data, campo "archivo").
func (h *AdjuntoHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile(CampoArchivo)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "archivo requerido", Field: CampoArchivo})
	}
	f, err := fh.Open()
	if err != nil {
		return h.errs.responder(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return h.errs.responder(c, err)
	}
	out, err := h.uc.Subir(c.UserContext(), fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
