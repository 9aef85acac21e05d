package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/catalogo"
	"github.com/jhoicas/ordenes-api/internal/application/dto"
)

// CatalogoHandler listas de referencia para los formularios y su mantenimiento.
type CatalogoHandler struct {
	uc   *catalogo.CatalogoUseCase
	errs errorHandler
}

// NewCatalogoHandler construye el handler.
func NewCatalogoHandler(uc *catalogo.CatalogoUseCase, errs errorHandler) *CatalogoHandler {
	return &CatalogoHandler{uc: uc, errs: errs}
}

// List GET /api/catalogos/:tipo
func (h *CatalogoHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.Listar(c.UserContext(), c.Params("tipo"))
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}

// Create agrega una fila al catálogo (sólo admin).
// POST /api/catalogos/:tipo
func (h *CatalogoHandler) Create(c *fiber.Ctx) error {
	var in dto.GuardarItemCatalogoRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.Crear(c.UserContext(), c.Params("tipo"), in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update renombra o activa/desactiva una fila (sólo admin).
// PUT /api/catalogos/:tipo/:id
func (h *CatalogoHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return idInvalido(c)
	}
	var in dto.GuardarItemCatalogoRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.Actualizar(c.UserContext(), c.Params("tipo"), int64(id), in)
	if err != nil {
		return h.errs.responder(c, err)
	}
	return c.JSON(out)
}
