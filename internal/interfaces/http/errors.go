package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/domain"
)

// MensajeSolicitudEnProceso respuesta cuando otro usuario tiene el lease.
const MensajeSolicitudEnProceso = "la solicitud está siendo procesada por otro usuario"

// errorHandler traduce errores de dominio a HTTP. Lo no previsto sale como 500 sin detalles internos.
type errorHandler struct {
	log zerolog.Logger
}

func (h errorHandler) responder(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error(), Field: verr.Campo})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrLeaseNotHeld):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LEASE_NOT_HELD", Message: domain.ErrLeaseNotHeld.Error()})
	case errors.Is(err, domain.ErrCambioTipoLease):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LEASE_OTRO_TIPO", Message: domain.ErrCambioTipoLease.Error()})
	case errors.Is(err, domain.ErrEstadoTerminal):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ESTADO_TERMINAL", Message: domain.ErrEstadoTerminal.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: domain.ErrConflict.Error()})
	case errors.Is(err, domain.ErrConfiguracion):
		h.log.Error().Err(err).Str("ruta", c.Path()).Msg("configuración incompleta")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "CONFIGURACION", Message: err.Error()})
	case errors.Is(err, domain.ErrTransaccion):
		h.log.Error().Err(err).Str("ruta", c.Path()).Msg("transacción fallida")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "REINTENTAR", Message: "no se pudo completar la operación, intente nuevamente"})
	case errors.Is(err, domain.ErrDownstream):
		h.log.Warn().Err(err).Str("ruta", c.Path()).Msg("servicio externo")
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "DOWNSTREAM", Message: "falló un servicio externo, intente más tarde"})
	default:
		h.log.Error().Err(err).Str("ruta", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func solicitudEnProceso(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SOLICITUD_EN_PROCESO", Message: MensajeSolicitudEnProceso})
}

func cuerpoInvalido(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func idInvalido(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido", Field: "id"})
}
