package dto

import "time"

// AdjuntoDTO archivo adjunto de una solicitud.
type AdjuntoDTO struct {
	URL       string `json:"url" validate:"required,url"`
	Eliminado bool   `json:"eliminado"`
}

// CrearSolicitudRequest body para POST /api/solicitudes.
type CrearSolicitudRequest struct {
	Asunto      string       `json:"asunto" validate:"required,max=255"`
	Descripcion string       `json:"descripcion" validate:"required"`
	Adjuntos    []AdjuntoDTO `json:"adjuntos" validate:"dive"`
}

// ActualizarSolicitudRequest body para PUT /api/solicitudes/:id (requiere lease de edición).
type ActualizarSolicitudRequest struct {
	Asunto      string       `json:"asunto" validate:"required,max=255"`
	Descripcion string       `json:"descripcion" validate:"required"`
	Adjuntos    []AdjuntoDTO `json:"adjuntos" validate:"dive"`
}

// LeaseRequest body para POST /api/solicitudes/:id/lease.
type LeaseRequest struct {
	Tipo string `json:"tipo" validate:"required,oneof=editando procesando"`
}

// EliminarSolicitudRequest body para DELETE /api/solicitudes/:id.
type EliminarSolicitudRequest struct {
	Justificacion string `json:"justificacion" validate:"required,max=1000"`
}

// ListarSolicitudesRequest query de GET /api/solicitudes.
type ListarSolicitudesRequest struct {
	PageRequest
	Estado string `query:"estado" validate:"omitempty,oneof=abierta editando procesando ordenada"`
}

// SolicitudResponse solicitud en respuestas.
type SolicitudResponse struct {
	ID                 int64        `json:"id"`
	Asunto             string       `json:"asunto"`
	Descripcion        string       `json:"descripcion"`
	UsuarioSolicitante string       `json:"usuario_solicitante"`
	CorreoSolicitante  string       `json:"correo_solicitante,omitempty"`
	Adjuntos           []AdjuntoDTO `json:"adjuntos"`
	Estado             string       `json:"estado"`
	LeasedAt           *time.Time   `json:"leased_at,omitempty"`
	LeasedBy           string       `json:"leased_by,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// ListaSolicitudesResponse respuesta de GET /api/solicitudes.
type ListaSolicitudesResponse struct {
	Items []SolicitudResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// LeaseResponse resultado de pedir un lease. Otorgado=false no es un error: la solicitud la tiene otro usuario.
type LeaseResponse struct {
	Otorgado  bool              `json:"otorgado"`
	Solicitud SolicitudResponse `json:"solicitud"`
}
