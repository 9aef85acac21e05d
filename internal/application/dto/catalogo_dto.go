package dto

// CatalogoResponse respuesta de GET /api/catalogos/:tipo.
type CatalogoResponse struct {
	Tipo  string            `json:"tipo"`
	Items []ItemCatalogoDTO `json:"items"`
}

// ItemCatalogoDTO fila de catálogo.
type ItemCatalogoDTO struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// GuardarItemCatalogoRequest body de POST /api/catalogos/:tipo y PUT /api/catalogos/:tipo/:id.
// Activo omitido vale true al crear y conserva el valor al actualizar.
type GuardarItemCatalogoRequest struct {
	Nombre string `json:"nombre" validate:"required,max=200"`
	Activo *bool  `json:"activo"`
}

// ItemCatalogoGuardadoResponse fila creada o actualizada.
type ItemCatalogoGuardadoResponse struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}

// AdjuntoSubidoResponse respuesta de POST /api/adjuntos.
type AdjuntoSubidoResponse struct {
	URL    string `json:"url"`
	Nombre string `json:"nombre"`
	Tamano int64  `json:"tamano"`
}
