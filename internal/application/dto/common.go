package dto

// PageRequest paginación 1-based para listados (/api/Part/{page}/{perPage}).
type PageRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"perPage"`
}

// Normalize aplica valores por defecto y límites: page >= 1, perPage en [1, 100].
func (p *PageRequest) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = 20
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

// Offset filas a saltar.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Ok respuesta literal de las mutaciones de instalación y recepción.
const Ok = "Ok"
