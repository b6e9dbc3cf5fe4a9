package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// Envelope es el sobre de todas las respuestas HTTP: {success, data, message, code}.
// Los clientes tratan data ausente como resultado vacío.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// OK construye un sobre exitoso.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// ErrorResponse cuerpo de error HTTP (se envía dentro del sobre con success=false).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Fail construye un sobre de error.
func Fail(code, message string) Envelope {
	return Envelope{Success: false, Data: nil, Code: code, Message: message}
}
