package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
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

// ErrorResponse cuerpo de error HTTP. PendingCodes solo se llena cuando la
// falla lista productos específicos (conciliación incompleta).
type ErrorResponse struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	PendingCodes []string `json:"pending_codes,omitempty"`
}
