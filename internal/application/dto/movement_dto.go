package dto

import (
	"time"

	"github.com/farmadistro/pedidos-api/internal/domain/entity"
)

// MovementLineRequest una línea del movimiento a aplicar.
type MovementLineRequest struct {
	ProductCode string `json:"product_code"`
	Quantity    int64  `json:"quantity"`
}

// ApplyMovementRequest body para POST /api/movements. MovementID es
// opcional: fijarlo hace idempotentes los reintentos del cliente.
type ApplyMovementRequest struct {
	MovementID     string                `json:"movement_id,omitempty"`
	Type           string                `json:"type"`
	Notes          string                `json:"notes,omitempty"`
	SourceDocument string                `json:"source_document,omitempty"`
	Lines          []MovementLineRequest `json:"lines"`
}

// MovementResultResponse resultado de aplicar un movimiento: cantidad
// post-movimiento de cada producto afectado.
type MovementResultResponse struct {
	MovementID string           `json:"movement_id"`
	CreatedAt  time.Time        `json:"created_at"`
	Quantities map[string]int64 `json:"quantities"`
}

// MovementLineDTO línea persistida del libro, con el antes y el después.
type MovementLineDTO struct {
	ProductCode string `json:"product_code"`
	Quantity    int64  `json:"quantity"`
	PreviousQty int64  `json:"previous_qty"`
	NewQty      int64  `json:"new_qty"`
}

// MovementDTO un asiento del libro de movimientos.
type MovementDTO struct {
	MovementID     string            `json:"movement_id"`
	Type           string            `json:"type"`
	Actor          string            `json:"actor"`
	Notes          string            `json:"notes,omitempty"`
	SourceDocument string            `json:"source_document,omitempty"`
	Lines          []MovementLineDTO `json:"lines"`
	CreatedAt      time.Time         `json:"created_at"`
}

// NewMovementDTO mapea la entidad al DTO de respuesta.
func NewMovementDTO(m *entity.StockMovement) MovementDTO {
	out := MovementDTO{
		MovementID:     m.ID,
		Type:           string(m.Type),
		Actor:          m.Actor,
		Notes:          m.Notes,
		SourceDocument: m.SourceDocument,
		CreatedAt:      m.CreatedAt,
	}
	for _, l := range m.Lines {
		out.Lines = append(out.Lines, MovementLineDTO{
			ProductCode: l.ProductCode,
			Quantity:    l.Quantity,
			PreviousQty: l.PreviousQty,
			NewQty:      l.NewQty,
		})
	}
	return out
}
