package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmadistro/pedidos-api/internal/domain/entity"
)

// OrderLineRequest una línea del carrito en el alta de pedido.
type OrderLineRequest struct {
	ProductCode string `json:"product_code"`
	Quantity    int64  `json:"quantity"`
}

// CreateOrderRequest body para POST /api/orders (frontera con el checkout).
type CreateOrderRequest struct {
	ClientID string             `json:"client_id"`
	Notes    string             `json:"notes,omitempty"`
	Lines    []OrderLineRequest `json:"lines"`
}

// TransitionRequest body para PUT /api/orders/:id/transition. DeductStock
// nil equivale a true: entrar a PACKED descuenta stock salvo pedido
// explícito en contra.
type TransitionRequest struct {
	TargetState string `json:"target_state"`
	DeductStock *bool  `json:"deduct_stock,omitempty"`
}

// TransitionResponse estado resultante; Movement presente si la transición
// a PACKED descontó stock.
type TransitionResponse struct {
	OrderID  string                  `json:"order_id"`
	State    string                  `json:"state"`
	Movement *MovementResultResponse `json:"movement,omitempty"`
}

// RecordFoundRequest body para registrar la cantidad encontrada.
type RecordFoundRequest struct {
	Quantity int64 `json:"quantity"`
}

// ConfirmLineRequest body para confirmar una línea: debe repetir la
// cantidad ya registrada.
type ConfirmLineRequest struct {
	ProposedQuantity int64 `json:"proposed_quantity"`
}

// OrderLineDTO una línea del pedido con sus anotaciones de conciliación.
type OrderLineDTO struct {
	ProductCode  string          `json:"product_code"`
	Description  string          `json:"description"`
	OrderedQty   int64           `json:"ordered_quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountTier string          `json:"discount_tier,omitempty"`
	FoundQty     *int64          `json:"found_quantity"`
	Confirmed    bool            `json:"confirmed"`
	Completeness string          `json:"completeness,omitempty"`
}

// OrderDTO pedido completo para la UI.
type OrderDTO struct {
	OrderID   string         `json:"order_id"`
	ClientID  string         `json:"client_id"`
	State     string         `json:"state"`
	Notes     string         `json:"notes,omitempty"`
	Lines     []OrderLineDTO `json:"lines"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewOrderLineDTO mapea la línea a su DTO.
func NewOrderLineDTO(l *entity.OrderLine) OrderLineDTO {
	return OrderLineDTO{
		ProductCode:  l.ProductCode,
		Description:  l.Description,
		OrderedQty:   l.OrderedQty,
		UnitPrice:    l.UnitPrice,
		DiscountTier: l.DiscountTier,
		FoundQty:     l.FoundQty,
		Confirmed:    l.Confirmed,
		Completeness: string(l.Completeness),
	}
}

// NewOrderDTO mapea el pedido a su DTO.
func NewOrderDTO(o *entity.Order) OrderDTO {
	out := OrderDTO{
		OrderID:   o.ID,
		ClientID:  o.ClientID,
		State:     string(o.State),
		Notes:     o.Notes,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for i := range o.Lines {
		out.Lines = append(out.Lines, NewOrderLineDTO(&o.Lines[i]))
	}
	return out
}
