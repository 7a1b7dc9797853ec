package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderState estado del ciclo de vida de un pedido.
type OrderState string

const (
	OrderStateCreated   OrderState = "CREATED"
	OrderStatePending   OrderState = "PENDING" // pendiente: aceptado en la cola de preparación
	OrderStatePicking   OrderState = "PICKING"
	OrderStatePacked    OrderState = "PACKED" // armado
	OrderStateShipped   OrderState = "SHIPPED"
	OrderStateDelivered OrderState = "DELIVERED"
	OrderStateCancelled OrderState = "CANCELLED"
)

// validNext grafo de transiciones permitidas. CANCELLED es alcanzable desde
// cualquier estado no terminal; DELIVERED y CANCELLED son terminales.
var validNext = map[OrderState]map[OrderState]bool{
	OrderStateCreated:   {OrderStatePending: true, OrderStateCancelled: true},
	OrderStatePending:   {OrderStatePicking: true, OrderStateCancelled: true},
	OrderStatePicking:   {OrderStatePacked: true, OrderStateCancelled: true},
	OrderStatePacked:    {OrderStateShipped: true, OrderStateCancelled: true},
	OrderStateShipped:   {OrderStateDelivered: true, OrderStateCancelled: true},
	OrderStateDelivered: {},
	OrderStateCancelled: {},
}

// Valid indica si s es un estado conocido.
func (s OrderState) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CanTransitionTo indica si la transición s -> to está en el grafo.
func (s OrderState) CanTransitionTo(to OrderState) bool {
	return validNext[s][to]
}

// Terminal indica si el estado no admite más transiciones.
func (s OrderState) Terminal() bool {
	return len(validNext[s]) == 0
}

// Completeness clasificación de una línea conciliada.
type Completeness string

const (
	CompletenessComplete   Completeness = "COMPLETE"   // encontrado == pedido
	CompletenessIncomplete Completeness = "INCOMPLETE" // encontrado < pedido
	CompletenessSurplus    Completeness = "SURPLUS"    // encontrado > pedido
)

// OrderLine una línea de producto dentro de un pedido. Description y
// UnitPrice son copias desnormalizadas tomadas del catálogo al crear el
// pedido. FoundQty nil significa "todavía no contado".
type OrderLine struct {
	ProductCode  string
	Description  string
	OrderedQty   int64
	UnitPrice    decimal.Decimal
	DiscountTier string
	FoundQty     *int64
	Confirmed    bool
	Completeness Completeness // vacío mientras la línea no esté confirmada
}

// ClassifyCompleteness deriva la clasificación de la línea a partir de
// FoundQty. Indefinida (vacía) mientras no haya cantidad registrada.
func (l *OrderLine) ClassifyCompleteness() Completeness {
	if l.FoundQty == nil {
		return ""
	}
	switch {
	case *l.FoundQty == l.OrderedQty:
		return CompletenessComplete
	case *l.FoundQty > l.OrderedQty:
		return CompletenessSurplus
	}
	return CompletenessIncomplete
}

// Order agregado de fulfillment: estado del pedido más sus líneas.
type Order struct {
	ID        string
	ClientID  string
	State     OrderState
	Notes     string
	Lines     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line devuelve la línea con ese código de producto, o nil.
func (o *Order) Line(productCode string) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ProductCode == productCode {
			return &o.Lines[i]
		}
	}
	return nil
}

// FullyReconciled indica si todas las líneas están confirmadas. Es la única
// guarda evaluada antes de permitir PICKING -> PACKED.
func (o *Order) FullyReconciled() bool {
	for i := range o.Lines {
		if !o.Lines[i].Confirmed {
			return false
		}
	}
	return true
}

// UnconfirmedCodes lista los códigos de producto de las líneas sin
// confirmar, en el orden de las líneas.
func (o *Order) UnconfirmedCodes() []string {
	var codes []string
	for i := range o.Lines {
		if !o.Lines[i].Confirmed {
			codes = append(codes, o.Lines[i].ProductCode)
		}
	}
	return codes
}
