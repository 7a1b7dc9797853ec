package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnknownProduct       = errors.New("producto no registrado")
	ErrInvalidQuantity      = errors.New("cantidad inválida")
	ErrEmptyBatch           = errors.New("movimiento sin líneas")
	ErrDuplicateProductLine = errors.New("producto duplicado en las líneas")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInvalidTransition    = errors.New("transición de estado inválida")
	ErrOrderNotPicking      = errors.New("el pedido no está en preparación")
	ErrLineAlreadyConfirmed = errors.New("línea ya confirmada")
	ErrLineNotRecorded      = errors.New("línea sin cantidad encontrada registrada")
	ErrQuantityMismatch     = errors.New("la cantidad propuesta no coincide con la registrada")
	ErrConflict             = errors.New("conflicto con el estado actual")
)

// ReconciliationIncompleteError indica que el pedido aún tiene líneas sin
// confirmar. Pending lista los códigos de producto pendientes, en el orden
// de las líneas del pedido.
type ReconciliationIncompleteError struct {
	OrderID string
	Pending []string
}

func (e *ReconciliationIncompleteError) Error() string {
	return fmt.Sprintf("pedido %s con líneas sin confirmar: %s",
		e.OrderID, strings.Join(e.Pending, ", "))
}
