package fulfillment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmadistro/pedidos-api/internal/application/fulfillment"
	"github.com/farmadistro/pedidos-api/internal/domain"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
)

func confirmedLine(code string, ordered, found int64) entity.OrderLine {
	qty := found
	line := entity.OrderLine{ProductCode: code, OrderedQty: ordered, FoundQty: &qty, Confirmed: true}
	line.Completeness = line.ClassifyCompleteness()
	return line
}

func TestTransition_CadenaFeliz(t *testing.T) {
	s := newMemState()
	s.addOrder(&entity.Order{ID: "ped-1", ClientID: "cli-1", State: entity.OrderStateCreated,
		Lines: []entity.OrderLine{{ProductCode: "IBU-400", OrderedQty: 5}}})
	uc := fulfillment.NewTransitionUseCase(&memTxRunner{s})
	ctx := context.Background()

	for _, target := range []entity.OrderState{entity.OrderStatePending, entity.OrderStatePicking} {
		result, err := uc.Transition(ctx, fulfillment.TransitionInput{OrderID: "ped-1", Target: target})
		require.NoError(t, err)
		assert.Equal(t, target, result.State)
		assert.Nil(t, result.Movement)
		assert.Equal(t, target, s.orders["ped-1"].State)
	}
}

func TestTransition_Rechazos(t *testing.T) {
	s := newMemState()
	s.addOrder(&entity.Order{ID: "ped-1", State: entity.OrderStateCreated})
	s.addOrder(&entity.Order{ID: "ped-2", State: entity.OrderStateCancelled})
	uc := fulfillment.NewTransitionUseCase(&memTxRunner{s})
	ctx := context.Background()

	// Salto de estados
	_, err := uc.Transition(ctx, fulfillment.TransitionInput{OrderID: "ped-1", Target: entity.OrderStatePicking})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, entity.OrderStateCreated, s.orders["ped-1"].State)

	// Estado destino desconocido
	_, err = uc.Transition(ctx, fulfillment.TransitionInput{OrderID: "ped-1", Target: "ARMADO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Pedido inexistente
	_, err = uc.Transition(ctx, fulfillment.TransitionInput{OrderID: "no-existe", Target: entity.OrderStatePending})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Terminal no admite salida
	_, err = uc.Transition(ctx, fulfillment.TransitionInput{OrderID: "ped-2", Target: entity.OrderStatePending})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_CancelacionDesdeNoTerminal(t *testing.T) {
	s := newMemState()
	s.addOrder(&entity.Order{ID: "ped-1", State: entity.OrderStatePicking,
		Lines: []entity.OrderLine{{ProductCode: "IBU-400", OrderedQty: 5}}})
	uc := fulfillment.NewTransitionUseCase(&memTxRunner{s})

	result, err := uc.Transition(context.Background(), fulfillment.TransitionInput{
		OrderID: "ped-1", Target: entity.OrderStateCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStateCancelled, result.State)
	// Cancelar no toca el inventario aunque haya cantidades registradas
	assert.Empty(t, s.movements)
}

func TestTransition_ArmadoExigeConciliacionCompleta(t *testing.T) {
	s := newMemState()
	s.addOrder(pickingOrder("ped-1",
		confirmedLine("IBU-400", 10, 10),
		entity.OrderLine{ProductCode: "PARA-500", OrderedQty: 5},
		entity.OrderLine{ProductCode: "AMOX-250", OrderedQty: 2},
	))
	uc := fulfillment.NewTransitionUseCase(&memTxRunner{s})

	_, err := uc.Transition(context.Background(), fulfillment.TransitionInput{
		OrderID: "ped-1", Target: entity.OrderStatePacked,
	})

	var incomplete *domain.ReconciliationIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "ped-1", incomplete.OrderID)
	assert.Equal(t, []string{"PARA-500", "AMOX-250"}, incomplete.Pending)
	assert.Equal(t, entity.OrderStatePicking, s.orders["ped-1"].State)
}

func TestTransition_ArmadoConDescargo(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 20)
	s.addProduct("PARA-500", 8)
	s.addProduct("AMOX-250", 3)
	s.addOrder(pickingOrder("ped-1",
		confirmedLine("IBU-400", 10, 10),
		confirmedLine("PARA-500", 5, 4),
		confirmedLine("AMOX-250", 2, 0), // faltante total: no genera línea de descargo
	))
	uc := fulfillment.NewTransitionUseCase(&memTxRunner{s})

	result, err := uc.Transition(context.Background(), fulfillment.TransitionInput{
		OrderID: "ped-1", Target: entity.OrderStatePacked, Actor: "deposito-1", DeductStock: true,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatePacked, s.orders["ped-1"].State)
	require.NotNil(t, result.Movement)
	assert.Equal(t, map[string]int64{"IBU-400": 10, "PARA-500": 4}, result.Movement.Quantities)

	assert.Equal(t, int64(10), s.stock["IBU-400"])
	assert.Equal(t, int64(4), s.stock["PARA-500"])
	assert.Equal(t, int64(3), s.stock["AMOX-250"], "la línea con hallazgo cero no descuenta")

	// El descargo queda en el libro referenciando al pedido
	mov := s.movements[result.Movement.MovementID]
	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementTypeOutbound, mov.Type)
	assert.Equal(t, "ped-1", mov.SourceDocument)
	assert.Equal(t, "deposito-1", mov.Actor)
	assert.Len(t, mov.Lines, 2)
}

func TestTransition_ArmadoSinDescargo(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 20)
	s.addOrder(pickingOrder("ped-1", confirmedLine("IBU-400", 10, 10)))
	uc := fulfillment.NewTransitionUseCase(&memTxRunner{s})

	result, err := uc.Transition(context.Background(), fulfillment.TransitionInput{
		OrderID: "ped-1", Target: entity.OrderStatePacked, DeductStock: false,
	})
	require.NoError(t, err)

	assert.Nil(t, result.Movement)
	assert.Equal(t, int64(20), s.stock["IBU-400"])
	assert.Empty(t, s.movements)
	assert.Equal(t, entity.OrderStatePacked, s.orders["ped-1"].State)
}

func TestTransition_ArmadoTodoFaltanteNoEscribeMovimiento(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 20)
	s.addOrder(pickingOrder("ped-1", confirmedLine("IBU-400", 10, 0)))
	uc := fulfillment.NewTransitionUseCase(&memTxRunner{s})

	result, err := uc.Transition(context.Background(), fulfillment.TransitionInput{
		OrderID: "ped-1", Target: entity.OrderStatePacked, DeductStock: true,
	})
	require.NoError(t, err)

	assert.Nil(t, result.Movement)
	assert.Empty(t, s.movements)
	assert.Equal(t, entity.OrderStatePacked, s.orders["ped-1"].State)
}

func TestTransition_DescargoInsuficienteDejaTodoComoEstaba(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 20)
	s.addProduct("PARA-500", 2) // el stock cayó después de confirmar la línea
	s.addOrder(pickingOrder("ped-1",
		confirmedLine("IBU-400", 10, 10),
		confirmedLine("PARA-500", 5, 5),
	))
	uc := fulfillment.NewTransitionUseCase(&memTxRunner{s})

	_, err := uc.Transition(context.Background(), fulfillment.TransitionInput{
		OrderID: "ped-1", Target: entity.OrderStatePacked, DeductStock: true,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "PARA-500")

	// Transición y descargo viven en la misma transacción: nada cambió
	assert.Equal(t, entity.OrderStatePicking, s.orders["ped-1"].State)
	assert.Equal(t, int64(20), s.stock["IBU-400"])
	assert.Equal(t, int64(2), s.stock["PARA-500"])
	assert.Empty(t, s.movements)
}
