package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmadistro/pedidos-api/internal/application/ledger"
	"github.com/farmadistro/pedidos-api/internal/domain"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El runner trabaja sobre una copia y recién publica los
// cambios si la función termina sin error, igual que un commit/rollback real.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	products  map[string]entity.Product
	stock     map[string]int64
	movements map[string]*entity.StockMovement
	locked    []string // códigos de catálogo bloqueados, en orden de adquisición
}

func newMemState() *memState {
	return &memState{
		products:  make(map[string]entity.Product),
		stock:     make(map[string]int64),
		movements: make(map[string]*entity.StockMovement),
	}
}

// addCatalogOnly da de alta el producto sin fila de stock (todavía sin
// ningún cargo aplicado).
func (s *memState) addCatalogOnly(code string) {
	s.products[code] = entity.Product{Code: code, Description: code, UnitPrice: decimal.NewFromInt(100)}
}

func (s *memState) addProduct(code string, qty int64) {
	s.addCatalogOnly(code)
	s.stock[code] = qty
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.movements {
		mov := *v
		mov.Lines = append([]entity.MovementLine(nil), v.Lines...)
		c.movements[k] = &mov
	}
	c.locked = append([]string(nil), s.locked...)
	return c
}

type memProductRepo struct{ s *memState }

func (r *memProductRepo) GetByCode(code string) (*entity.Product, error) {
	p, ok := r.s.products[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memProductRepo) GetForUpdate(code string) (*entity.Product, error) {
	r.s.locked = append(r.s.locked, code)
	return r.GetByCode(code)
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

type memStockRepo struct{ s *memState }

func (r *memStockRepo) Get(code string) (*entity.Stock, error) {
	return &entity.Stock{ProductCode: code, Quantity: r.s.stock[code]}, nil
}

func (r *memStockRepo) GetForUpdate(code string) (*entity.Stock, error) {
	return r.Get(code)
}

func (r *memStockRepo) BatchUpsert(stocks []*entity.Stock) error {
	for _, st := range stocks {
		r.s.stock[st.ProductCode] = st.Quantity
	}
	return nil
}

type memMovementRepo struct{ s *memState }

func (r *memMovementRepo) Create(mov *entity.StockMovement) error {
	cp := *mov
	cp.Lines = append([]entity.MovementLine(nil), mov.Lines...)
	r.s.movements[mov.ID] = &cp
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	mov, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	cp := *mov
	cp.Lines = append([]entity.MovementLine(nil), mov.Lines...)
	return &cp, nil
}

func (r *memMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, mov := range r.s.movements {
		if filter.Type != "" && mov.Type != filter.Type {
			continue
		}
		out = append(out, mov)
	}
	return out, nil
}

type memTxRunner struct{ s *memState }

func (tr *memTxRunner) Run(ctx context.Context, fn func(
	repository.MovementRepository,
	repository.StockRepository,
	repository.ProductRepository,
) error) error {
	c := tr.s.clone()
	err := fn(&memMovementRepo{c}, &memStockRepo{c}, &memProductRepo{c})
	if err != nil {
		return err
	}
	*tr.s = *c
	return nil
}

func newUseCase(s *memState) *ledger.ApplyMovementUseCase {
	return ledger.NewApplyMovementUseCase(&memTxRunner{s}, &memMovementRepo{s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_CargoAcumulaStock(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 10)
	s.addProduct("PARA-500", 0)
	uc := newUseCase(s)

	result, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeInbound,
		Actor:      "deposito-1",
		Lines: []ledger.MovementLineInput{
			{ProductCode: "IBU-400", Quantity: 5},
			{ProductCode: "PARA-500", Quantity: 20},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Replayed)
	assert.Equal(t, map[string]int64{"IBU-400": 15, "PARA-500": 20}, result.Quantities)
	assert.Equal(t, int64(15), s.stock["IBU-400"])
	assert.Equal(t, int64(20), s.stock["PARA-500"])

	mov := s.movements["mov-1"]
	require.NotNil(t, mov, "el movimiento debe quedar en el libro")
	assert.Equal(t, "deposito-1", mov.Actor)
	assert.Equal(t, int64(10), mov.Lines[0].PreviousQty)
	assert.Equal(t, int64(15), mov.Lines[0].NewQty)
}

func TestApply_DescargoDescuentaStock(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 10)
	uc := newUseCase(s)

	result, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeOutbound,
		Lines:      []ledger.MovementLineInput{{ProductCode: "IBU-400", Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Quantities["IBU-400"])
	assert.Equal(t, int64(0), s.stock["IBU-400"])
}

func TestApply_AjusteFijaValorAbsoluto(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 37)
	uc := newUseCase(s)

	result, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeAdjustment,
		Notes:      "conteo físico",
		Lines:      []ledger.MovementLineInput{{ProductCode: "IBU-400", Quantity: 30}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), result.Quantities["IBU-400"])
	assert.Equal(t, int64(30), s.stock["IBU-400"])
}

func TestApply_PrimerCargoBloqueaLaFilaDeCatalogo(t *testing.T) {
	s := newMemState()
	// Productos recién dados de alta: catálogo sin fila de stock. El lock
	// por producto debe tomarse igual (sobre la fila de catálogo, que
	// existe siempre), y en orden de código aunque el lote venga desordenado.
	s.addCatalogOnly("PARA-500")
	s.addCatalogOnly("IBU-400")
	uc := newUseCase(s)

	result, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeInbound,
		Lines: []ledger.MovementLineInput{
			{ProductCode: "PARA-500", Quantity: 20},
			{ProductCode: "IBU-400", Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"IBU-400", "PARA-500"}, s.locked,
		"todas las líneas adquieren el lock de catálogo, en orden de código")
	assert.Equal(t, map[string]int64{"IBU-400": 5, "PARA-500": 20}, result.Quantities)
	assert.Equal(t, int64(5), s.stock["IBU-400"])
	assert.Equal(t, int64(20), s.stock["PARA-500"])
}

func TestApply_AsignaIDSiElClienteNoManda(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 1)
	uc := newUseCase(s)

	result, err := uc.Apply(context.Background(), ledger.MovementInput{
		Type:  entity.MovementTypeInbound,
		Lines: []ledger.MovementLineInput{{ProductCode: "IBU-400", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.MovementID)
	assert.Contains(t, s.movements, result.MovementID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad: un lote con una línea inválida no toca nada
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_DescargoInsuficienteNoTocaNada(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 100)
	s.addProduct("PARA-500", 2)
	uc := newUseCase(s)

	// La primera línea alcanzaría, la segunda no: el lote entero se rechaza.
	_, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeOutbound,
		Lines: []ledger.MovementLineInput{
			{ProductCode: "IBU-400", Quantity: 10},
			{ProductCode: "PARA-500", Quantity: 5},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "PARA-500")

	assert.Equal(t, int64(100), s.stock["IBU-400"], "ninguna línea del lote debe aplicarse")
	assert.Equal(t, int64(2), s.stock["PARA-500"])
	assert.Empty(t, s.movements, "un lote rechazado no entra al libro")
}

func TestApply_ProductoDesconocidoNoTocaNada(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 10)
	uc := newUseCase(s)

	_, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeInbound,
		Lines: []ledger.MovementLineInput{
			{ProductCode: "IBU-400", Quantity: 5},
			{ProductCode: "NO-EXISTE", Quantity: 5},
		},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
	assert.Equal(t, int64(10), s.stock["IBU-400"])
	assert.Empty(t, s.movements)
}

func TestApply_ValidacionesPrevias(t *testing.T) {
	uc := newUseCase(newMemState())

	_, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeInbound,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)

	_, err = uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-2",
		Type:       "TRANSFER",
		Lines:      []ledger.MovementLineInput{{ProductCode: "IBU-400", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_ReenvioDevuelveResultadoOriginal(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 10)
	uc := newUseCase(s)

	first, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeInbound,
		Lines:      []ledger.MovementLineInput{{ProductCode: "IBU-400", Quantity: 5}},
	})
	require.NoError(t, err)
	require.False(t, first.Replayed)

	// Reenvío del mismo ID, incluso con otro payload: no vuelve a aplicar y
	// devuelve el resultado guardado de la aplicación original.
	second, err := uc.Apply(context.Background(), ledger.MovementInput{
		MovementID: "mov-1",
		Type:       entity.MovementTypeInbound,
		Lines:      []ledger.MovementLineInput{{ProductCode: "IBU-400", Quantity: 999}},
	})
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Quantities, second.Quantities)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, int64(15), s.stock["IBU-400"], "el stock no debe moverse dos veces")
	assert.Len(t, s.movements, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestGetMovement_NoEncontrado(t *testing.T) {
	uc := newUseCase(newMemState())
	_, err := uc.GetMovement("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMovements_FiltraPorTipo(t *testing.T) {
	s := newMemState()
	s.addProduct("IBU-400", 10)
	uc := newUseCase(s)

	for i, typ := range []entity.MovementType{entity.MovementTypeInbound, entity.MovementTypeOutbound} {
		_, err := uc.Apply(context.Background(), ledger.MovementInput{
			MovementID: "mov-" + string(rune('a'+i)),
			Type:       typ,
			Lines:      []ledger.MovementLineInput{{ProductCode: "IBU-400", Quantity: 3}},
		})
		require.NoError(t, err)
	}

	movs, err := uc.ListMovements(repository.MovementFilter{Type: entity.MovementTypeOutbound})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOutbound, movs[0].Type)
}
