package fulfillment_test

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// Fakes en memoria compartidos por las pruebas del paquete. El runner
// trabaja sobre una copia del estado y la publica solo si la función
// termina sin error, imitando commit/rollback.

type memState struct {
	products  map[string]entity.Product
	stock     map[string]int64
	movements map[string]*entity.StockMovement
	orders    map[string]*entity.Order
}

func newMemState() *memState {
	return &memState{
		products:  make(map[string]entity.Product),
		stock:     make(map[string]int64),
		movements: make(map[string]*entity.StockMovement),
		orders:    make(map[string]*entity.Order),
	}
}

func (s *memState) addProduct(code string, qty int64) {
	s.products[code] = entity.Product{Code: code, Description: "producto " + code, UnitPrice: decimal.NewFromInt(250)}
	s.stock[code] = qty
}

func (s *memState) addOrder(order *entity.Order) {
	s.orders[order.ID] = cloneOrder(order)
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
	for i := range cp.Lines {
		if cp.Lines[i].FoundQty != nil {
			qty := *cp.Lines[i].FoundQty
			cp.Lines[i].FoundQty = &qty
		}
	}
	return &cp
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
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
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
		out = append(out, mov)
	}
	return out, nil
}

type memOrderRepo struct{ s *memState }

func (r *memOrderRepo) Create(order *entity.Order) error {
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *memOrderRepo) GetByID(id string) (*entity.Order, error) {
	order, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (r *memOrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.GetByID(id)
}

func (r *memOrderRepo) UpdateState(id string, state entity.OrderState) error {
	r.s.orders[id].State = state
	return nil
}

func (r *memOrderRepo) UpdateLine(orderID string, line *entity.OrderLine) error {
	order := r.s.orders[orderID]
	for i := range order.Lines {
		if order.Lines[i].ProductCode == line.ProductCode {
			cp := *line
			if cp.FoundQty != nil {
				qty := *cp.FoundQty
				cp.FoundQty = &qty
			}
			order.Lines[i] = cp
		}
	}
	return nil
}

func (r *memOrderRepo) List(filter repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, order := range r.s.orders {
		if filter.State != "" && order.State != filter.State {
			continue
		}
		if filter.ClientID != "" && order.ClientID != filter.ClientID {
			continue
		}
		out = append(out, cloneOrder(order))
	}
	return out, nil
}

type memTxRunner struct{ s *memState }

func (tr *memTxRunner) RunFulfillment(ctx context.Context, fn func(
	repository.OrderRepository,
	repository.MovementRepository,
	repository.StockRepository,
	repository.ProductRepository,
) error) error {
	c := tr.s.clone()
	err := fn(&memOrderRepo{c}, &memMovementRepo{c}, &memStockRepo{c}, &memProductRepo{c})
	if err != nil {
		return err
	}
	*tr.s = *c
	return nil
}
