package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmadistro/pedidos-api/internal/domain"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con
// pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste el pedido y todas sus líneas.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (id, client_id, state, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.ClientID, order.State, order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: pedido %s", domain.ErrConflict, order.ID)
		}
		return fmt.Errorf("create order: %w", err)
	}
	lineQuery := `
		INSERT INTO order_lines (order_id, position, product_code, description, ordered_qty, unit_price, discount_tier, found_qty, confirmed, completeness)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range order.Lines {
		l := &order.Lines[i]
		_, err := r.q.Exec(context.Background(), lineQuery,
			order.ID, i, l.ProductCode, l.Description, l.OrderedQty,
			l.UnitPrice, l.DiscountTier, l.FoundQty, l.Confirmed, string(l.Completeness),
		)
		if err != nil {
			return fmt.Errorf("create order line %s: %w", l.ProductCode, err)
		}
	}
	return nil
}

// GetByID obtiene el pedido con sus líneas. Devuelve nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.get(id, false)
}

// GetForUpdate igual que GetByID pero bloquea la fila del pedido
// (SELECT FOR UPDATE): las mutaciones concurrentes sobre un mismo pedido
// quedan serializadas.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.get(id, true)
}

func (r *OrderRepo) get(id string, forUpdate bool) (*entity.Order, error) {
	query := `
		SELECT id, client_id, state, notes, created_at, updated_at
		FROM orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.Order
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.ClientID, &o.State, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadLines(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateState cambia el estado del pedido.
func (r *OrderRepo) UpdateState(id string, state entity.OrderState) error {
	query := `UPDATE orders SET state = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, state)
	if err != nil {
		return fmt.Errorf("update order state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, id)
	}
	return nil
}

// UpdateLine persiste las anotaciones de conciliación de una línea.
func (r *OrderRepo) UpdateLine(orderID string, line *entity.OrderLine) error {
	query := `
		UPDATE order_lines
		SET found_qty = $3, confirmed = $4, completeness = $5
		WHERE order_id = $1 AND product_code = $2`
	tag, err := r.q.Exec(context.Background(), query,
		orderID, line.ProductCode, line.FoundQty, line.Confirmed, string(line.Completeness),
	)
	if err != nil {
		return fmt.Errorf("update order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: línea %s en pedido %s", domain.ErrNotFound, line.ProductCode, orderID)
	}
	return nil
}

// List lista pedidos por cliente y estado, más recientes primero.
func (r *OrderRepo) List(filter repository.OrderFilter) ([]*entity.Order, error) {
	query := `
		SELECT id, client_id, state, notes, created_at, updated_at
		FROM orders`
	args := []any{}
	pos := 1
	where := ""
	appendCond := func(cond string, arg any) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, pos)
		args = append(args, arg)
		pos++
	}
	if filter.ClientID != "" {
		appendCond("client_id = $%d", filter.ClientID)
	}
	if filter.State != "" {
		appendCond("state = $%d", filter.State)
	}
	query += where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.State, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		if err := r.loadLines(o); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *OrderRepo) loadLines(o *entity.Order) error {
	query := `
		SELECT product_code, description, ordered_qty, unit_price, discount_tier, found_qty, confirmed, completeness
		FROM order_lines WHERE order_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, o.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		var completeness string
		if err := rows.Scan(&l.ProductCode, &l.Description, &l.OrderedQty,
			&l.UnitPrice, &l.DiscountTier, &l.FoundQty, &l.Confirmed, &completeness); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		l.Completeness = entity.Completeness(completeness)
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}
