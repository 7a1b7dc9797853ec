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

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta; no existen UPDATE ni DELETE sobre
// estas tablas.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste el movimiento y sus líneas.
func (r *MovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, type, actor, notes, source_document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.Type, movement.Actor, movement.Notes,
		movement.SourceDocument, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movimiento %s", domain.ErrConflict, movement.ID)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	lineQuery := `
		INSERT INTO stock_movement_lines (movement_id, position, product_code, quantity, previous_qty, new_qty)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, line := range movement.Lines {
		_, err := r.q.Exec(context.Background(), lineQuery,
			movement.ID, i, line.ProductCode, line.Quantity, line.PreviousQty, line.NewQty,
		)
		if err != nil {
			return fmt.Errorf("create movement line %s: %w", line.ProductCode, err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus líneas. Devuelve nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `
		SELECT id, type, actor, notes, source_document, created_at
		FROM stock_movements WHERE id = $1`
	var m entity.StockMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.Type, &m.Actor, &m.Notes, &m.SourceDocument, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if err := r.loadLines(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List lista movimientos por producto, tipo y rango de fechas.
func (r *MovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT DISTINCT m.id, m.type, m.actor, m.notes, m.source_document, m.created_at
		FROM stock_movements m`
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
	if filter.ProductCode != "" {
		query += " JOIN stock_movement_lines l ON l.movement_id = m.id"
		appendCond("l.product_code = $%d", filter.ProductCode)
	}
	if filter.Type != "" {
		appendCond("m.type = $%d", filter.Type)
	}
	if filter.From != nil {
		appendCond("m.created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		appendCond("m.created_at <= $%d", *filter.To)
	}
	query += where + fmt.Sprintf(" ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.Type, &m.Actor, &m.Notes, &m.SourceDocument, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range list {
		if err := r.loadLines(m); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *MovementRepo) loadLines(m *entity.StockMovement) error {
	query := `
		SELECT product_code, quantity, previous_qty, new_qty
		FROM stock_movement_lines WHERE movement_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, m.ID)
	if err != nil {
		return fmt.Errorf("load movement lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.MovementLine
		if err := rows.Scan(&l.ProductCode, &l.Quantity, &l.PreviousQty, &l.NewQty); err != nil {
			return fmt.Errorf("scan movement line: %w", err)
		}
		m.Lines = append(m.Lines, l)
	}
	return rows.Err()
}
