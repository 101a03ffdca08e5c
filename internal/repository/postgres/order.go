package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/repository"
	"github.com/coreforge/storefront/pkg/database"
	apperrors "github.com/coreforge/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// Order rows and their item rows are written in a single transaction.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, number, idempotency_key, customer_name, customer_email, customer_phone,
	shipping_address, shipping_city, shipping_state, shipping_zip, shipping_country,
	subtotal, shipping, tax, total, status, created_at, updated_at`

// orderSortColumns whitelists sortable fields against their columns.
var orderSortColumns = map[string]string{
	"id":         "id",
	"number":     "number",
	"email":      "customer_email",
	"total":      "total",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.IdempotencyKey,
		&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.Customer.Address, &o.Customer.City, &o.Customer.State,
		&o.Customer.Zip, &o.Customer.Country,
		&o.Subtotal, &o.Shipping, &o.Tax, &o.Total, &o.Status,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts a new order and its items atomically. A duplicate
// idempotency key or order number maps to ErrAlreadyExists.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		o.ID, o.Number, o.IdempotencyKey,
		o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.Customer.Address, o.Customer.City, o.Customer.State,
		o.Customer.Zip, o.Customer.Country,
		o.Subtotal, o.Shipping, o.Tax, o.Total, o.Status,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return apperrors.AlreadyExists("order", "idempotency_key", o.IdempotencyKey)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, unit_price, quantity, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.ProductID, item.Name,
			item.UnitPrice, item.Quantity, item.Total,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, name, unit_price, quantity, total
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Total); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.Items, err = r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetByIdempotencyKey retrieves the order created under a client key, if any.
func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE idempotency_key = $1", key)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", key)
		}
		return nil, fmt.Errorf("get order by idempotency key: %w", err)
	}

	o.Items, err = r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListByCustomerEmail returns all orders for a customer, newest first.
func (r *OrderRepository) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE customer_email = $1 ORDER BY created_at DESC", email)
	if err != nil {
		return nil, fmt.Errorf("list orders by email: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		orders[i].Items, err = r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// orderWhere translates whitelisted filter keys into WHERE fragments.
func orderWhere(filter map[string]any, args []any) ([]string, []any) {
	var conds []string

	if v, ok := filter["status"]; ok {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if v, ok := filter["email"]; ok {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("customer_email = $%d", len(args)))
	}
	if v, ok := filter["id"]; ok {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if v, ok := filter["q"]; ok {
		args = append(args, fmt.Sprintf("%%%v%%", v))
		conds = append(conds, fmt.Sprintf("(number ILIKE $%d OR customer_name ILIKE $%d OR customer_email ILIKE $%d)",
			len(args), len(args), len(args)))
	}

	return conds, args
}

// List returns a page of orders plus the total count for the filter.
func (r *OrderRepository) List(ctx context.Context, params repository.ListParams) ([]domain.Order, int, error) {
	conds, args := orderWhere(params.Filter, nil)

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	orderBy := "created_at"
	if col, ok := orderSortColumns[params.SortField]; ok {
		orderBy = col
	}
	dir := "ASC"
	if strings.EqualFold(params.SortOrder, "DESC") {
		dir = "DESC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM orders%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		orderColumns, where, orderBy, dir, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		orders[i].Items, err = r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

// UpdateStatus persists a new status and refreshes updated_at.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}
