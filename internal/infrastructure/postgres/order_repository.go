package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, customer_name, customer_email, customer_phone, shipping_address,
	billing_address, notes, shipping_cost, discount_amount, subtotal, tax_amount, grand_total,
	status, payment_status, created_at, updated_at`

// OrderRepo pedidos e ítems sobre PostgreSQL. Create debe ir dentro de una tx (cabecera + ítems).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.ShippingAddress,
		&o.BillingAddress, &o.Notes, &o.ShippingCost, &o.DiscountAmount, &o.Subtotal, &o.TaxAmount, &o.GrandTotal,
		&o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta cabecera e ítems. Número de pedido repetido es ErrDuplicate.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.q.Exec(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.ID, o.OrderNumber, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.ShippingAddress,
		o.BillingAddress, o.Notes, o.ShippingCost, o.DiscountAmount, o.Subtotal, o.TaxAmount, o.GrandTotal,
		o.Status, o.PaymentStatus, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de pedido %s", domain.ErrDuplicate, o.OrderNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for i, it := range o.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, product_code, product_name,
				unit_price, quantity, discount_percent, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, o.ID, i, it.ProductID, it.ProductCode, it.ProductName,
			it.UnitPrice, it.Quantity, it.DiscountPercent, it.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.attachItems(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID obtiene el pedido con sus ítems. (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.one(ctx, "get order", `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene el pedido y bloquea su fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.one(ctx, "get order for update", `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

// GetByNumber obtiene el pedido por número. (nil, nil) si no existe.
func (r *OrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	return r.one(ctx, "get order by number", `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
}

// List devuelve los pedidos filtrados, más recientes primero. Limit <= 0 no limita.
func (r *OrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR lower(customer_email) = lower($2))
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY seq DESC
		LIMIT NULLIF($5, 0) OFFSET $6`
	rows, err := r.q.Query(ctx, query, filter.Status, filter.CustomerEmail, filter.From, filter.To, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachItems carga los ítems de todos los pedidos en una sola consulta.
func (r *OrderRepo) attachItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*entity.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Items = []entity.OrderItem{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, product_code, product_name, unit_price, quantity, discount_percent, total_price
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductCode, &it.ProductName,
			&it.UnitPrice, &it.Quantity, &it.DiscountPercent, &it.TotalPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o := byID[it.OrderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// Update persiste cabecera, estados y totales. Ni el número ni los ítems cambian.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET customer_name = $2, customer_email = $3, customer_phone = $4, shipping_address = $5,
			billing_address = $6, notes = $7, shipping_cost = $8, discount_amount = $9, subtotal = $10,
			tax_amount = $11, grand_total = $12, status = $13, payment_status = $14, updated_at = $15
		WHERE id = $1`,
		o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.ShippingAddress,
		o.BillingAddress, o.Notes, o.ShippingCost, o.DiscountAmount, o.Subtotal,
		o.TaxAmount, o.GrandTotal, o.Status, o.PaymentStatus, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, o.ID)
	}
	return nil
}

// Delete elimina el pedido; los ítems caen por ON DELETE CASCADE.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, id)
	}
	return nil
}
