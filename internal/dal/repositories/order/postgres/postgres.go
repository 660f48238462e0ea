package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

const uniqueViolation = "23505"

var orderColumns = []string{
	"id",
	"owner_id",
	"delivery_address",
	"payment_method",
	"status",
	"items",
	"amount::text",
	"external_payment_id",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id                string    `db:"id"`
	OwnerId           string    `db:"owner_id"`
	DeliveryAddress   []byte    `db:"delivery_address"`
	PaymentMethod     string    `db:"payment_method"`
	Status            string    `db:"status"`
	Items             []byte    `db:"items"`
	Amount            string    `db:"amount"`
	ExternalPaymentId *string   `db:"external_payment_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (order.Order, error) {
	var addr order.Address
	if err := json.Unmarshal(o.DeliveryAddress, &addr); err != nil {
		return order.Order{}, fmt.Errorf("failed to decode delivery address: %w", err)
	}

	var items []order.Item
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return order.Order{}, fmt.Errorf("failed to decode items: %w", err)
	}

	amount, err := decimal.NewFromString(o.Amount)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to decode amount: %w", err)
	}

	model := order.Order{
		ID:              o.Id,
		OwnerID:         o.OwnerId,
		DeliveryAddress: addr,
		PaymentMethod:   order.PaymentMethod(o.PaymentMethod),
		Status:          order.Status(o.Status),
		Items:           items,
		Amount:          amount,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.ExternalPaymentId != nil {
		model.ExternalPaymentID = *o.ExternalPaymentId
	}

	return model, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal.
func OrderDalFromModel(o order.Order) (*OrderDal, error) {
	addr, err := json.Marshal(o.DeliveryAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to encode delivery address: %w", err)
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	dal := &OrderDal{
		Id:              o.ID,
		OwnerId:         o.OwnerID,
		DeliveryAddress: addr,
		PaymentMethod:   o.PaymentMethod.String(),
		Status:          o.Status.String(),
		Items:           items,
		Amount:          o.Amount.StringFixed(2),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.ExternalPaymentID != "" {
		id := o.ExternalPaymentID
		dal.ExternalPaymentId = &id
	}

	return dal, nil
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.Id,
		&o.OwnerId,
		&o.DeliveryAddress,
		&o.PaymentMethod,
		&o.Status,
		&o.Items,
		&o.Amount,
		&o.ExternalPaymentId,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// PostgresOrderRepository stores orders in the orders table.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
}

// NewPostgresOrderRepository creates a repository over a pool or a transaction.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Create inserts a new order. An order whose external payment id is already taken
// is rejected with iorderrepo.ErrDuplicatePayment.
func (r *PostgresOrderRepository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer("repository").Start(ctx, "OrderRepository.Create")
	defer span.End()

	dal, err := OrderDalFromModel(o)
	if err != nil {
		return order.Order{}, err
	}

	query, args, err := sq.Insert("orders").
		Columns(
			"id",
			"owner_id",
			"delivery_address",
			"payment_method",
			"status",
			"items",
			"amount",
			"external_payment_id",
		).
		Values(
			dal.Id,
			dal.OwnerId,
			dal.DeliveryAddress,
			dal.PaymentMethod,
			dal.Status,
			dal.Items,
			dal.Amount,
			dal.ExternalPaymentId,
		).
		Suffix("ON CONFLICT (external_payment_id) DO NOTHING RETURNING created_at, updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	err = r.conn.QueryRow(ctx, query, args...).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return order.Order{}, fmt.Errorf("failed to insert order: %w", iorderrepo.ErrDuplicatePayment)
		}

		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// FindByID returns the order with the given id.
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id string) (order.Order, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// FindByExternalPaymentID returns the order materialized from the given payment.
func (r *PostgresOrderRepository) FindByExternalPaymentID(ctx context.Context, paymentID string) (order.Order, error) {
	return r.findOne(ctx, sq.Eq{"external_payment_id": paymentID})
}

func (r *PostgresOrderRepository) findOne(ctx context.Context, where sq.Eq) (order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	if err := r.conn.QueryRow(ctx, query, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, iorderrepo.ErrNotFound
		}

		return order.Order{}, fmt.Errorf("failed to query order: %w", err)
	}

	return dal.ToModel()
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	ctx, span := otel.Tracer("repository").Start(ctx, "OrderRepository.Query")
	defer span.End()

	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id").
		PlaceholderFormat(sq.Dollar)

	if filter.OwnerID != "" {
		builder = builder.Where(sq.Eq{"owner_id": filter.OwnerID})
	}
	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": filter.Status.String()})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := make([]order.Order, 0)
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdateStatus moves the order from one status to another only if it is still in from.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id string,
	from, to order.Status,
) (order.Order, error) {
	ctx, span := otel.Tracer("repository").Start(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	query, args, err := sq.Update("orders").
		Set("status", to.String()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "status": from.String()}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	var dal OrderDal
	if err := r.conn.QueryRow(ctx, query, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, iorderrepo.ErrStatusChanged
		}

		return order.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}

	return dal.ToModel()
}

// CountByStatus returns the number of orders per status with every status present.
func (r *PostgresOrderRepository) CountByStatus(ctx context.Context) (order.StatusCounts, error) {
	query, args, err := sq.Select("status", "COUNT(*)").
		From("orders").
		GroupBy("status").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := order.NewStatusCounts()
	for rows.Next() {
		var (
			status string
			total  int64
		)
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[order.Status(status)] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return counts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
