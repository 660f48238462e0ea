package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/foodorder/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/jackc/pgx/v5"
)

// UserRepository reads owner display fields from the shared users table.
type UserRepository struct {
	conn postgres.GenericConn
}

// NewUserRepository creates a new user repository.
func NewUserRepository(conn postgres.GenericConn) *UserRepository {
	return &UserRepository{
		conn: conn,
	}
}

func ownerSelect() sq.SelectBuilder {
	return sq.Select("id", "first_name", "last_name", "phone", "image").
		From("users").
		PlaceholderFormat(sq.Dollar)
}

// GetOwner returns the display fields of one user.
func (r *UserRepository) GetOwner(ctx context.Context, id string) (order.Owner, error) {
	query, args, err := ownerSelect().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return order.Owner{}, fmt.Errorf("failed to build user query: %w", err)
	}

	var o order.Owner
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.ID, &o.FirstName, &o.LastName, &o.Phone, &o.Image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Owner{}, iuserrepo.ErrUserNotFound
		}

		return order.Owner{}, fmt.Errorf("failed to query user: %w", err)
	}

	return o, nil
}

// GetOwners returns display fields keyed by user id. Unknown ids are absent from the result.
func (r *UserRepository) GetOwners(ctx context.Context, ids []string) (map[string]order.Owner, error) {
	owners := make(map[string]order.Owner, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	query, args, err := ownerSelect().Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o order.Owner
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Phone, &o.Image); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		owners[o.ID] = o
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return owners, nil
}
