package iuserrepo

import (
	"context"
	"errors"

	"github.com/corray333/foodorder/internal/service/models/order"
)

var ErrUserNotFound = errors.New("user not found")

// IUserRepository resolves owner display fields.
type IUserRepository interface {
	GetOwner(ctx context.Context, id string) (order.Owner, error)
	GetOwners(ctx context.Context, ids []string) (map[string]order.Owner, error)
}
