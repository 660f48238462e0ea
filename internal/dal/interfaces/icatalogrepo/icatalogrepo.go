package icatalogrepo

import (
	"context"
	"errors"

	"github.com/corray333/foodorder/internal/service/models/catalog"
)

var ErrProductNotFound = errors.New("product not found")

// ICatalogRepository resolves products by id.
type ICatalogRepository interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}
