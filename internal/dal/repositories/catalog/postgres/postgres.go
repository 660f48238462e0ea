package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/foodorder/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/service/models/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CatalogRepository reads products from the shared products table.
type CatalogRepository struct {
	conn postgres.GenericConn
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(conn postgres.GenericConn) *CatalogRepository {
	return &CatalogRepository{
		conn: conn,
	}
}

// GetProduct returns the product or icatalogrepo.ErrProductNotFound.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	query, args, err := sq.Select(
		"id",
		"title",
		"description",
		"price::text",
		"stock",
		"image",
		"active",
	).
		From("products").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return catalog.Product{}, fmt.Errorf("failed to build product query: %w", err)
	}

	var (
		p     catalog.Product
		price string
	)
	err = r.conn.QueryRow(ctx, query, args...).Scan(&p.ID, &p.Title, &p.Description, &price, &p.Stock, &p.Image, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, icatalogrepo.ErrProductNotFound
		}

		return catalog.Product{}, fmt.Errorf("failed to query product: %w", err)
	}

	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("failed to decode product price: %w", err)
	}

	return p, nil
}
