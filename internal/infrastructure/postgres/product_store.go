package postgres

import (
	"context"
	"fmt"
	"strings"

	domain "backoffice/catalog/internal/domain/product"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductStore persists product documents in PostgreSQL.
type ProductStore struct {
	pool *pgxpool.Pool
}

var _ domain.DocumentStore = (*ProductStore)(nil)

// NewProductStore constructs a store.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

var fieldColumns = map[domain.Field]string{
	domain.FieldProductCode: "product_code",
	domain.FieldName:        "name",
	domain.FieldOwner:       "owner",
}

const productColumns = `id, product_code, name, price, owner, created_at`

// QueryByField returns the products whose field equals value.
func (s *ProductStore) QueryByField(ctx context.Context, field domain.Field, value string) ([]domain.Product, error) {
	column, ok := fieldColumns[field]
	if !ok {
		return nil, fmt.Errorf("query products: unsupported field %q", field)
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + column + ` = $1 ORDER BY created_at ASC, id ASC`
	return s.list(ctx, query, value)
}

// ListAll returns every product ordered by creation time.
func (s *ProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY created_at ASC, id ASC`
	return s.list(ctx, query)
}

// Insert stores p. The id is generated here and created_at by the server clock.
func (s *ProductStore) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	const query = `
INSERT INTO products (id, product_code, name, price, owner)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at
`
	p.DocumentID = uuid.NewString()
	err := s.pool.QueryRow(ctx, query,
		p.DocumentID,
		p.ProductCode,
		p.Name,
		p.Price,
		p.Owner,
	).Scan(&p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, domain.ErrDuplicateCode
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// UpdateByID writes only the fields present in changes.
func (s *ProductStore) UpdateByID(ctx context.Context, id string, changes domain.Changes) error {
	sets := make([]string, 0, 2)
	args := []any{id}
	if changes.Name != nil {
		args = append(args, *changes.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if changes.Price != nil {
		args = append(args, *changes.Price)
		sets = append(sets, fmt.Sprintf("price = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByID removes a product by id.
func (s *ProductStore) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ProductStore) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.DocumentID,
		&p.ProductCode,
		&p.Name,
		&p.Price,
		&p.Owner,
		&p.CreatedAt,
	)
	return p, err
}
