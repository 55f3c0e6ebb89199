package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domain "backoffice/catalog/internal/domain/product"

	"github.com/google/uuid"
)

// ProductStore persists product documents in SQLite.
type ProductStore struct {
	db      *sql.DB
	nowFunc func() time.Time
}

var _ domain.DocumentStore = (*ProductStore)(nil)

// NewProductStore constructs a store over an opened database.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db, nowFunc: time.Now}
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
	return s.list(ctx, `SELECT `+productColumns+` FROM products WHERE `+column+` = ? ORDER BY seq ASC`, value)
}

// ListAll returns every product in insertion order.
func (s *ProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq ASC`)
}

// Insert stores p with a generated id and the store clock's creation time.
func (s *ProductStore) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.DocumentID = uuid.NewString()
	p.CreatedAt = s.nowFunc().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, product_code, name, price, owner, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.DocumentID, p.ProductCode, p.Name, p.Price, p.Owner, p.CreatedAt.Format(time.RFC3339Nano),
	)
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
	var sets []string
	var args []any
	if changes.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *changes.Name)
	}
	if changes.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *changes.Price)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireAffected(res)
}

// DeleteByID removes a product by id.
func (s *ProductStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireAffected(res)
}

func (s *ProductStore) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		var created string
		if err := rows.Scan(&p.DocumentID, &p.ProductCode, &p.Name, &p.Price, &p.Owner, &created); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
