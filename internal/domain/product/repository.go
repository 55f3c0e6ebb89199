package product

import "context"

// Field names a queryable document attribute.
type Field string

const (
	FieldProductCode Field = "productCode"
	FieldName        Field = "name"
	FieldOwner       Field = "owner"
)

// FieldPrice is the form key used for price validation messages.
const FieldPrice = "price"

func (f Field) String() string { return string(f) }

// Valid reports whether the field may be used in an exact-match query.
func (f Field) Valid() bool {
	switch f {
	case FieldProductCode, FieldName, FieldOwner:
		return true
	default:
		return false
	}
}

// DocumentStore is the remote collection of product documents.
type DocumentStore interface {
	QueryByField(ctx context.Context, field Field, value string) ([]Product, error)
	ListAll(ctx context.Context) ([]Product, error)
	// Insert persists p and returns it with the store-assigned DocumentID and CreatedAt.
	Insert(ctx context.Context, p Product) (Product, error)
	UpdateByID(ctx context.Context, id string, changes Changes) error
	DeleteByID(ctx context.Context, id string) error
}
