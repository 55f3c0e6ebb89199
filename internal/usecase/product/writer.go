package product

import (
	"context"
	"errors"

	domain "backoffice/catalog/internal/domain/product"
)

// Writer creates products after a read-before-write product code check.
//
// The check and the insert are two separate store calls. Two concurrent
// creates with the same code can both pass the query before either inserts;
// only a store-level unique index closes that window.
type Writer struct {
	store domain.DocumentStore
}

// NewWriter constructs a writer over the document store.
func NewWriter(store domain.DocumentStore) *Writer {
	return &Writer{store: store}
}

// Create validates the candidate, rejects a code already present in the
// store, and inserts the record. The store assigns DocumentID and CreatedAt.
func (w *Writer) Create(ctx context.Context, candidate domain.Candidate) (domain.Product, error) {
	p, err := candidate.Validate()
	if err != nil {
		return domain.Product{}, err
	}

	matches, err := w.store.QueryByField(ctx, domain.FieldProductCode, p.ProductCode)
	if err != nil {
		return domain.Product{}, &domain.OperationError{Op: "create", Err: err}
	}
	if len(matches) > 0 {
		return domain.Product{}, domain.ErrDuplicateCode
	}

	stored, err := w.store.Insert(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateCode) {
			return domain.Product{}, domain.ErrDuplicateCode
		}
		return domain.Product{}, &domain.OperationError{Op: "create", Err: err}
	}
	return stored, nil
}
