// Package memory provides process-local document store and account bindings.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "backoffice/catalog/internal/domain/product"

	"github.com/google/uuid"
)

type document struct {
	p   domain.Product
	seq uint64
}

// ProductStore keeps product documents in a map keyed by document id.
type ProductStore struct {
	mu          sync.RWMutex
	docs        map[string]document
	next        uint64
	uniqueCodes bool
	nowFunc     func() time.Time
}

var _ domain.DocumentStore = (*ProductStore)(nil)

// NewProductStore constructs an empty store. With uniqueCodes set, Insert
// rejects a product code that is already stored, mirroring a unique index.
func NewProductStore(uniqueCodes bool) *ProductStore {
	return &ProductStore{
		docs:        make(map[string]document),
		uniqueCodes: uniqueCodes,
		nowFunc:     time.Now,
	}
}

// QueryByField returns documents whose field equals value exactly.
func (s *ProductStore) QueryByField(ctx context.Context, field domain.Field, value string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !field.Valid() {
		return nil, &domain.ValidationError{Fields: map[string]string{"field": "unsupported field " + field.String()}}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []document
	for _, d := range s.docs {
		if fieldValue(d.p, field) == value {
			matched = append(matched, d)
		}
	}
	return ordered(matched), nil
}

// ListAll returns every document in insertion order.
func (s *ProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]document, 0, len(s.docs))
	for _, d := range s.docs {
		all = append(all, d)
	}
	return ordered(all), nil
}

// Insert assigns a document id and creation time, then stores p.
func (s *ProductStore) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uniqueCodes {
		for _, existing := range s.docs {
			if existing.p.ProductCode == p.ProductCode {
				return domain.Product{}, domain.ErrDuplicateCode
			}
		}
	}
	p.DocumentID = uuid.NewString()
	p.CreatedAt = s.nowFunc().UTC()
	s.next++
	s.docs[p.DocumentID] = document{p: p, seq: s.next}
	return p, nil
}

// UpdateByID applies the partial changes to the identified document.
func (s *ProductStore) UpdateByID(ctx context.Context, id string, changes domain.Changes) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	changes.Apply(&d.p)
	s.docs[id] = d
	return nil
}

// DeleteByID removes the identified document.
func (s *ProductStore) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func fieldValue(p domain.Product, field domain.Field) string {
	switch field {
	case domain.FieldProductCode:
		return p.ProductCode
	case domain.FieldName:
		return p.Name
	case domain.FieldOwner:
		return p.Owner
	default:
		return ""
	}
}

// ordered returns the documents in insertion order.
func ordered(docs []document) []domain.Product {
	sort.Slice(docs, func(i, j int) bool { return docs[i].seq < docs[j].seq })
	out := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.p)
	}
	return out
}
