package product

import (
	"context"
	"errors"
	"sync"

	domain "backoffice/catalog/internal/domain/product"
)

var errRemote = errors.New("remote unavailable")

// stubStore wraps a real store and lets tests inject failures, count calls and
// hold ListAll responses.
type stubStore struct {
	domain.DocumentStore

	mu         sync.Mutex
	inserts    int
	queryErr   error
	insertErr  error
	deleteErr  error
	updateErr  error
	listErr    error
	listHold   chan struct{}
	listCalled chan struct{}
	afterQuery func()
}

func (s *stubStore) QueryByField(ctx context.Context, field domain.Field, value string) ([]domain.Product, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	out, err := s.DocumentStore.QueryByField(ctx, field, value)
	if s.afterQuery != nil {
		s.afterQuery()
	}
	return out, err
}

func (s *stubStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out, err := s.DocumentStore.ListAll(ctx)
	s.mu.Lock()
	hold, called := s.listHold, s.listCalled
	s.mu.Unlock()
	if called != nil {
		called <- struct{}{}
	}
	if hold != nil {
		<-hold
	}
	return out, err
}

func (s *stubStore) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	s.inserts++
	s.mu.Unlock()
	if s.insertErr != nil {
		return domain.Product{}, s.insertErr
	}
	return s.DocumentStore.Insert(ctx, p)
}

func (s *stubStore) UpdateByID(ctx context.Context, id string, changes domain.Changes) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.DocumentStore.UpdateByID(ctx, id, changes)
}

func (s *stubStore) DeleteByID(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.DocumentStore.DeleteByID(ctx, id)
}

func (s *stubStore) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

type fixedOwner string

func (o fixedOwner) Owner() string { return string(o) }
