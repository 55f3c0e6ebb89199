package product

import (
	"context"
	"strings"
	"sync"

	domain "backoffice/catalog/internal/domain/product"
	"backoffice/catalog/internal/obs"
)

// OwnerSource yields the owner recorded on newly created products.
type OwnerSource interface {
	Owner() string
}

// Catalog owns the in-memory product list and reconciles it with the store.
//
// Every fetch takes a ticket before going remote. A response is applied only
// if its ticket is newer than the last applied one, so a slow fetch can never
// overwrite a faster, later one. Local mutations also consume a ticket, which
// discards any fetch issued before them.
type Catalog struct {
	store   domain.DocumentStore
	writer  *Writer
	owners  OwnerSource
	metrics *obs.Metrics

	seq     Sequencer
	mu      sync.RWMutex
	items   []domain.Product
	applied uint64
	loaded  bool
}

// NewCatalog constructs a catalog over the store. owners and metrics may be nil.
func NewCatalog(store domain.DocumentStore, owners OwnerSource, metrics *obs.Metrics) *Catalog {
	return &Catalog{
		store:   store,
		writer:  NewWriter(store),
		owners:  owners,
		metrics: metrics,
	}
}

// FetchAll re-reads the whole collection and replaces the list. It returns the
// snapshot current after reconciliation, which is newer than the fetched data
// when the response arrived out of order.
func (c *Catalog) FetchAll(ctx context.Context) ([]domain.Product, error) {
	ticket := c.seq.Next()
	items, err := c.store.ListAll(ctx)
	c.metrics.ObserveOperation("fetch", err)
	if err != nil {
		obs.Logger.Error("catalog_fetch_failed", "error", err)
		return nil, &domain.OperationError{Op: "fetch", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket <= c.applied {
		c.metrics.ObserveStaleFetch()
		obs.Logger.Debug("catalog_fetch_discarded", "ticket", ticket, "applied", c.applied)
		return cloneProducts(c.items), nil
	}
	c.applied = ticket
	c.items = cloneProducts(items)
	c.loaded = true
	c.metrics.SetCatalogSize(len(c.items))
	return cloneProducts(c.items), nil
}

// EnsureLoaded performs the initial fetch once the catalog becomes reachable.
func (c *Catalog) EnsureLoaded(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}
	_, err := c.FetchAll(ctx)
	return err
}

// Create writes the candidate through the uniqueness-checked writer, appends
// the result locally, then reloads. The reload is authoritative.
func (c *Catalog) Create(ctx context.Context, candidate domain.Candidate) (domain.Product, error) {
	if strings.TrimSpace(candidate.Owner) == "" && c.owners != nil {
		candidate.Owner = c.owners.Owner()
	}

	stored, err := c.writer.Create(ctx, candidate)
	c.metrics.ObserveOperation("create", err)
	if err != nil {
		return domain.Product{}, err
	}

	c.mu.Lock()
	c.applied = c.seq.Next()
	c.items = append(c.items, stored)
	c.mu.Unlock()

	if _, err := c.FetchAll(ctx); err != nil {
		obs.Logger.Warn("catalog_reload_failed", "op", "create", "error", err)
	}
	return stored, nil
}

// Delete removes the document server-side, then drops the matching local
// entry. On failure the local list is left untouched.
func (c *Catalog) Delete(ctx context.Context, documentID string) error {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return &domain.ValidationError{Fields: map[string]string{"documentId": "document id is required"}}
	}

	err := c.store.DeleteByID(ctx, documentID)
	c.metrics.ObserveOperation("delete", err)
	if err != nil {
		obs.Logger.Error("catalog_delete_failed", "document_id", documentID, "error", err)
		return &domain.OperationError{Op: "delete", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = c.seq.Next()
	kept := c.items[:0:0]
	for _, p := range c.items {
		if p.DocumentID != documentID {
			kept = append(kept, p)
		}
	}
	c.items = kept
	c.metrics.SetCatalogSize(len(c.items))
	return nil
}

// Edit sends a partial update and reloads the full list instead of patching
// the local copy.
func (c *Catalog) Edit(ctx context.Context, documentID string, changes domain.Changes) ([]domain.Product, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"documentId": "document id is required"}}
	}
	if changes.Empty() {
		return nil, &domain.ValidationError{Fields: map[string]string{"changes": "nothing to update"}}
	}
	normalized, err := changes.Normalize()
	if err != nil {
		return nil, err
	}

	err = c.store.UpdateByID(ctx, documentID, normalized)
	c.metrics.ObserveOperation("edit", err)
	if err != nil {
		obs.Logger.Error("catalog_edit_failed", "document_id", documentID, "error", err)
		return nil, &domain.OperationError{Op: "edit", Err: err}
	}
	return c.FetchAll(ctx)
}

// Search filters the last fetched list. It never queries the store.
func (c *Catalog) Search(keyword string) []domain.Product {
	return Filter(c.Snapshot(), keyword)
}

// Snapshot returns a copy of the current list.
func (c *Catalog) Snapshot() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneProducts(c.items)
}

// Loaded reports whether a fetch has been applied since construction or Reset.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Reset drops the list, for example on sign-out. In-flight fetches are discarded.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = c.seq.Next()
	c.items = nil
	c.loaded = false
	c.metrics.SetCatalogSize(0)
}

func cloneProducts(items []domain.Product) []domain.Product {
	out := make([]domain.Product, len(items))
	copy(out, items)
	return out
}
