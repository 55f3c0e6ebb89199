package memory

import (
	"context"
	"testing"
	"time"

	authdomain "backoffice/catalog/internal/domain/auth"
	domain "backoffice/catalog/internal/domain/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductStoreLifecycle(t *testing.T) {
	store := NewProductStore(false)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return fixed }
	ctx := context.Background()

	p1, err := store.Insert(ctx, domain.Product{ProductCode: "P1", Name: "Pen", Price: 1.5, Owner: "a@x.io"})
	require.NoError(t, err)
	require.NotEmpty(t, p1.DocumentID)
	assert.Equal(t, fixed, p1.CreatedAt)

	p2, err := store.Insert(ctx, domain.Product{ProductCode: "P2", Name: "Pad", Price: 2, Owner: "a@x.io"})
	require.NoError(t, err)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Product{p1, p2}, all)

	matches, err := store.QueryByField(ctx, domain.FieldProductCode, "P2")
	require.NoError(t, err)
	assert.Equal(t, []domain.Product{p2}, matches)

	matches, err = store.QueryByField(ctx, domain.FieldProductCode, "p2")
	require.NoError(t, err)
	assert.Empty(t, matches, "query is exact match")

	name := "Notepad"
	require.NoError(t, store.UpdateByID(ctx, p2.DocumentID, domain.Changes{Name: &name}))
	matches, err = store.QueryByField(ctx, domain.FieldName, "Notepad")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2.0, matches[0].Price)

	require.NoError(t, store.DeleteByID(ctx, p1.DocumentID))
	assert.ErrorIs(t, store.DeleteByID(ctx, p1.DocumentID), domain.ErrNotFound)
	assert.ErrorIs(t, store.UpdateByID(ctx, p1.DocumentID, domain.Changes{Name: &name}), domain.ErrNotFound)

	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductStoreUniqueCodes(t *testing.T) {
	ctx := context.Background()

	lenient := NewProductStore(false)
	for i := 0; i < 2; i++ {
		_, err := lenient.Insert(ctx, domain.Product{ProductCode: "P1", Name: "Pen"})
		require.NoError(t, err)
	}

	strict := NewProductStore(true)
	_, err := strict.Insert(ctx, domain.Product{ProductCode: "P1", Name: "Pen"})
	require.NoError(t, err)
	_, err = strict.Insert(ctx, domain.Product{ProductCode: "P1", Name: "Pen"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestProductStoreRejectsUnknownField(t *testing.T) {
	_, err := NewProductStore(false).QueryByField(context.Background(), domain.Field("price"), "1")
	_, ok := domain.IsValidation(err)
	assert.True(t, ok)
}

func TestProductStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProductStore(false).ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	user := &authdomain.User{ID: "u1", Email: "a@x.io", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, &authdomain.User{ID: "u2", Email: "a@x.io"}), authdomain.ErrEmailInUse)

	got, err := repo.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", got.Email)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}
