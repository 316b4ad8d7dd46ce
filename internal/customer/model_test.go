package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	full := Information{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "+1"}
	assert.True(t, full.Complete())

	missing := full
	missing.Phone = "   "
	assert.False(t, missing.Complete())

	assert.False(t, Information{}.Complete())
}

func TestMergeLiveWins(t *testing.T) {
	saved := Information{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "+1"}
	live := Information{Email: "new@b.com"}

	merged := Merge(live, saved)

	assert.Equal(t, "new@b.com", merged.Email)
	assert.Equal(t, "A", merged.FirstName)
	assert.True(t, merged.Complete())
}

func TestMergeEmptyLiveFallsBackToSaved(t *testing.T) {
	saved := Information{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "+1"}

	merged := Merge(Information{}, saved)

	assert.Equal(t, saved, merged)
	assert.True(t, merged.Complete())
}

func TestFullName(t *testing.T) {
	info := Information{FirstName: " Dana ", LastName: "Lee"}
	assert.Equal(t, "Dana Lee", info.FullName())
}

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "org-1", "cust-1")
	assert.ErrorIs(t, err, ErrNotFound)

	info := Information{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "+1"}
	assert.NoError(t, repo.Upsert(ctx, "org-1", "cust-1", info))

	got, err := repo.Get(ctx, "org-1", "cust-1")
	assert.NoError(t, err)
	assert.Equal(t, info, *got)

	_, err = repo.Get(ctx, "org-2", "cust-1")
	assert.ErrorIs(t, err, ErrNotFound, "records are org-scoped")
}
