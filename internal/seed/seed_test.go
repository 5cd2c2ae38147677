package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories/inmem"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()

	// A school that already created Class 1 with only section A.
	class1 := &models.Class{Name: "Class 1"}
	require.NoError(t, store.CreateClass(ctx, class1))
	require.NoError(t, store.CreateSection(ctx, &models.Section{ClassID: class1.ID, Name: "A"}))

	require.NoError(t, CreateDefaultData(ctx, store, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, store, zerolog.Nop()))

	classes, err := store.ListClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, len(DefaultClasses()))

	got, err := store.GetClass(ctx, class1.ID)
	require.NoError(t, err)
	require.Len(t, got.Sections, 2)
	assert.True(t, got.HasSectionNamed("A"))
	assert.True(t, got.HasSectionNamed("B"))

	for _, c := range classes {
		if c.Name == "Nursery" {
			assert.False(t, c.HasSections())
		}
	}
}
