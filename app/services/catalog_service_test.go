package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/tomato/app/models"
)

func TestCatalogAddListRemove(t *testing.T) {
	foods := newFakeFoodStore()
	svc := NewCatalogService(foods)
	ctx := context.Background()

	added, err := svc.Add(ctx, &models.Food{Name: "Pizza", Price: 12.5, Category: "Mains"}, nil, "")
	require.NoError(t, err)
	require.False(t, added.ID.IsZero())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pizza", list[0].Name)

	require.NoError(t, svc.Remove(ctx, added.ID.Hex()))

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogAddValidation(t *testing.T) {
	svc := NewCatalogService(newFakeFoodStore())
	ctx := context.Background()

	_, err := svc.Add(ctx, &models.Food{Name: "", Price: 5}, nil, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Add(ctx, &models.Food{Name: "Pizza", Price: 0}, nil, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogRemoveUnknown(t *testing.T) {
	svc := NewCatalogService(newFakeFoodStore())
	assert.ErrorIs(t, svc.Remove(context.Background(), "000000000000000000000000"), ErrNotFound)
}
