package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-food-scanner/pkg/models"
)

func newTestRepository(t *testing.T) FoodRepository {
	t.Helper()
	db, err := OpenDatabase("sqlite", ":memory:")
	require.NoError(t, err)
	return NewFoodRepository(db)
}

func floatPtr(v float64) *float64 { return &v }

func TestFoodRepository_InsertAndFind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	category := "유제품류"
	food := &models.Food{
		FoodName:     "그릭요거트",
		Category:     &category,
		CaloriesKcal: 61,
		ProteinG:     floatPtr(10.5),
	}
	require.NoError(t, repo.Insert(ctx, food))

	got, err := repo.FindByName(ctx, "그릭요거트")
	require.NoError(t, err)
	assert.Equal(t, "그릭요거트", got.FoodName)
	assert.InDelta(t, 61, got.CaloriesKcal, 0.001)
	require.NotNil(t, got.ProteinG)
	assert.InDelta(t, 10.5, *got.ProteinG, 0.001)
	assert.Nil(t, got.SodiumMg)
}

func TestFoodRepository_FindByName_Miss(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.FindByName(context.Background(), "없는음식")
	assert.ErrorIs(t, err, ErrFoodNotFound)
}

func TestFoodRepository_Insert_DuplicateName(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &models.Food{FoodName: "쌀밥", CaloriesKcal: 310}))

	err := repo.Insert(ctx, &models.Food{FoodName: "쌀밥", CaloriesKcal: 300})
	assert.ErrorIs(t, err, ErrDuplicateFood)

	// The first committed record must be untouched
	got, err := repo.FindByName(ctx, "쌀밥")
	require.NoError(t, err)
	assert.InDelta(t, 310, got.CaloriesKcal, 0.001)
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := OpenDatabase("postgres", "dsn")
	assert.Error(t, err)
}
