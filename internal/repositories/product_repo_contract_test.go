package repositories_test

import (
	"context"
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func newProduct(name, category, price string) *models.Product {
	return &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
	}
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

// testProductRepository runs the behaviour every ProductRepository must share.
// newRepo must return an empty repository.
func testProductRepository(t *testing.T, newRepo func(t *testing.T) repositories.ProductRepository) {
	ctx := context.Background()

	t.Run("GetAllEmpty", func(t *testing.T) {
		repo := newRepo(t)

		products, err := repo.GetAll(ctx)

		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("CreateAssignsIncreasingIDs", func(t *testing.T) {
		repo := newRepo(t)

		first := newProduct("Laptop", "Computers", "1200.00")
		first.Description = strPtr("High performance laptop")
		second := newProduct("Laptop", "Computers", "1200.00")

		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		assert.GreaterOrEqual(t, first.ID, int64(1))
		assert.Greater(t, second.ID, first.ID, "duplicates are allowed and get their own id")

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, first.ID, products[0].ID)
		assert.Equal(t, second.ID, products[1].ID)
		require.NotNil(t, products[0].Description)
		assert.Equal(t, "High performance laptop", *products[0].Description)
		assert.Nil(t, products[1].Description)
		assert.Equal(t, "1200.00", products[0].Price.StringFixed(2))
	})

	t.Run("GetByID", func(t *testing.T) {
		repo := newRepo(t)
		created := newProduct("Mouse", "Accessories", "25.50")
		require.NoError(t, repo.Create(ctx, created))

		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mouse", found.Name)
		assert.Equal(t, "Accessories", found.Category)
		assert.True(t, found.Price.Equal(decimal.RequireFromString("25.5")))

		_, err = repo.GetByID(ctx, created.ID+1000)
		assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	})

	t.Run("UpdateReplacesEveryField", func(t *testing.T) {
		repo := newRepo(t)
		created := newProduct("Keyboard", "Accessories", "75.00")
		created.Description = strPtr("Mechanical keyboard")
		require.NoError(t, repo.Create(ctx, created))

		replacement := &models.Product{
			ID:       created.ID,
			Name:     "Silent Keyboard",
			Price:    decimal.RequireFromString("0.10"),
			Category: "Peripherals",
		}
		require.NoError(t, repo.Update(ctx, replacement))

		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Silent Keyboard", found.Name)
		assert.Equal(t, "Peripherals", found.Category)
		assert.Equal(t, "0.10", found.Price.StringFixed(2))
		assert.Nil(t, found.Description)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.Update(ctx, &models.Product{ID: 424242, Name: "Ghost", Price: decimal.Zero, Category: "None"})

		assert.ErrorIs(t, err, repositories.ErrProductNotFound)
		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, products, "updating a missing id must not create it")
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		repo := newRepo(t)
		created := newProduct("Monitor", "Displays", "200.00")
		require.NoError(t, repo.Create(ctx, created))

		require.NoError(t, repo.Delete(ctx, created.ID))
		assert.ErrorIs(t, repo.Delete(ctx, created.ID), repositories.ErrProductNotFound)

		_, err := repo.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	})

	t.Run("SearchNameOrCategoryIgnoringCase", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newProduct("Acoustic Guitar", "Instruments", "199.99")))
		require.NoError(t, repo.Create(ctx, newProduct("Drum Kit", "Instruments", "499.00")))
		require.NoError(t, repo.Create(ctx, newProduct("Guitar Strap", "Accessories", "15.00")))
		require.NoError(t, repo.Create(ctx, newProduct("Desk Lamp", "Home", "30.00")))

		byName, err := repo.Search(ctx, "guitar")
		require.NoError(t, err)
		assert.Equal(t, []string{"Acoustic Guitar", "Guitar Strap"}, names(byName))

		byCategory, err := repo.Search(ctx, "instruments")
		require.NoError(t, err)
		assert.Equal(t, []string{"Acoustic Guitar", "Drum Kit"}, names(byCategory))

		upper, err := repo.Search(ctx, "LAMP")
		require.NoError(t, err)
		assert.Equal(t, []string{"Desk Lamp"}, names(upper))

		require.NoError(t, repo.Create(ctx, newProduct("Écharpe", "Vêtements", "25.00")))
		for _, term := range []string{"écharpe", "ÉCHARPE", "vêtements", "VÊTEMENTS"} {
			found, err := repo.Search(ctx, term)
			require.NoError(t, err)
			assert.Equal(t, []string{"Écharpe"}, names(found), "term %q", term)
		}

		none, err := repo.Search(ctx, "violin")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("SearchTreatsWildcardsLiterally", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newProduct("100% Cotton Shirt", "Apparel", "20.00")))
		require.NoError(t, repo.Create(ctx, newProduct("Plain Shirt", "Apparel", "10.00")))
		require.NoError(t, repo.Create(ctx, newProduct(`Back\Slash`, "Misc", "1.00")))

		percent, err := repo.Search(ctx, "%")
		require.NoError(t, err)
		assert.Equal(t, []string{"100% Cotton Shirt"}, names(percent))

		underscore, err := repo.Search(ctx, "_")
		require.NoError(t, err)
		assert.Empty(t, underscore)

		backslash, err := repo.Search(ctx, `\`)
		require.NoError(t, err)
		assert.Equal(t, []string{`Back\Slash`}, names(backslash))
	})
}
