package repository

import (
	"context"
	"errors"
	"testing"

	"multkits-catalog/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func mustCreateCategory(t *testing.T, ctx context.Context) *domain.Category {
	t.Helper()
	category, err := NewCategoryRepository(testDB).Create(ctx, uniqueName("Categoria"))
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	category := mustCreateCategory(t, ctx)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, description string, price float64, colorCode string, stock int) bool {
			product := &domain.Product{
				Name:        name,
				Description: description,
				Price:       price,
				CategoryID:  category.ID,
				ImagePath:   "https://storage.googleapis.com/catalog/products/x.jpg",
				ColorCode:   colorCode,
				Stock:       stock,
				Variations: []domain.Variation{
					{Name: "30mm", Price: price},
					{Name: "40mm", Price: price + 1},
				},
			}

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			if product.ID == 0 {
				t.Log("FAIL: Create did not fill in a generated id")
				return false
			}

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Name != product.Name ||
				retrieved.Description != product.Description ||
				retrieved.ColorCode != product.ColorCode ||
				retrieved.CategoryID != product.CategoryID ||
				retrieved.ImagePath != product.ImagePath ||
				retrieved.Stock != product.Stock {
				t.Logf("FAIL: attribute mismatch: %+v vs %+v", retrieved, product)
				return false
			}

			// Compare prices with small tolerance: DECIMAL(10,2) rounds.
			if retrieved.Price < product.Price-0.01 || retrieved.Price > product.Price+0.01 {
				t.Logf("FAIL: Price mismatch. Expected %f, got %f", product.Price, retrieved.Price)
				return false
			}

			if len(retrieved.Variations) != 2 || retrieved.Variations[0].Name != "30mm" {
				t.Logf("FAIL: Variations mismatch: %+v", retrieved.Variations)
				return false
			}

			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 && len(s) <= 255 }),
		gen.AlphaString(),
		gen.Float64Range(0, 99999),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) <= 100 }),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_PartialUpdatePreservesUntouchedFields(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	category := mustCreateCategory(t, ctx)

	properties := gopter.NewProperties(nil)

	properties.Property("patching only the price leaves every other field unchanged", prop.ForAll(
		func(newPrice float64) bool {
			product := &domain.Product{
				Name:        "Tubo redondo 30mm",
				Description: "Tubo de alumínio",
				Price:       10,
				CategoryID:  category.ID,
				ImagePath:   "https://storage.googleapis.com/catalog/products/tubo.jpg",
				ColorCode:   "Preto 12",
				Stock:       7,
			}
			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			if err := repo.Update(ctx, product.ID, domain.ProductPatch{Price: &newPrice}); err != nil {
				t.Logf("FAIL: Failed to patch product: %v", err)
				return false
			}

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Price < newPrice-0.01 || retrieved.Price > newPrice+0.01 {
				t.Logf("FAIL: Price not updated. Expected %f, got %f", newPrice, retrieved.Price)
				return false
			}

			return retrieved.Name == product.Name &&
				retrieved.Description == product.Description &&
				retrieved.CategoryID == product.CategoryID &&
				retrieved.ImagePath == product.ImagePath &&
				retrieved.ColorCode == product.ColorCode &&
				retrieved.Stock == product.Stock
		},
		gen.Float64Range(0, 99999),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductUpdateNotFound(t *testing.T) {
	repo := NewProductRepository(testDB)

	name := "does not matter"
	err := repo.Update(context.Background(), -7, domain.ProductPatch{Name: &name})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestProductListNewestFirstWithCategoryName(t *testing.T) {
	ctx := context.Background()
	products := NewProductRepository(testDB)
	category := mustCreateCategory(t, ctx)

	first := &domain.Product{Name: "Roldana simples", Price: 4, CategoryID: category.ID}
	second := &domain.Product{Name: "Roldana dupla", Price: 6, CategoryID: category.ID}
	if err := products.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := products.Create(ctx, second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	listed, err := products.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var firstIdx, secondIdx = -1, -1
	for i, p := range listed {
		if p.ID == first.ID {
			firstIdx = i
		}
		if p.ID == second.ID {
			secondIdx = i
			if p.CategoryName != category.Name {
				t.Errorf("category name = %q, want %q", p.CategoryName, category.Name)
			}
		}
	}
	if firstIdx == -1 || secondIdx == -1 {
		t.Fatal("created products missing from List")
	}
	if secondIdx > firstIdx {
		t.Error("List must order products newest first (id descending)")
	}
}

func TestProductCreateWithMissingCategory(t *testing.T) {
	repo := NewProductRepository(testDB)

	err := repo.Create(context.Background(), &domain.Product{
		Name:       "Órfão",
		Price:      1,
		CategoryID: -99,
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("err = %v, want ErrCategoryNotFound", err)
	}
}

func TestCountByCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	category := mustCreateCategory(t, ctx)

	count, err := repo.CountByCategory(ctx, category.ID)
	if err != nil || count != 0 {
		t.Fatalf("empty category count = %d, %v; want 0, nil", count, err)
	}

	for i := 0; i < 3; i++ {
		product := &domain.Product{Name: "Estacionamento", Price: 9, CategoryID: category.ID}
		if err := repo.Create(ctx, product); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	count, err = repo.CountByCategory(ctx, category.ID)
	if err != nil || count != 3 {
		t.Errorf("count = %d, %v; want 3, nil", count, err)
	}
}

func TestProductDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	category := mustCreateCategory(t, ctx)

	product := &domain.Product{Name: "Tampa 50mm", Price: 2.5, CategoryID: category.ID}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(ctx, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Error("product still present after delete")
	}
	if err := repo.Delete(ctx, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("second delete err = %v, want ErrProductNotFound", err)
	}
}
