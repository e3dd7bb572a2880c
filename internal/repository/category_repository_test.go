package repository

import (
	"context"
	"errors"
	"sort"
	"testing"

	"multkits-catalog/internal/domain"

	"github.com/google/uuid"
)

func uniqueName(prefix string) string {
	return prefix + " " + uuid.New().String()
}

func TestCategoryCreateAndList(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	names := []string{uniqueName("Tubos"), uniqueName("Aparadores"), uniqueName("Roldanas")}
	for _, name := range names {
		category, err := repo.Create(ctx, name)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", name, err)
		}
		if category.ID == 0 {
			t.Errorf("Create(%q) returned zero id", name)
		}
		if category.Name != name {
			t.Errorf("Create(%q) returned name %q", name, category.Name)
		}
	}

	categories, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	listed := make([]string, 0, len(categories))
	for _, c := range categories {
		listed = append(listed, c.Name)
	}
	if !sort.StringsAreSorted(listed) {
		t.Errorf("List is not alphabetical: %v", listed)
	}
}

func TestCategoryDuplicateName(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	name := uniqueName("Fechaduras")
	first, err := repo.Create(ctx, name)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = repo.Create(ctx, name)
	if !errors.Is(err, ErrCategoryAlreadyExists) {
		t.Errorf("duplicate create err = %v, want ErrCategoryAlreadyExists", err)
	}

	// The existing category is unaffected.
	stored, err := repo.FindByID(ctx, first.ID)
	if err != nil || stored.Name != name {
		t.Errorf("existing category changed after rejected duplicate: %v, %v", stored, err)
	}
}

func TestCategoryRename(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category, err := repo.Create(ctx, uniqueName("Saídas"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	taken, err := repo.Create(ctx, uniqueName("Batentes"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	renamed := uniqueName("Saídas Laterais")
	if err := repo.Rename(ctx, category.ID, renamed); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	stored, err := repo.FindByID(ctx, category.ID)
	if err != nil || stored.Name != renamed {
		t.Errorf("rename not persisted: %v, %v", stored, err)
	}

	if err := repo.Rename(ctx, category.ID, taken.Name); !errors.Is(err, ErrCategoryAlreadyExists) {
		t.Errorf("rename to taken name err = %v, want ErrCategoryAlreadyExists", err)
	}

	if err := repo.Rename(ctx, -1, uniqueName("Nada")); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("rename of missing category err = %v, want ErrCategoryNotFound", err)
	}
}

func TestCategoryDeleteGuard(t *testing.T) {
	categories := NewCategoryRepository(testDB)
	products := NewProductRepository(testDB)
	ctx := context.Background()

	category, err := categories.Create(ctx, uniqueName("Rolamentos"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	product := &domain.Product{
		Name:       "Rolamento 6204",
		Price:      18.9,
		CategoryID: category.ID,
	}
	if err := products.Create(ctx, product); err != nil {
		t.Fatalf("product Create failed: %v", err)
	}

	// Referenced category cannot be deleted.
	err = categories.Delete(ctx, category.ID)
	if !errors.Is(err, ErrCategoryInUse) {
		t.Errorf("delete of referenced category err = %v, want ErrCategoryInUse", err)
	}
	if _, err := categories.FindByID(ctx, category.ID); err != nil {
		t.Error("category must remain intact after rejected delete")
	}

	// Once the product is gone the delete succeeds.
	if err := products.Delete(ctx, product.ID); err != nil {
		t.Fatalf("product Delete failed: %v", err)
	}
	if err := categories.Delete(ctx, category.ID); err != nil {
		t.Errorf("delete of unreferenced category failed: %v", err)
	}
	if _, err := categories.FindByID(ctx, category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Error("category still present after delete")
	}
}

func TestCategoryDeleteNotFound(t *testing.T) {
	repo := NewCategoryRepository(testDB)

	if err := repo.Delete(context.Background(), -42); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("err = %v, want ErrCategoryNotFound", err)
	}
}
