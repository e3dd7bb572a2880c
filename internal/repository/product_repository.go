package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"multkits-catalog/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id int64, patch domain.ProductPatch) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product and fills in its generated id.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, category_id, image_path, cor_codigo, stock, variations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	variations, err := marshalVariations(product.Variations)
	if err != nil {
		return fmt.Errorf("failed to encode variations: %w", err)
	}

	err = r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.ImagePath,
		product.ColorCode,
		product.Stock,
		variations,
	).Scan(&product.ID)

	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update applies a partial update. Only the fields present in the patch are
// written; everything else keeps its stored value. The patch is applied in a
// single statement without a prior read, so concurrent editors only overwrite
// the fields they actually send.
func (r *productRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) error {
	if patch.IsZero() {
		// Nothing to write; still report whether the product exists.
		_, err := r.FindByID(ctx, id)
		return err
	}

	setClauses := []string{}
	args := []interface{}{id}
	argIndex := 2

	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if patch.Name != nil {
		addSet("name", *patch.Name)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Price != nil {
		addSet("price", *patch.Price)
	}
	if patch.CategoryID != nil {
		addSet("category_id", *patch.CategoryID)
	}
	if patch.ImagePath != nil {
		addSet("image_path", *patch.ImagePath)
	}
	if patch.ColorCode != nil {
		addSet("cor_codigo", *patch.ColorCode)
	}
	if patch.Stock != nil {
		addSet("stock", *patch.Stock)
	}
	if patch.Variations != nil {
		variations, err := marshalVariations(*patch.Variations)
		if err != nil {
			return fmt.Errorf("failed to encode variations: %w", err)
		}
		addSet("variations", variations)
	}

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $1", strings.Join(setClauses, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, category_id, image_path, cor_codigo, stock, variations
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	var variations []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CategoryID,
		&product.ImagePath,
		&product.ColorCode,
		&product.Stock,
		&variations,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := unmarshalVariations(variations, &product.Variations); err != nil {
		return nil, fmt.Errorf("failed to decode variations: %w", err)
	}

	return product, nil
}

// List retrieves all products joined with their category names, newest first.
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.category_id, p.image_path,
		       p.cor_codigo, p.stock, p.variations, COALESCE(c.name, '') AS category_name
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		ORDER BY p.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		var variations []byte
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.CategoryID,
			&product.ImagePath,
			&product.ColorCode,
			&product.Stock,
			&variations,
			&product.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if err := unmarshalVariations(variations, &product.Variations); err != nil {
			return nil, fmt.Errorf("failed to decode variations: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// CountByCategory returns the number of products assigned to a category.
func (r *productRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE category_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products by category: %w", err)
	}

	return count, nil
}

func marshalVariations(variations []domain.Variation) ([]byte, error) {
	if len(variations) == 0 {
		return nil, nil
	}
	return json.Marshal(variations)
}

func unmarshalVariations(data []byte, out *[]domain.Variation) error {
	if len(data) == 0 {
		*out = nil
		return nil
	}
	return json.Unmarshal(data, out)
}
