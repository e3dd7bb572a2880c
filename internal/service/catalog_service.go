package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"multkits-catalog/internal/domain"
	"multkits-catalog/internal/repository"
	"multkits-catalog/internal/storage"

	"go.uber.org/zap"
)

// ImageUpload is a new product image supplied with a create or update.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// CatalogService defines the administrative catalog operations.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product, image *ImageUpload) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch, currentImagePath string, image *ImageUpload) error
	DeleteProduct(ctx context.Context, id int64) error
}

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	blobs      storage.BlobStore
	logger     *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	blobs storage.BlobStore,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		categories: categories,
		products:   products,
		blobs:      blobs,
		logger:     logger,
	}
}

// ListCategories returns all categories in alphabetical order.
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a new category with a unique name.
func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category, err := s.categories.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Category created",
		zap.Int64("category_id", category.ID),
		zap.String("name", category.Name),
	)
	return category, nil
}

// RenameCategory changes a category name, keeping names globally unique.
func (s *catalogService) RenameCategory(ctx context.Context, id int64, name string) error {
	return s.categories.Rename(ctx, id, name)
}

// DeleteCategory removes a category. The store rejects the delete while any
// product still references the category (repository.ErrCategoryInUse).
func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryInUse) {
			if count, countErr := s.products.CountByCategory(ctx, id); countErr == nil {
				s.logger.Warn("Category delete blocked by assigned products",
					zap.Int64("category_id", id),
					zap.Int("product_count", count),
				)
			}
		}
		return err
	}
	s.logger.Info("Category deleted", zap.Int64("category_id", id))
	return nil
}

// ListProducts returns all products with their category names, newest first.
func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a single product by id.
func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

// CreateProduct persists a new product. When an image payload is supplied it
// is uploaded first and the resulting URL becomes the product's image path;
// an upload failure aborts the create before any record is written.
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product, image *ImageUpload) (*domain.Product, error) {
	if image != nil {
		url, err := s.blobs.Upload(ctx, image.Filename, image.ContentType, image.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
		product.ImagePath = url
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
	)
	return product, nil
}

// UpdateProduct applies a partial update. When a new image is supplied, the
// new object is uploaded before the old one is touched; removal of the
// previous image is best-effort and never fails the update. Fields absent
// from the patch keep their stored values.
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch, currentImagePath string, image *ImageUpload) error {
	if image != nil {
		url, err := s.blobs.Upload(ctx, image.Filename, image.ContentType, image.Data)
		if err != nil {
			return fmt.Errorf("failed to upload product image: %w", err)
		}

		s.deleteImageIfOwned(ctx, id, currentImagePath)
		patch.ImagePath = &url
	}

	if err := s.products.Update(ctx, id, patch); err != nil {
		return err
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return nil
}

// DeleteProduct removes the product record and then tries to reclaim its
// image. A failed image delete leaves an orphaned object behind, which is
// accepted; the record delete itself is never rolled back or blocked.
func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.deleteImageIfOwned(ctx, id, product.ImagePath)

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// deleteImageIfOwned best-effort deletes an image that lives in the blob
// store. Legacy relative paths and foreign URLs are left alone.
func (s *catalogService) deleteImageIfOwned(ctx context.Context, productID int64, imagePath string) {
	if imagePath == "" || !storage.IsExternalURL(imagePath) || !s.blobs.Owns(imagePath) {
		return
	}

	if err := s.blobs.Delete(ctx, imagePath); err != nil {
		s.logger.Warn("Failed to delete product image, object orphaned",
			zap.Int64("product_id", productID),
			zap.String("image_path", imagePath),
			zap.Error(err),
		)
	}
}
