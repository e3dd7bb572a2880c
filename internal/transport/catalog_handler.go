package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"multkits-catalog/internal/domain"
	"multkits-catalog/internal/middleware"
	"multkits-catalog/internal/repository"
	"multkits-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryRequest is the payload for category create and rename.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// QuoteRequest carries the cart contents for a quote link.
type QuoteRequest struct {
	Items []QuoteItem `json:"items" validate:"dive"`
}

// QuoteItem is one cart line of a quote request.
type QuoteItem struct {
	Name      string `json:"name" validate:"required"`
	CorCodigo string `json:"corCodigo"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// QuoteResponse returns the rendered message and the wa.me link.
type QuoteResponse struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

// productForm is the multipart form shape shared by product create/update.
type productForm struct {
	Name       string  `validate:"required,max=255"`
	Price      float64 `validate:"gte=0"`
	CategoryID int64   `validate:"required,gt=0"`
	Stock      int     `validate:"gte=0"`
}

// CatalogHandler handles catalog HTTP requests
type CatalogHandler struct {
	catalog       service.CatalogService
	quotes        service.QuoteBuilder
	maxUploadSize int64
	logger        *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, quotes service.QuoteBuilder, maxUploadSize int64, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:       catalog,
		quotes:        quotes,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// RegisterRoutes registers all catalog routes. Mutating routes require an
// admin session.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		// Public catalog routes
		r.Get("/categories", h.ListCategories)
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Post("/quote", h.BuildQuote)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminOnly)

			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{id}", h.RenameCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)
		})
	})
}

// ListCategories handles listing all categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory handles category creation
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondBadRequest(w, err)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// RenameCategory handles category rename
func (h *CatalogHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondBadRequest(w, err)
		return
	}

	if err := h.catalog.RenameCategory(r.Context(), id, req.Name); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
		default:
			h.logger.Error("Failed to rename category", zap.Error(err), zap.Int64("category_id", id))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to rename category")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category updated"})
}

// DeleteCategory handles category deletion
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, repository.ErrCategoryInUse):
			middleware.RespondWithError(w, http.StatusConflict, "category still has products assigned to it")
		default:
			h.logger.Error("Failed to delete category", zap.Error(err), zap.Int64("category_id", id))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListProducts handles listing all products with category names
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles fetching a single product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err), zap.Int64("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles product creation from a multipart form with an
// optional image payload.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	product := &domain.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		ColorCode:   r.FormValue("corCodigo"),
	}
	product.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
	product.CategoryID, _ = strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	product.Stock, _ = strconv.Atoi(r.FormValue("stock"))

	if raw := r.FormValue("variations"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &product.Variations); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid variations payload")
			return
		}
	}

	form := productForm{
		Name:       product.Name,
		Price:      product.Price,
		CategoryID: product.CategoryID,
		Stock:      product.Stock,
	}
	if err := middleware.ValidateRequest(form); err != nil {
		h.respondBadRequest(w, err)
		return
	}

	image, err := h.imageUpload(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image upload")
		return
	}
	if image != nil {
		defer image.close()
	}

	product, err = h.catalog.CreateProduct(r.Context(), product, image.payload())
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles partial product updates. Only the form fields that
// are present are written; current_image_path carries the image path the
// editor last saw so a replaced image can be reclaimed.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	patch, err := h.productPatch(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	image, err := h.imageUpload(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image upload")
		return
	}
	if image != nil {
		defer image.close()
	}

	currentImagePath := r.FormValue("current_image_path")

	if err := h.catalog.UpdateProduct(r.Context(), id, patch, currentImagePath, image.payload()); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, repository.ErrCategoryNotFound):
			middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
		default:
			h.logger.Error("Failed to update product", zap.Error(err), zap.Int64("product_id", id))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product updated"})
}

// DeleteProduct handles product deletion
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err), zap.Int64("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// BuildQuote renders the WhatsApp quote message and link for a cart.
func (h *CatalogHandler) BuildQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondBadRequest(w, err)
		return
	}

	items := make([]domain.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CartItem{
			Name:      item.Name,
			ColorCode: item.CorCodigo,
			Quantity:  item.Quantity,
		})
	}

	response := QuoteResponse{
		Message: h.quotes.Message(items),
		Link:    h.quotes.Link(items),
	}
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// productPatch builds a ProductPatch from the form fields actually present.
func (h *CatalogHandler) productPatch(r *http.Request) (domain.ProductPatch, error) {
	patch := domain.ProductPatch{}

	if v, ok := formValue(r, "name"); ok {
		if strings.TrimSpace(v) == "" {
			return patch, errors.New("name must not be empty")
		}
		patch.Name = &v
	}
	if v, ok := formValue(r, "description"); ok {
		patch.Description = &v
	}
	if v, ok := formValue(r, "price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return patch, errors.New("price must be a non-negative number")
		}
		patch.Price = &price
	}
	if v, ok := formValue(r, "category_id"); ok {
		categoryID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || categoryID <= 0 {
			return patch, errors.New("category_id must be a positive integer")
		}
		patch.CategoryID = &categoryID
	}
	if v, ok := formValue(r, "corCodigo"); ok {
		patch.ColorCode = &v
	}
	if v, ok := formValue(r, "stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return patch, errors.New("stock must be a non-negative integer")
		}
		patch.Stock = &stock
	}
	if v, ok := formValue(r, "variations"); ok {
		var variations []domain.Variation
		if v != "" {
			if err := json.Unmarshal([]byte(v), &variations); err != nil {
				return patch, errors.New("invalid variations payload")
			}
		}
		patch.Variations = &variations
	}

	return patch, nil
}

// imageUpload extracts the optional image file from a multipart form.
func (h *CatalogHandler) imageUpload(r *http.Request) (*formImage, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil
	}

	return &formImage{
		upload: service.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        file,
		},
		file: file,
	}, nil
}

type formImage struct {
	upload service.ImageUpload
	file   interface{ Close() error }
}

func (f *formImage) payload() *service.ImageUpload {
	if f == nil {
		return nil
	}
	return &f.upload
}

func (f *formImage) close() {
	if f != nil && f.file != nil {
		f.file.Close()
	}
}

func (h *CatalogHandler) respondBadRequest(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
