package domain

// Category groups products in the catalog. Names are unique across the
// whole catalog.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Variation is an optional named price alternative of a product.
type Variation struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Product represents a product in the catalog. ImagePath is either empty,
// a blob-store URL, or a legacy relative path that predates the blob store.
// ColorCode carries the free-form color/vendor-code label shown to buyers
// (exposed as corCodigo, stored as cor_codigo).
type Product struct {
	ID           int64       `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Description  string      `json:"description" db:"description"`
	Price        float64     `json:"price" db:"price"`
	CategoryID   int64       `json:"category_id" db:"category_id"`
	ImagePath    string      `json:"image_path" db:"image_path"`
	ColorCode    string      `json:"corCodigo" db:"cor_codigo"`
	Stock        int         `json:"stock" db:"stock"`
	Variations   []Variation `json:"variations,omitempty" db:"variations"`
	CategoryName string      `json:"category_name,omitempty" db:"category_name"`
}

// ProductPatch describes a partial product update. A nil field is left
// untouched by the store; a non-nil field overwrites the stored value.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	CategoryID  *int64
	ImagePath   *string
	ColorCode   *string
	Stock       *int
	Variations  *[]Variation
}

// IsZero reports whether the patch carries no changes.
func (p ProductPatch) IsZero() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.CategoryID == nil && p.ImagePath == nil && p.ColorCode == nil &&
		p.Stock == nil && p.Variations == nil
}

// CartItem is one line of the in-memory shopping cart used to build the
// outbound quote message. It is never persisted.
type CartItem struct {
	Name      string `json:"name"`
	ColorCode string `json:"corCodigo,omitempty"`
	Quantity  int    `json:"quantity"`
}
