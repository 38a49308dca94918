package repositories

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// jsonMemberPattern matches v as an element of a JSON encoded string array.
func jsonMemberPattern(v string) string {
	b, _ := json.Marshal(v)
	return likePattern(string(b))
}

// anyLike builds "(col LIKE ? OR col LIKE ? ...)" for a list of members.
func anyLike(column string, values []string) (string, []any) {
	clauses := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		clauses[i] = column + ` LIKE ? ESCAPE '\'`
		args[i] = jsonMemberPattern(v)
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

// Query narrows the catalog in SQL, then re-checks every predicate in Go so
// that JSON list membership and case folding are exact. When a predicate is
// only decided in Go the limit is applied after that check.
func (r *GORMProductRepository) Query(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.Collection != "" {
		q = q.Where("collections = ?", f.Collection)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Gender != "" {
		q = q.Where("gender = ?", f.Gender)
	}
	if len(f.Materials) > 0 {
		q = q.Where("material IN ?", f.Materials)
	}
	if len(f.Brands) > 0 {
		q = q.Where("brand IN ?", f.Brands)
	}
	if len(f.Sizes) > 0 {
		clause, args := anyLike("sizes", f.Sizes)
		q = q.Where(clause, args...)
	}
	if f.Color != "" {
		clause, args := anyLike("colors", []string{f.Color})
		q = q.Where(clause, args...)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	// Only the Go check below is exact for search; SQL just narrows.
	searchInSQL := true
	switch {
	case f.Search == "":
	case r.db.Dialector.Name() == "postgres":
		pattern := likePattern(f.Search)
		q = q.Where(`(name ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\')`, pattern, pattern)
	case isASCII(f.Search):
		pattern := likePattern(strings.ToLower(f.Search))
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	default:
		// sqlite LOWER and LIKE fold ASCII only
		searchInSQL = false
	}

	switch f.SortBy {
	case models.SortPriceAsc:
		q = q.Order("price ASC")
	case models.SortPriceDesc:
		q = q.Order("price DESC")
	case models.SortPopularity:
		q = q.Order("rating DESC")
	default:
		q = q.Order("created_at ASC")
	}
	q = q.Order("id ASC")

	if f.Limit > 0 && searchInSQL && !f.HasListPredicates() {
		q = q.Limit(f.Limit)
	}

	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, storeError(err, "failed to query products")
	}

	products := make([]models.Product, 0, len(rows))
	for i := range rows {
		if !f.Matches(&rows[i]) {
			continue
		}
		products = append(products, rows[i])
		if f.Limit > 0 && len(products) == f.Limit {
			break
		}
	}
	return products, nil
}

// List retrieves all products from the database.
func (r *GORMProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&products).Error; err != nil {
		return nil, storeError(err, "failed to get all products")
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, storeError(err, "failed to get product by ID %s", id)
	}
	return &product, nil
}

func (r *GORMProductRepository) BestSeller(ctx context.Context) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Order("rating DESC, id ASC").First(&product).Error; err != nil {
		return nil, storeError(err, "failed to get best seller")
	}
	return &product, nil
}

func (r *GORMProductRepository) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("created_at DESC, id ASC").Limit(limit).Find(&products).Error
	if err != nil {
		return nil, storeError(err, "failed to get new arrivals")
	}
	return products, nil
}

func (r *GORMProductRepository) Similar(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id <> ? AND gender = ? AND category = ?", p.ID, p.Gender, p.Category).
		Order("rating DESC, id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, storeError(err, "failed to get products similar to %s", p.ID)
	}
	return products, nil
}

// Create creates a new product in the database. A duplicate SKU yields ErrConflict.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return storeError(err, "failed to create product %s", product.SKU)
	}
	return nil
}

// Update saves every field of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if err := tx.Select("id", "created_at").First(&existing, "id = ?", product.ID).Error; err != nil {
			return storeError(err, "failed to find product %s for update", product.ID)
		}
		product.CreatedAt = existing.CreatedAt
		if err := tx.Save(product).Error; err != nil {
			return storeError(err, "failed to update product %s", product.ID)
		}
		return nil
	})
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return storeError(res.Error, "failed to delete product %s", id)
	}
	if res.RowsAffected == 0 {
		return notFound("product", id)
	}
	return nil
}
