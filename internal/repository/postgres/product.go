package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/repository"
	"github.com/coreforge/storefront/pkg/database"
	apperrors "github.com/coreforge/storefront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// The images column stores the single-string form of the image list; all
// reads and writes cross that boundary through domain.DecodeImages and
// domain.EncodeImages.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = "id, name, slug, description, price, type, cooling, images, featured, is_new, created_at, updated_at"

// productSortColumns whitelists sortable fields against their columns.
var productSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"slug":       "slug",
	"price":      "price",
	"type":       "type",
	"featured":   "featured",
	"new":        "is_new",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var storedImages string
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Type, &p.Cooling,
		&storedImages, &p.Featured, &p.New, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Images, err = domain.DecodeImages(storedImages)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// productWhere translates whitelisted filter keys into WHERE fragments.
func productWhere(filter map[string]any, args []any) ([]string, []any) {
	var conds []string

	if v, ok := filter["type"]; ok {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if v, ok := filter["cooling"]; ok {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("cooling = $%d", len(args)))
	}
	if v, ok := filter["featured"]; ok {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("featured = $%d", len(args)))
	}
	if v, ok := filter["new"]; ok {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("is_new = $%d", len(args)))
	}
	if v, ok := filter["id"]; ok {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if v, ok := filter["q"]; ok {
		args = append(args, fmt.Sprintf("%%%v%%", v))
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	return conds, args
}

// List returns a page of products plus the total count for the filter.
func (r *ProductRepository) List(ctx context.Context, params repository.ListParams) ([]domain.Product, int, error) {
	conds, args := productWhere(params.Filter, nil)

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	orderBy := "created_at"
	if col, ok := productSortColumns[params.SortField]; ok {
		orderBy = col
	}
	dir := "ASC"
	if strings.EqualFold(params.SortOrder, "DESC") {
		dir = "DESC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		productColumns, where, orderBy, dir, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

// Search serves the storefront read path: featured and new items first, then
// newest; optional type and free-text constraints.
func (r *ProductRepository) Search(ctx context.Context, q repository.CatalogQuery) ([]domain.Product, error) {
	var conds []string
	var args []any

	if q.Featured {
		conds = append(conds, "featured = TRUE")
	}
	if q.New {
		conds = append(conds, "is_new = TRUE")
	}
	if q.Type != "" {
		args = append(args, q.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE $%d OR description ILIKE $%d OR type ILIKE $%d OR cooling ILIKE $%d)", n, n, n, n))
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY featured DESC, is_new DESC, created_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// GetByID retrieves one product.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySlug retrieves one product by its URL slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE slug = $1", slug)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", slug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	storedImages, err := domain.EncodeImages(p.Images)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO products (id, name, slug, description, price, type, cooling, images, featured, is_new, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.Type, p.Cooling,
		storedImages, p.Featured, p.New, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	storedImages, err := domain.EncodeImages(p.Images)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, slug = $3, description = $4, price = $5, type = $6,
		    cooling = $7, images = $8, featured = $9, is_new = $10, updated_at = $11
		WHERE id = $1`,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.Type, p.Cooling,
		storedImages, p.Featured, p.New, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}
