package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM. The schema is owned by
// internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// productRecord maps the product aggregate to the products table.
type productRecord struct {
	ID               uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	SupplierID       uuid.UUID       `gorm:"column:supplier_id;type:uuid"`
	Name             string          `gorm:"column:name"`
	Description      string          `gorm:"column:description"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Category         string          `gorm:"column:category"`
	Stock            int             `gorm:"column:stock"`
	Unit             string          `gorm:"column:unit"`
	Status           string          `gorm:"column:status"`
	Rating           decimal.Decimal `gorm:"column:rating;type:numeric(2,1)"`
	ReviewCount      int             `gorm:"column:review_count"`
	MinOrderQuantity int             `gorm:"column:min_order_quantity"`
	BulkDiscounts    []tierRecord    `gorm:"column:bulk_discounts;serializer:json"`
	ImageURL         string          `gorm:"column:image_url"`
	Tags             pq.StringArray  `gorm:"column:tags;type:text[]"`
	Featured         bool            `gorm:"column:featured"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type tierRecord struct {
	MinQuantity     int             `json:"minQuantity"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// catalogColumns are rewritten when an existing product is saved. Stock is
// absent so a stale copy cannot undo a concurrent decrement.
var catalogColumns = []string{
	"name", "description", "price", "category", "unit", "status",
	"rating", "review_count", "min_order_quantity", "bulk_discounts",
	"image_url", "tags", "featured", "updated_at",
}

// Save inserts a product or updates its catalog fields.
func (r *Repository) Save(ctx context.Context, product *domain.Product) (*ports.ProductProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := toRecord(product)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(catalogColumns),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// result back in the same transaction.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Product) error) (*ports.ProductProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(product); err != nil {
			return err
		}
		record := toRecord(product)
		return tx.Model(&record).Select(append([]string{"stock"}, catalogColumns...)).Updates(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a product by identifier.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*ports.ProductProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// List returns products matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ports.Filter) ([]*ports.ProductProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&productRecord{})
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.SupplierID != uuid.Nil {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		query = query.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	var records []productRecord
	if err := query.Order("created_at DESC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	result := make([]*ports.ProductProjection, 0, len(records))
	for i := range records {
		result = append(result, records[i].toProjection())
	}
	return result, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// toRecord maps a product onto its row representation.
func toRecord(p *domain.Product) productRecord {
	tiers := make([]tierRecord, 0, len(p.BulkDiscounts))
	for _, t := range p.BulkDiscounts {
		tiers = append(tiers, tierRecord{MinQuantity: t.MinQuantity, DiscountPercent: t.DiscountPercent})
	}
	return productRecord{
		ID:               p.ID,
		SupplierID:       p.SupplierID,
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price,
		Category:         string(p.Category),
		Stock:            p.Stock,
		Unit:             string(p.Unit),
		Status:           string(p.Status),
		Rating:           p.Rating,
		ReviewCount:      p.ReviewCount,
		MinOrderQuantity: p.MinOrderQuantity,
		BulkDiscounts:    tiers,
		ImageURL:         p.ImageURL,
		Tags:             pq.StringArray(append([]string{}, p.Tags...)),
		Featured:         p.Featured,
	}
}

// toDomain rebuilds the aggregate from a row.
func (r productRecord) toDomain() *domain.Product {
	tiers := make([]domain.DiscountTier, 0, len(r.BulkDiscounts))
	for _, t := range r.BulkDiscounts {
		tiers = append(tiers, domain.DiscountTier{MinQuantity: t.MinQuantity, DiscountPercent: t.DiscountPercent})
	}
	return &domain.Product{
		ID:               r.ID,
		SupplierID:       r.SupplierID,
		Name:             r.Name,
		Description:      r.Description,
		Price:            r.Price,
		Category:         domain.Category(r.Category),
		Stock:            r.Stock,
		Unit:             domain.Unit(r.Unit),
		Status:           domain.Status(r.Status),
		Rating:           r.Rating,
		ReviewCount:      r.ReviewCount,
		MinOrderQuantity: r.MinOrderQuantity,
		BulkDiscounts:    tiers,
		ImageURL:         r.ImageURL,
		Tags:             append([]string{}, r.Tags...),
		Featured:         r.Featured,
	}
}

func (r productRecord) toProjection() *ports.ProductProjection {
	p := projection.New(r.toDomain(), r.CreatedAt, r.UpdatedAt)
	return &p
}
