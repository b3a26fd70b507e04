package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/ventrest-api/internal/platform/postgres"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var (
	_ ports.Repository       = (*Repository)(nil)
	_ ports.UnitOfWork       = (*Repository)(nil)
	_ ports.IdempotencyStore = (*Repository)(nil)
)

// Repository persists orders in PostgreSQL using GORM. Placement runs in one
// database transaction with row locks on the ordered products.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID                   uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	VendorID             uuid.UUID       `gorm:"column:vendor_id;type:uuid"`
	SupplierID           uuid.UUID       `gorm:"column:supplier_id;type:uuid"`
	TotalAmount          decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2)"`
	Status               string          `gorm:"column:status"`
	PaymentStatus        string          `gorm:"column:payment_status"`
	DeliveryStreet       string          `gorm:"column:delivery_street"`
	DeliveryCity         string          `gorm:"column:delivery_city"`
	DeliveryState        string          `gorm:"column:delivery_state"`
	DeliveryZipCode      string          `gorm:"column:delivery_zip_code"`
	DeliveryInstructions string          `gorm:"column:delivery_instructions"`
	Notes                string          `gorm:"column:notes"`
	EstimatedDelivery    *time.Time      `gorm:"column:estimated_delivery"`
	ActualDelivery       *time.Time      `gorm:"column:actual_delivery"`
	Rating               *int            `gorm:"column:rating"`
	Review               string          `gorm:"column:review"`
	IdempotencyKey       *string         `gorm:"column:idempotency_key"`
	RequestFingerprint   string          `gorm:"column:request_fingerprint"`
	CreatedAt            time.Time       `gorm:"column:created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
	Items                []itemRecord    `gorm:"foreignKey:OrderID;references:ID"`
}

func (orderRecord) TableName() string { return "orders" }

type itemRecord struct {
	OrderID     uuid.UUID       `gorm:"primaryKey;column:order_id;type:uuid"`
	LineNo      int             `gorm:"primaryKey;column:line_no;autoIncrement:false"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid"`
	ProductName string          `gorm:"column:product_name"`
	Quantity    int             `gorm:"column:quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(14,2)"`
}

func (itemRecord) TableName() string { return "order_items" }

type idempotencyRecord struct {
	Key         string         `gorm:"primaryKey;column:key;size:255"`
	VendorID    uuid.UUID      `gorm:"column:vendor_id;type:uuid"`
	RequestHash string         `gorm:"column:request_hash;size:64"`
	OrderIDs    pq.StringArray `gorm:"column:order_ids;type:text[]"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

// Do runs fn inside a database transaction.
func (r *Repository) Do(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &placementTx{db: db})
	})
}

// GetByID fetches an order with its line items.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.withItems(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// ListByVendor returns the vendor's orders, newest first.
func (r *Repository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*ports.OrderProjection, error) {
	return r.list(ctx, 0, "vendor_id = ?", vendorID)
}

// ListBySupplier returns the supplier's orders, newest first.
func (r *Repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*ports.OrderProjection, error) {
	return r.list(ctx, 0, "supplier_id = ?", supplierID)
}

// RecentByVendor returns at most limit of the vendor's newest orders.
func (r *Repository) RecentByVendor(ctx context.Context, vendorID uuid.UUID, limit int) ([]*ports.OrderProjection, error) {
	return r.list(ctx, limit, "vendor_id = ?", vendorID)
}

// RecentBySupplier returns at most limit of the supplier's newest orders.
func (r *Repository) RecentBySupplier(ctx context.Context, supplierID uuid.UUID, limit int) ([]*ports.OrderProjection, error) {
	return r.list(ctx, limit, "supplier_id = ?", supplierID)
}

// UpdateStatus is a compare-and-set on the stored status.
func (r *Repository) UpdateStatus(ctx context.Context, order *domain.Order, from domain.Status) (*ports.OrderProjection, error) {
	updates := map[string]any{
		"status":     string(order.Status),
		"updated_at": gorm.Expr("NOW()"),
	}
	if order.ActualDelivery != nil {
		updates["actual_delivery"] = *order.ActualDelivery
	}
	return r.conditionalUpdate(ctx, order.ID, updates, "status = ?", string(from))
}

// UpdatePayment is a compare-and-set on the stored payment status.
func (r *Repository) UpdatePayment(ctx context.Context, order *domain.Order, from domain.PaymentStatus) (*ports.OrderProjection, error) {
	updates := map[string]any{
		"payment_status": string(order.PaymentStatus),
		"updated_at":     gorm.Expr("NOW()"),
	}
	return r.conditionalUpdate(ctx, order.ID, updates, "payment_status = ?", string(from))
}

// SaveReview stores the review if the order is delivered and not yet rated.
func (r *Repository) SaveReview(ctx context.Context, order *domain.Order) (*ports.OrderProjection, error) {
	if order.Review == nil {
		return nil, errors.New("order has no review")
	}
	updates := map[string]any{
		"rating":     order.Review.Rating,
		"review":     order.Review.Text,
		"updated_at": gorm.Expr("NOW()"),
	}
	return r.conditionalUpdate(ctx, order.ID, updates, "status = ? AND rating IS NULL", string(domain.StatusDelivered))
}

// Get returns the idempotency record for key, or nil.
func (r *Repository) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := r.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort()
}

func (r *Repository) conditionalUpdate(ctx context.Context, id uuid.UUID, updates map[string]any, guard string, args ...any) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ?", id).
		Where(guard, args...).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ports.ErrStaleOrder
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) list(ctx context.Context, limit int, query string, args ...any) ([]*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	tx := r.withItems(ctx).Where(query, args...).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var records []orderRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	result := make([]*ports.OrderProjection, 0, len(records))
	for i := range records {
		result = append(result, records[i].toProjection())
	}
	return result, nil
}

func (r *Repository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no ASC")
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

// placementTx implements ports.Tx on an open transaction.
type placementTx struct {
	db *gorm.DB
}

func (t *placementTx) LockProduct(ctx context.Context, id uuid.UUID) (*catalogdomain.Product, error) {
	product, err := catalogpostgres.LockByID(ctx, t.db, id)
	if errors.Is(err, catalogports.ErrNotFound) {
		return nil, ports.ErrProductNotFound
	}
	return product, err
}

func (t *placementTx) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return catalogpostgres.DecrementStock(ctx, t.db, id, qty)
}

func (t *placementTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	record := toRecord(order)
	items := record.Items
	record.Items = nil
	if err := t.db.WithContext(ctx).Omit("Items").Create(&record).Error; err != nil {
		return err
	}
	return t.db.WithContext(ctx).Create(&items).Error
}

func (t *placementTx) ClaimIdempotencyKey(ctx context.Context, rec ports.IdempotencyRecord) error {
	ids := make(pq.StringArray, 0, len(rec.OrderIDs))
	for _, id := range rec.OrderIDs {
		ids = append(ids, id.String())
	}
	record := idempotencyRecord{
		Key:         rec.Key,
		VendorID:    rec.VendorID,
		RequestHash: rec.RequestHash,
		OrderIDs:    ids,
		CreatedAt:   rec.CreatedAt,
	}
	if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return ports.ErrKeyClaimed
		}
		return err
	}
	return nil
}

func toRecord(o *domain.Order) orderRecord {
	record := orderRecord{
		ID:                   o.ID,
		VendorID:             o.VendorID,
		SupplierID:           o.SupplierID,
		TotalAmount:          o.TotalAmount,
		Status:               string(o.Status),
		PaymentStatus:        string(o.PaymentStatus),
		DeliveryStreet:       o.DeliveryAddress.Street,
		DeliveryCity:         o.DeliveryAddress.City,
		DeliveryState:        o.DeliveryAddress.State,
		DeliveryZipCode:      o.DeliveryAddress.ZipCode,
		DeliveryInstructions: o.DeliveryInstructions,
		Notes:                o.Notes,
		EstimatedDelivery:    o.EstimatedDelivery,
		ActualDelivery:       o.ActualDelivery,
		RequestFingerprint:   o.RequestFingerprint,
		Items:                make([]itemRecord, 0, len(o.Items)),
	}
	if o.IdempotencyKey != "" {
		key := o.IdempotencyKey
		record.IdempotencyKey = &key
	}
	if o.Review != nil {
		rating := o.Review.Rating
		record.Rating = &rating
		record.Review = o.Review.Text
	}
	for i, item := range o.Items {
		record.Items = append(record.Items, itemRecord{
			OrderID:     o.ID,
			LineNo:      i + 1,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return record
}

func (r orderRecord) toProjection() *ports.OrderProjection {
	order := &domain.Order{
		ID:            r.ID,
		VendorID:      r.VendorID,
		SupplierID:    r.SupplierID,
		TotalAmount:   r.TotalAmount,
		Status:        domain.Status(r.Status),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		DeliveryAddress: domain.Address{
			Street:  r.DeliveryStreet,
			City:    r.DeliveryCity,
			State:   r.DeliveryState,
			ZipCode: r.DeliveryZipCode,
		},
		DeliveryInstructions: r.DeliveryInstructions,
		Notes:                r.Notes,
		EstimatedDelivery:    r.EstimatedDelivery,
		ActualDelivery:       r.ActualDelivery,
		RequestFingerprint:   r.RequestFingerprint,
		Items:                make([]domain.LineItem, 0, len(r.Items)),
	}
	if r.IdempotencyKey != nil {
		order.IdempotencyKey = *r.IdempotencyKey
	}
	if r.Rating != nil {
		order.Review = &domain.Review{Rating: *r.Rating, Text: r.Review}
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.LineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	p := projection.New(order, r.CreatedAt, r.UpdatedAt)
	return &p
}

func (r idempotencyRecord) toPort() (*ports.IdempotencyRecord, error) {
	ids := make([]uuid.UUID, 0, len(r.OrderIDs))
	for _, raw := range r.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		VendorID:    r.VendorID,
		RequestHash: r.RequestHash,
		OrderIDs:    ids,
		CreatedAt:   r.CreatedAt,
	}, nil
}
