package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Apurer/ventrest-api/internal/domains/users/domain"
	"github.com/Apurer/ventrest-api/internal/domains/users/ports"
	platformpostgres "github.com/Apurer/ventrest-api/internal/platform/postgres"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID           uuid.UUID `gorm:"primaryKey;column:id;type:uuid"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	Name         string    `gorm:"column:name"`
	Phone        string    `gorm:"column:phone"`
	BusinessName string    `gorm:"column:business_name"`
	Street       string    `gorm:"column:street"`
	City         string    `gorm:"column:city"`
	State        string    `gorm:"column:state"`
	ZipCode      string    `gorm:"column:zip_code"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*ports.UserProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Update overwrites profile, password and active flag. Email and role are immutable.
func (r *Repository) Update(ctx context.Context, user *domain.User) (*ports.UserProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	result := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
		"password_hash": record.PasswordHash,
		"name":          record.Name,
		"phone":         record.Phone,
		"business_name": record.BusinessName,
		"street":        record.Street,
		"city":          record.City,
		"state":         record.State,
		"zip_code":      record.ZipCode,
		"is_active":     record.IsActive,
		"updated_at":    gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

// GetByID fetches a user by identifier.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*ports.UserProjection, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail fetches a user by case-insensitive email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*ports.UserProjection, error) {
	return r.first(ctx, "LOWER(email) = ?", domain.NormalizeEmail(email))
}

func (r *Repository) first(ctx context.Context, query string, args ...any) (*ports.UserProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).Where(query, args...).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Name:         u.Name,
		Phone:        u.Phone,
		BusinessName: u.BusinessName,
		Street:       u.Address.Street,
		City:         u.Address.City,
		State:        u.Address.State,
		ZipCode:      u.Address.ZipCode,
		IsActive:     u.Active,
	}
}

func (r userRecord) toProjection() *ports.UserProjection {
	user := &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         auth.Role(r.Role),
		Name:         r.Name,
		Phone:        r.Phone,
		BusinessName: r.BusinessName,
		Address: domain.Address{
			Street:  r.Street,
			City:    r.City,
			State:   r.State,
			ZipCode: r.ZipCode,
		},
		Active: r.IsActive,
	}
	p := projection.New(user, r.CreatedAt, r.UpdatedAt)
	return &p
}
