package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
)

// LockByID loads a product with SELECT ... FOR UPDATE. tx must be an open transaction.
func LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Product, error) {
	var record productRecord
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// DecrementStock removes qty units in one conditional statement and marks the
// product out of stock when it reaches zero. No matching row means too little stock.
func DecrementStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	result := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?,
		    status = CASE WHEN stock - ? = 0 AND status = ? THEN ? ELSE status END,
		    updated_at = NOW()
		WHERE id = ? AND stock >= ?`,
		qty, qty, string(domain.StatusActive), string(domain.StatusOutOfStock), id, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}
