package approval

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

type Repository interface {
	FindProduct(ctx context.Context, id uint) (*domain.Product, error)
	// Approve inserts the assignment row and flips the product to approved
	// in one transaction.
	Approve(ctx context.Context, rec *domain.RegistrationRecord) error
	SetStatus(ctx context.Context, productID uint, from, to string) error
	ListPending(ctx context.Context, eventID uint) ([]PendingProduct, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindProduct(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Approve(ctx context.Context, rec *domain.RegistrationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.RegistrationRecord{}).
			Where("event_id = ? AND product_id = ?", rec.EventID, rec.ProductID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyAssigned
		}

		if err := tx.Omit("Designer", "Boutique").Create(rec).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.Product{}).
			Where("id = ? AND status = ?", *rec.ProductID, domain.ProductPending).
			Update("status", domain.ProductApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotPending
		}
		return nil
	})
}

func (r *repository) SetStatus(ctx context.Context, productID uint, from, to string) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND status = ?", productID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotPending
	}
	return nil
}

// ListPending returns pending products of designers registered for the event.
func (r *repository) ListPending(ctx context.Context, eventID uint) ([]PendingProduct, error) {
	registered := r.db.Model(&domain.RegistrationRecord{}).
		Select("designer_id").
		Where("event_id = ? AND product_id IS NULL AND designer_id IS NOT NULL", eventID)

	var out []PendingProduct
	err := r.db.WithContext(ctx).
		Table("product p").
		Select("p.*, d.name AS designer_name").
		Joins("JOIN designer d ON d.id = p.designer_id").
		Where("p.status = ? AND p.designer_id IN (?)", domain.ProductPending, registered).
		Order("p.created_at ASC, p.id ASC").
		Scan(&out).Error
	return out, err
}
