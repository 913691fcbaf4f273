package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

type Repository interface {
	ListBoutiques(ctx context.Context, mallID *uint) ([]domain.Boutique, error)
	ListBoutiquesByIDs(ctx context.Context, ids []uint, mallID *uint) ([]domain.Boutique, error)
	// EventRecords returns every event_detail row of an event with its designer.
	EventRecords(ctx context.Context, eventID uint) ([]domain.RegistrationRecord, error)
	// DesignerBoutiqueIDs returns the boutiques a designer is registered with
	// for an event. Assignment rows are not considered.
	DesignerBoutiqueIDs(ctx context.Context, eventID, designerID uint) ([]uint, error)
	ListMalls(ctx context.Context) ([]domain.Mall, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) boutiques(ctx context.Context, mallID *uint) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Boutique{}).Preload("Mall")
	if mallID != nil {
		q = q.Where("mall_id = ?", *mallID)
	}
	return q.Order("name ASC")
}

func (r *repository) ListBoutiques(ctx context.Context, mallID *uint) ([]domain.Boutique, error) {
	var out []domain.Boutique
	err := r.boutiques(ctx, mallID).Find(&out).Error
	return out, err
}

func (r *repository) ListBoutiquesByIDs(ctx context.Context, ids []uint, mallID *uint) ([]domain.Boutique, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Boutique
	err := r.boutiques(ctx, mallID).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *repository) EventRecords(ctx context.Context, eventID uint) ([]domain.RegistrationRecord, error) {
	var out []domain.RegistrationRecord
	err := r.db.WithContext(ctx).
		Preload("Designer").
		Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) DesignerBoutiqueIDs(ctx context.Context, eventID, designerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.RegistrationRecord{}).
		Distinct("boutique_id").
		Where("event_id = ? AND designer_id = ? AND product_id IS NULL AND boutique_id IS NOT NULL", eventID, designerID).
		Pluck("boutique_id", &ids).Error
	return ids, err
}

func (r *repository) ListMalls(ctx context.Context) ([]domain.Mall, error) {
	var out []domain.Mall
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}
