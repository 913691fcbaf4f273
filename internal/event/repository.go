package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrBoutiqueNotFound     = errors.New("boutique not found")
	ErrDesignerNotFound     = errors.New("designer not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("designer already registered with this boutique for the event")
	ErrDuplicateCode        = errors.New("event code already exists")
	ErrHasAssignments       = errors.New("registration has approved product assignments")
	ErrInvalidDateRange     = errors.New("start_date must not be after end_date")
)

type Repository interface {
	// ListPage returns one page of events, latest start first, with their
	// records and each record's designer and boutique. With onlyActive only
	// events whose date range contains today are returned.
	ListPage(ctx context.Context, onlyActive bool, today time.Time, limit, offset int) ([]domain.Event, int64, error)
	FindWithRecords(ctx context.Context, id uint) (*domain.Event, error)
	Create(ctx context.Context, e *domain.Event) error
	Update(ctx context.Context, e *domain.Event) error
	Delete(ctx context.Context, id uint) error

	DesignerExists(ctx context.Context, designerID uint) (bool, error)
	BoutiqueMall(ctx context.Context, boutiqueID uint) (*uint, error)
	FindRegistration(ctx context.Context, eventID, designerID, boutiqueID uint) (*domain.RegistrationRecord, error)
	CreateRecord(ctx context.Context, r *domain.RegistrationRecord) error
	CountAssignments(ctx context.Context, eventID, designerID, boutiqueID uint) (int64, error)
	DeleteRecord(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func withRecords(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Records", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Records.Designer").
		Preload("Records.Boutique")
}

// ===========================
// Events

func (r *repository) ListPage(ctx context.Context, onlyActive bool, today time.Time, limit, offset int) ([]domain.Event, int64, error) {
	var (
		events []domain.Event
		total  int64
	)

	query := r.db.WithContext(ctx).Model(&domain.Event{})
	if onlyActive {
		day := domain.DateOnly(today).Format(time.DateOnly)
		query = query.Where("start_date <= ? AND end_date >= ?", day, day)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := withRecords(query).
		Order("start_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *repository) FindWithRecords(ctx context.Context, id uint) (*domain.Event, error) {
	var e domain.Event
	err := withRecords(r.db.WithContext(ctx)).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) Create(ctx context.Context, e *domain.Event) error {
	err := r.db.WithContext(ctx).Omit("Records").Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCode
	}
	return err
}

func (r *repository) Update(ctx context.Context, e *domain.Event) error {
	res := r.db.WithContext(ctx).Model(&domain.Event{}).Where("id = ?", e.ID).Updates(map[string]interface{}{
		"name":       e.Name,
		"start_date": e.StartDate,
		"end_date":   e.EndDate,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event together with its event_detail rows.
func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&domain.RegistrationRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Event{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEventNotFound
		}
		return nil
	})
}

// ===========================
// Registrations

func (r *repository) DesignerExists(ctx context.Context, designerID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Designer{}).Where("id = ?", designerID).Count(&n).Error
	return n > 0, err
}

// BoutiqueMall returns the mall of a boutique, nil when it has none.
func (r *repository) BoutiqueMall(ctx context.Context, boutiqueID uint) (*uint, error) {
	var b domain.Boutique
	err := r.db.WithContext(ctx).Select("id", "mall_id").First(&b, boutiqueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBoutiqueNotFound
	}
	if err != nil {
		return nil, err
	}
	return b.MallID, nil
}

func (r *repository) FindRegistration(ctx context.Context, eventID, designerID, boutiqueID uint) (*domain.RegistrationRecord, error) {
	var rec domain.RegistrationRecord
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND designer_id = ? AND boutique_id = ? AND product_id IS NULL", eventID, designerID, boutiqueID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) CreateRecord(ctx context.Context, rec *domain.RegistrationRecord) error {
	err := r.db.WithContext(ctx).Omit("Designer", "Boutique").Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyRegistered
	}
	return err
}

func (r *repository) CountAssignments(ctx context.Context, eventID, designerID, boutiqueID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RegistrationRecord{}).
		Where("event_id = ? AND designer_id = ? AND boutique_id = ? AND product_id IS NOT NULL", eventID, designerID, boutiqueID).
		Count(&n).Error
	return n, err
}

func (r *repository) DeleteRecord(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.RegistrationRecord{}, id).Error
}
