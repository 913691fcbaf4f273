package designer

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

type Repository interface {
	FindByID(ctx context.Context, id uint) (*domain.Designer, error)
	FindByAccountID(ctx context.Context, accountID uint) (*domain.Designer, error)
	List(ctx context.Context, search string, limit, offset int) ([]domain.Designer, int64, error)
	UpdatePalette(ctx context.Context, id uint, palette []domain.PaletteColor) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uint) (*domain.Designer, error) {
	var d domain.Designer
	err := r.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDesignerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByAccountID resolves the designer linked to a login account.
func (r *repository) FindByAccountID(ctx context.Context, accountID uint) (*domain.Designer, error) {
	var d domain.Designer
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDesignerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]domain.Designer, int64, error) {
	var (
		designers []domain.Designer
		total     int64
	)

	query := r.db.WithContext(ctx).Model(&domain.Designer{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR brand ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&designers).Error
	return designers, total, err
}

func (r *repository) UpdatePalette(ctx context.Context, id uint, palette []domain.PaletteColor) error {
	res := r.db.WithContext(ctx).Model(&domain.Designer{}).
		Where("id = ?", id).
		Update("palette", datatypes.NewJSONSlice(palette))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDesignerNotFound
	}
	return nil
}
