package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, userID uint) (User, error)
	FindRoleByName(ctx context.Context, name string) (*UserRole, error)
	UpdateRole(ctx context.Context, userID, roleID uint) error
	List(ctx context.Context, roleName string, limit, offset int) ([]User, int64, error)
	GetPublicRoles(ctx context.Context) ([]UserRole, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail is used by login.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &u, err
}

func (r *repository) FindByID(ctx context.Context, userID uint) (User, error) {
	var user User
	err := r.db.WithContext(ctx).Preload("Role").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrUserNotFound
	}
	return user, err
}

func (r *repository) FindRoleByName(ctx context.Context, name string) (*UserRole, error) {
	var role UserRole
	err := r.db.WithContext(ctx).Where("role_name = ?", name).First(&role).Error
	return &role, err
}

func (r *repository) UpdateRole(ctx context.Context, userID, roleID uint) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("role_id", roleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List pages through users, optionally restricted to one role.
func (r *repository) List(ctx context.Context, roleName string, limit, offset int) ([]User, int64, error) {
	var (
		users []User
		total int64
	)

	query := r.db.WithContext(ctx).Model(&User{}).Preload("Role")
	if roleName != "" {
		query = query.Joins("JOIN user_roles ON user_roles.id = users.role_id").
			Where("user_roles.role_name = ?", roleName)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("users.id ASC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

func (r *repository) GetPublicRoles(ctx context.Context) ([]UserRole, error) {
	var roles []UserRole
	err := r.db.WithContext(ctx).Where("can_register_publicly = ?", true).Find(&roles).Error
	return roles, err
}
