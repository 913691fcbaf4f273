package auth

import (
	"time"

	"gorm.io/gorm"
)

// Role names. Seeded into user_roles on migrate.
const (
	RoleAdmin      = "admin"
	RoleStoreAdmin = "store_admin"
	RoleDesigner   = "designer"
	RoleCustomer   = "customer"
)

// Account states.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type UserRole struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	RoleName            string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description         string `gorm:"type:text" json:"description"`
	CanRegisterPublicly bool   `gorm:"default:false" json:"can_register_publicly"`
}

func (UserRole) TableName() string { return "user_roles" }

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"column:full_name;size:100;not null" json:"full_name"`
	Email        string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string         `gorm:"size:20" json:"phone"`
	PasswordHash string         `gorm:"column:password_hash;size:255;not null" json:"-"`
	RoleID       uint           `gorm:"column:role_id;not null" json:"role_id"`
	Role         UserRole       `gorm:"foreignKey:RoleID" json:"role"`
	Status       string         `gorm:"size:20;default:active" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

var defaultRoles = []UserRole{
	{RoleName: RoleAdmin, Description: "Mall operator with full access"},
	{RoleName: RoleStoreAdmin, Description: "Designer operator managing their boutiques"},
	{RoleName: RoleDesigner, Description: "Designer account without store management"},
	{RoleName: RoleCustomer, Description: "Shopper account", CanRegisterPublicly: true},
}

// SeedUserRoles inserts the default roles that do not exist yet.
func SeedUserRoles(db *gorm.DB) error {
	for _, role := range defaultRoles {
		r := role
		if err := db.Where(UserRole{RoleName: r.RoleName}).FirstOrCreate(&r).Error; err != nil {
			return err
		}
	}
	return nil
}

// IsKnownRole reports whether name is one of the seeded roles.
func IsKnownRole(name string) bool {
	for _, r := range defaultRoles {
		if r.RoleName == name {
			return true
		}
	}
	return false
}
