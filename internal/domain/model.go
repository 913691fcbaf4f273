// Package domain holds the gorm models of the morpheus schema and the pure
// rules that classify them. Nothing here talks to the database.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Mall is a shopping centre hosting boutiques.
type Mall struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Mall) TableName() string { return "mall" }

// Boutique is a store inside a mall.
type Boutique struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	MallID    *uint     `gorm:"index" json:"mall_id"`
	Mall      *Mall     `gorm:"foreignKey:MallID" json:"mall,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Boutique) TableName() string { return "boutique" }

// PaletteColor is one named brand color of a designer.
type PaletteColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
	RGB  string `json:"rgb"`
}

// MaxPaletteColors bounds Designer.Palette.
const MaxPaletteColors = 3

// Designer is a fashion designer exhibiting through boutiques. AccountID links
// the designer to exactly one login account.
type Designer struct {
	ID        uint                              `gorm:"primaryKey" json:"id"`
	AccountID uint                              `gorm:"not null;uniqueIndex" json:"account_id"`
	Name      string                            `gorm:"type:varchar(255);not null" json:"name"`
	Brand     string                            `gorm:"type:varchar(255)" json:"brand"`
	Email     string                            `gorm:"type:varchar(255)" json:"email"`
	Phone     string                            `gorm:"type:varchar(32)" json:"phone"`
	Palette   datatypes.JSONSlice[PaletteColor] `gorm:"type:jsonb" json:"palette"`
	CreatedAt time.Time                         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Designer) TableName() string { return "designer" }

// Contact is the designer contact shown next to a boutique: email when set,
// phone otherwise.
func (d Designer) Contact() string {
	if d.Email != "" {
		return d.Email
	}
	return d.Phone
}

// Product approval states.
const (
	ProductPending  = "pending"
	ProductApproved = "approved"
	ProductRejected = "rejected"
)

// Product is an item a designer submits for exhibition.
type Product struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DesignerID uint      `gorm:"not null;index" json:"designer_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	SKU        string    `gorm:"type:varchar(64);uniqueIndex" json:"sku"`
	PriceCents int64     `gorm:"not null;default:0" json:"price_cents"`
	Currency   string    `gorm:"type:varchar(3);default:'EUR'" json:"currency"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

// Event is a dated mall-wide happening designers register for.
type Event struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	Code      string               `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Name      string               `gorm:"type:varchar(255);not null" json:"name"`
	StartDate time.Time            `gorm:"type:date;not null;index" json:"start_date"`
	EndDate   time.Time            `gorm:"type:date;not null;index" json:"end_date"`
	Records   []RegistrationRecord `gorm:"foreignKey:EventID" json:"records,omitempty"`
	CreatedAt time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Event) TableName() string { return "event" }

// RecordKind discriminates event_detail rows.
type RecordKind string

const (
	KindRegistration RecordKind = "registration"
	KindAssignment   RecordKind = "assignment"
)

// RegistrationRecord is one event_detail row. A row without a product is a
// registration of a designer/boutique pair; a row with a product assigns that
// product under the registration.
type RegistrationRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    uint      `gorm:"not null;index" json:"event_id"`
	DesignerID *uint     `gorm:"index" json:"designer_id"`
	BoutiqueID *uint     `gorm:"index" json:"boutique_id"`
	MallID     *uint     `gorm:"index" json:"mall_id"`
	ProductID  *uint     `gorm:"index" json:"product_id"`
	Designer   *Designer `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
	Boutique   *Boutique `gorm:"foreignKey:BoutiqueID" json:"boutique,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RegistrationRecord) TableName() string { return "event_detail" }

// Kind is derived from product presence only.
func (r RegistrationRecord) Kind() RecordKind {
	if r.ProductID != nil {
		return KindAssignment
	}
	return KindRegistration
}
