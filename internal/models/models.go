package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"type:varchar(254);not null"`
	FriendlyName *string   `gorm:"type:varchar(254)"`
	Description  *string   `gorm:"type:text"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index"`
	Category      *Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	SKU           *string          `gorm:"type:varchar(254);index"`
	Name          string           `gorm:"type:varchar(254);not null"`
	Description   string           `gorm:"type:text;not null"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`

	// CNC-specific specs
	Dimensions       *string          `gorm:"type:varchar(100)"` // LxWxH in mm
	Weight           *decimal.Decimal `gorm:"type:decimal(6,2)"` // kg
	Material         *string          `gorm:"type:varchar(100)"`
	PowerRequirement *string          `gorm:"type:varchar(100)"`
	WorkingArea      *string          `gorm:"type:varchar(100)"`
	SpindleSpeed     *string          `gorm:"type:varchar(100)"`

	Rating   *decimal.Decimal `gorm:"type:decimal(3,2)"`
	InStock  bool             `gorm:"not null;default:true"`
	StockQty int              `gorm:"not null;default:0"`
	Featured bool             `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

// DisplayPrice is the effective unit price: the discount price when it
// actually undercuts the regular price, the regular price otherwise.
func (p *Product) DisplayPrice() decimal.Decimal {
	if p.IsOnSale() {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p *Product) IsOnSale() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// UserProfile holds default delivery information and notification
// preferences. One row per account, created alongside it.
type UserProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	DefaultPhoneNumber    *string `gorm:"type:varchar(20)"`
	DefaultStreetAddress1 *string `gorm:"type:varchar(80)"`
	DefaultStreetAddress2 *string `gorm:"type:varchar(80)"`
	DefaultTownOrCity     *string `gorm:"type:varchar(40)"`
	DefaultCounty         *string `gorm:"type:varchar(80)"`
	DefaultPostcode       *string `gorm:"type:varchar(20)"`
	DefaultCountry        *string `gorm:"type:varchar(40)"`

	EmailNotifications bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Orders []Order `gorm:"foreignKey:UserProfileID"`
}

func (UserProfile) TableName() string { return "user_profiles" }

type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string    `gorm:"type:char(32);not null;uniqueIndex"`

	UserProfileID *uuid.UUID   `gorm:"type:uuid;index"` // null for guest checkout
	UserProfile   *UserProfile `gorm:"foreignKey:UserProfileID;constraint:OnDelete:SET NULL"`

	FullName       string  `gorm:"type:varchar(50);not null"`
	Email          string  `gorm:"type:varchar(254);not null"`
	PhoneNumber    string  `gorm:"type:varchar(20);not null"`
	Country        string  `gorm:"type:varchar(40);not null"`
	Postcode       *string `gorm:"type:varchar(20)"`
	TownOrCity     string  `gorm:"type:varchar(40);not null"`
	StreetAddress1 string  `gorm:"type:varchar(80);not null"`
	StreetAddress2 *string `gorm:"type:varchar(80)"`
	County         *string `gorm:"type:varchar(80)"`

	Date         time.Time       `gorm:"not null;default:now();index"`
	DeliveryCost decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	OrderTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	GrandTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	// Serialized snapshot of the cart that produced this order.
	OriginalCart string  `gorm:"type:text;not null;default:''"`
	StripePID    *string `gorm:"type:varchar(254)"` // set by the payment webhook

	Items []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

type OrderLineItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID"`

	// Size bucket label for size-keyed cart entries, null for plain lines.
	// One order may carry several lines for the same product, one per size.
	ProductSize *string `gorm:"type:varchar(10)"`

	Quantity int `gorm:"not null"`

	// Frozen at materialization time so later price changes never rewrite
	// order history.
	LineitemTotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderLineItem) TableName() string { return "order_line_items" }
