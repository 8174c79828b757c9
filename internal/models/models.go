package models

import (
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleStandard      Role = "standard"
	RoleAdministrator Role = "administrator"
)

func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleAdministrator
	}
	return RoleStandard
}

// Principal is the authenticated user of a session.
type Principal struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdministrator
}

// User never carries the credential hash out of the store layer except for
// the lookup used by authentication.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
}

type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type CartEntry struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CartLine is a cart entry as shown to its owner.
type CartLine struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// PricedCartEntry is a cart entry joined with the product price read at
// checkout time.
type PricedCartEntry struct {
	CartEntryID int64
	ProductID   int64
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (e PricedCartEntry) Subtotal() decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

type ShippingDetails struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"required,max=300"`
	Address2 string `json:"address2,omitempty" validate:"omitempty,max=300"`
	City     string `json:"city" validate:"required,max=100"`
	State    string `json:"state" validate:"required,max=100"`
	ZipCode  string `json:"zip_code" validate:"required,max=20"`
	Country  string `json:"country" validate:"required,max=100"`
}

type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Shipping    ShippingDetails `json:"shipping"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Paid        bool            `json:"paid"`
	Items       []OrderLineItem `json:"items,omitempty"`
}

type OrderSummary struct {
	ID          int64           `json:"id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Paid        bool            `json:"paid"`
	Name        string          `json:"name"`
	City        string          `json:"city"`
	State       string          `json:"state"`
}

type OrderLineItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderLineView is a line item as shown to the order's owner.
type OrderLineView struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type Review struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Text      string `json:"text_review"`
}

type ReviewView struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
	Text        string `json:"text_review"`
}
