package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

// Product represents something sold at a fixed price, priced in the
// organization's native currency.
type Product struct {
	shared.BaseEntity
	Title    string               `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency valueobject.Currency `gorm:"type:varchar(3);not null"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(title string, price valueobject.Money) (*Product, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product title cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product price cannot be negative")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Title:      title,
		Price:      price.Amount(),
		Currency:   price.Currency(),
	}, nil
}

// Update edits the product fields
func (p *Product) Update(title string, price valueobject.Money) error {
	if title == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product title cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Product price cannot be negative")
	}
	p.Title = title
	p.Price = price.Amount()
	p.Currency = price.Currency()
	p.UpdatedAt = time.Now()
	return nil
}

// PriceMoney returns the price as Money
func (p *Product) PriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Price, p.Currency)
	return m
}
