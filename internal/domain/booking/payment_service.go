package booking

import (
	"github.com/openaccounting/backend/internal/domain/shared"
)

// Well-known payment service codes
const (
	ServiceCodeCash   = "cash"
	ServiceCodePayPal = "paypal"
)

// PaymentService represents a channel through which money moves,
// such as the cash register or a PayPal account
type PaymentService struct {
	shared.BaseEntity
	Code string `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (PaymentService) TableName() string {
	return "payment_services"
}

// NewPaymentService creates a new payment service
func NewPaymentService(code, name string) (*PaymentService, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Service code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Service name cannot be empty")
	}
	return &PaymentService{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
	}, nil
}

// IsCash returns true for the cash register service. Cash payments get
// sequential transaction codes assigned by the accounting month counter
// instead of an external transaction id.
func (s *PaymentService) IsCash() bool {
	return s.Code == ServiceCodeCash
}
