package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	amountPattern   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// RegisterValidations installs the monetary format validators on gin's
// binding engine. Must run once before the router serves requests.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("amount", validAmount)
	_ = v.RegisterValidation("currency", validCurrency)
}

func validAmount(fl validator.FieldLevel) bool {
	return amountPattern.MatchString(fl.Field().String())
}

func validCurrency(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || currencyPattern.MatchString(s)
}
