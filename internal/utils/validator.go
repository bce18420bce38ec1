// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("category", validateCategory)
	validate.RegisterValidation("eth_network", validateNetwork)
	validate.RegisterValidation("price", validatePrice)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateCategory(fl validator.FieldLevel) bool {
	category := fl.Field().String()
	for _, c := range models.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func validateNetwork(fl validator.FieldLevel) bool {
	_, ok := wallet.ParseNetworkKey(fl.Field().String())
	return ok
}

// validatePrice accepts a whole yen amount written as digits.
func validatePrice(fl validator.FieldLevel) bool {
	price := strings.TrimSpace(fl.Field().String())
	if price == "" || strings.Trim(price, "0") == "" {
		return false
	}
	for _, r := range price {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(price) <= 15
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of " + e.Param()
	case "category":
		return "Unknown category"
	case "eth_network":
		return "Unsupported network"
	case "eth_addr":
		return "Invalid Ethereum address"
	case "price":
		return "Price must be a positive whole number"
	default:
		return e.Field() + " is invalid"
	}
}
