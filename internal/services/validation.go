package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper. Decimal fields are
// validated through their float value so numeric tags such as gt=0 apply.
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &ValidationHelper{validator: v}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// amountTags are the numeric checks that map onto ErrInvalidAmount.
var amountTags = map[string]bool{"gt": true, "gte": true}

// Check validates s and translates failures into ledger sentinel errors.
func (vh *ValidationHelper) Check(s any) error {
	err := vh.ValidateStruct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for _, fe := range fieldErrs {
		if amountTags[fe.Tag()] {
			return fmt.Errorf("%w (%s)", ErrInvalidAmount, fe.Field())
		}
	}
	if fieldErrs[0].Field() == "ShiftType" {
		return ErrInvalidShift
	}
	return fmt.Errorf("%w: field %s failed on '%s'", ErrValidation, fieldErrs[0].Field(), fieldErrs[0].Tag())
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var fieldErrs validator.ValidationErrors
	if validationErr != nil && errors.As(validationErr, &fieldErrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}
