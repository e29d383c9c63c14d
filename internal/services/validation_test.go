package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type TestStruct struct {
	Name   string          `validate:"required,min=2"`
	Amount decimal.Decimal `validate:"gt=0"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		valid := TestStruct{Name: "Phone", Amount: decimal.NewFromInt(100)}
		assert.NoError(t, vh.ValidateStruct(&valid))
	})

	t.Run("decimal compared by value", func(t *testing.T) {
		invalid := TestStruct{Name: "Phone", Amount: decimal.NewFromInt(-5)}

		err := vh.ValidateStruct(&invalid)
		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 1)
		assert.Equal(t, "Amount", validationErrors[0].Field())
		assert.Equal(t, "gt", validationErrors[0].Tag())
	})

	t.Run("missing required fields", func(t *testing.T) {
		invalid := TestStruct{Name: "J"}

		err := vh.ValidateStruct(&invalid)
		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 2)
	})
}

func TestValidationHelper_Check(t *testing.T) {
	vh := NewValidationHelper()

	assert.NoError(t, vh.Check(&TestStruct{Name: "Phone", Amount: decimal.NewFromInt(1)}))
	assert.ErrorIs(t, vh.Check(&TestStruct{Name: "Phone"}), ErrInvalidAmount)

	err := vh.Check(&TestStruct{Name: "", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrInvalidAmount)

	assert.ErrorIs(t, vh.Check(&NewSession{ShiftType: "evening"}), ErrInvalidShift)
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation errors", func(t *testing.T) {
		vh := NewValidationHelper()
		validationErr := vh.ValidateStruct(&TestStruct{Name: "J"})
		assert.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response.Details, "Name")
		assert.Contains(t, response.Details, "Amount")
	})

	t.Run("ledger sentinel is not treated as field errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, ErrDuplicateShift.Error(), http.StatusBadRequest, ErrDuplicateShift)

		var response ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Nil(t, response.Details)
	})
}
