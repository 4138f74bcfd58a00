package apperror

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type payRequest struct {
	PaymentReference string `json:"payment_reference" validate:"required"`
	Method           string `json:"method" validate:"omitempty,oneof=BANK CASH"`
}

func TestMapValidationError(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string { return fld.Tag.Get("json") })

	err := v.Struct(payRequest{})
	mapped := MapValidationError(err)

	var appErr *AppError
	assert.True(t, errors.As(mapped, &appErr))
	assert.Equal(t, CodeInvalidInput, appErr.Code)
	assert.Equal(t, "Payment Reference is required", appErr.Message)

	err = v.Struct(payRequest{PaymentReference: "TRX-1", Method: "CHEQUE"})
	mapped = MapValidationError(err)
	assert.True(t, errors.As(mapped, &appErr))
	assert.Equal(t, "Method must be one of: BANK CASH", appErr.Message)
}

func TestMapValidationError_NonValidatorError(t *testing.T) {
	mapped := MapValidationError(errors.New("EOF"))

	assert.Equal(t, "Invalid input", mapped.Error())
}
