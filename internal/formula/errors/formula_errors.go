package formulaerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrSyntax = apperror.New(
		apperror.CodeFormula,
		"invalid formula syntax",
		http.StatusUnprocessableEntity,
	)
	ErrUnknownIdentifier = apperror.New(
		apperror.CodeFormula,
		"formula references an unsupported identifier",
		http.StatusUnprocessableEntity,
	)
	ErrUnknownFunction = apperror.New(
		apperror.CodeFormula,
		"formula calls an unsupported function",
		http.StatusUnprocessableEntity,
	)
	ErrTooComplex = apperror.New(
		apperror.CodeFormula,
		"formula is too long or too deeply nested",
		http.StatusUnprocessableEntity,
	)
	ErrDivisionByZero = apperror.New(
		apperror.CodeCalculation,
		"division by zero",
		http.StatusUnprocessableEntity,
	)
)
