package salarycomponenterrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrComponentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Salary component not found",
		http.StatusNotFound,
	)
	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Salary component assignment not found",
		http.StatusNotFound,
	)
	ErrComponentCodeExists = apperror.New(
		apperror.CodeConflict,
		"A salary component with this code already exists",
		http.StatusConflict,
	)
	ErrInvalidCode = apperror.New(
		apperror.CodeInvalidInput,
		"Component code must start with a letter or underscore and contain only letters, digits and underscores",
		http.StatusBadRequest,
	)
	ErrReservedCode = apperror.New(
		apperror.CodeInvalidInput,
		"Component code is reserved",
		http.StatusBadRequest,
	)
	ErrInvalidComponentType = apperror.New(
		apperror.CodeInvalidInput,
		"Component type must be one of EARNING, DEDUCTION, TAX",
		http.StatusBadRequest,
	)
	ErrInvalidCalculationType = apperror.New(
		apperror.CodeInvalidInput,
		"Calculation type must be one of FIXED, PERCENTAGE, FORMULA",
		http.StatusBadRequest,
	)
	ErrInvalidPercentageBase = apperror.New(
		apperror.CodeInvalidInput,
		"Percentage base must be one of BASE, GROSS, TAXABLE_GROSS",
		http.StatusBadRequest,
	)
	ErrNegativeValue = apperror.New(
		apperror.CodeInvalidInput,
		"Component value must not be negative",
		http.StatusBadRequest,
	)
	ErrPercentageOutOfRange = apperror.New(
		apperror.CodeInvalidInput,
		"Percentage must be between 0 and 100",
		http.StatusBadRequest,
	)
	ErrFormulaRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Formula is required for FORMULA components",
		http.StatusBadRequest,
	)
	ErrBaseMustBeEarning = apperror.New(
		apperror.CodeInvalidInput,
		"Only an EARNING component can be the base salary",
		http.StatusBadRequest,
	)
	ErrBaseMustBeFixed = apperror.New(
		apperror.CodeInvalidInput,
		"The base salary component must use FIXED calculation",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidActiveFrom = apperror.New(
		apperror.CodeInvalidInput,
		"A new version must become active after the version it replaces",
		http.StatusBadRequest,
	)
	ErrComponentSuperseded = apperror.New(
		apperror.CodeInvalidTransition,
		"Only the latest version of a component can be superseded",
		http.StatusConflict,
	)
	ErrComponentNotActive = apperror.New(
		apperror.CodeInvalidInput,
		"Component has no version active on the effective date",
		http.StatusBadRequest,
	)
	ErrBackdatedAssignment = apperror.New(
		apperror.CodeInvalidInput,
		"Assignment cannot start before the employee's current assignment of this component",
		http.StatusBadRequest,
	)
	ErrAssignmentAlreadyEnded = apperror.New(
		apperror.CodeInvalidTransition,
		"Assignment has already ended",
		http.StatusConflict,
	)
	ErrInvalidEffectiveTo = apperror.New(
		apperror.CodeInvalidInput,
		"Assignment must end after it starts",
		http.StatusBadRequest,
	)

	ErrMissingBase = apperror.New(
		apperror.CodeResolution,
		"Employee has no active base salary component",
		http.StatusUnprocessableEntity,
	)
	ErrMultipleBase = apperror.New(
		apperror.CodeResolution,
		"Employee has more than one active base salary component",
		http.StatusUnprocessableEntity,
	)
	ErrOverlappingAssignments = apperror.New(
		apperror.CodeResolution,
		"Employee has overlapping assignments of the same component",
		http.StatusUnprocessableEntity,
	)
	ErrAmbiguousComponent = apperror.New(
		apperror.CodeResolution,
		"More than one version of a component is active on the same date",
		http.StatusUnprocessableEntity,
	)
)
