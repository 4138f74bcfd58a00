package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"

	// Per-employee calculation failures, recorded by batch runs
	CodeResolution  = "RESOLUTION_ERROR"
	CodeFormula     = "FORMULA_ERROR"
	CodeCalculation = "CALCULATION_ERROR"

	// Repayment ledger
	CodeOutOfSequence = "OUT_OF_SEQUENCE_REPAYMENT"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodePersistence        = "PERSISTENCE_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
