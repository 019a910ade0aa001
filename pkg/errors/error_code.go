package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter       ErrorCode = 100
	ErrCodeInvalidConfiguration   ErrorCode = 101
	ErrCodeInvalidExecutionParams ErrorCode = 102
	ErrCodeMissingColumn          ErrorCode = 103

	// Series errors (200-299)
	ErrCodeNonIncreasingTimestamp ErrorCode = 200
	ErrCodeColumnLengthMismatch   ErrorCode = 201
	ErrCodeSeriesParseFailed      ErrorCode = 202

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeInvalidIndicatorParams ErrorCode = 302

	// Strategy expression errors (400-499)
	ErrCodeExpressionSyntax ErrorCode = 400
	ErrCodeUnknownColumn    ErrorCode = 401
	ErrCodeUnknownCondition ErrorCode = 402

	// Simulation errors (500-599)
	ErrCodeSignalAlignment ErrorCode = 500

	// Server errors (600-699)
	ErrCodeSessionNotFound  ErrorCode = 600
	ErrCodeMalformedRequest ErrorCode = 601
)
