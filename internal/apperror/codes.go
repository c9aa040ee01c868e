package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Gateway-specific error codes
const (
	// Request normalization
	CodeTokenNotSupported Code = "TOKEN_NOT_SUPPORTED"
	CodeInvalidAmount     Code = "INVALID_AMOUNT"

	// Venue resolution
	CodeUnknownConnector     Code = "UNKNOWN_CONNECTOR"
	CodeUnsupportedOperation Code = "UNSUPPORTED_OPERATION"

	// AMM computation
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeZeroWithdrawal        Code = "ZERO_WITHDRAWAL"
	CodeInsufficientPosition  Code = "INSUFFICIENT_POSITION"

	// Upstream collaborators
	CodeUpstreamTimeout     Code = "UPSTREAM_TIMEOUT"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodePoolNotFound        Code = "POOL_NOT_FOUND"
	CodeChainInitFailed     Code = "CHAIN_INIT_FAILED"

	// Transaction assembly
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeBuildFailed       Code = "BUILD_FAILED"
	CodeSubmitFailed      Code = "SUBMIT_FAILED"

	// Wallet store
	CodeWalletNotFound Code = "WALLET_NOT_FOUND"
	CodeWalletDecrypt  Code = "WALLET_DECRYPT_FAILED"

	// Circuit breaker
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
