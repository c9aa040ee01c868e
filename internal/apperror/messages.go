package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Request normalization
	CodeTokenNotSupported: "Token is not supported on this chain",
	CodeInvalidAmount:     "Amount is not a valid decimal for this asset",

	// Venue resolution
	CodeUnknownConnector:     "Connector is not registered for this chain",
	CodeUnsupportedOperation: "Operation is not supported by this venue",

	// AMM computation
	CodeInsufficientLiquidity: "Insufficient pool liquidity for this amount",
	CodeZeroWithdrawal:        "Withdrawal amount is zero",
	CodeInsufficientPosition:  "LP balance is below the requested withdrawal",

	// Upstream collaborators
	CodeUpstreamTimeout:     "Upstream call timed out or was cancelled",
	CodeUpstreamUnavailable: "Upstream data provider is unavailable",
	CodePoolNotFound:        "Pool not found",
	CodeChainInitFailed:     "Chain context initialization failed",

	// Transaction assembly
	CodeInsufficientFunds: "Insufficient funds at the funding address",
	CodeBuildFailed:       "Transaction build failed",
	CodeSubmitFailed:      "Transaction submission failed",

	// Wallet store
	CodeWalletNotFound: "No wallet stored for this address",
	CodeWalletDecrypt:  "Failed to decrypt stored wallet key",

	// Circuit breaker
	CodeCircuitOpen: "Circuit breaker is open",
}
