package utils

import "errors"

// Error kinds surfaced by the core. The web layer maps these onto HTTP status
// codes with errors.Is; everything else is treated as an internal error.
var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrorInvalidArgument marks malformed, zero or negative input.
	ErrorInvalidArgument = errors.New("invalid argument")

	// ErrorInvalidState marks an illegal state transition attempt. The target
	// record is left untouched.
	ErrorInvalidState = errors.New("invalid state")

	// ErrorInsufficientStock is returned by the sales decrement path when
	// on-hand would go negative.
	ErrorInsufficientStock = errors.New("insufficient stock")

	// ErrorInsufficientData is returned by the forecasting pipeline when a SKU
	// has no sales history in the lookback window.
	ErrorInsufficientData = errors.New("insufficient data")

	// ErrorAlreadyExists guards duplicate creation (e.g. default shifts for a
	// date that already has shifts).
	ErrorAlreadyExists = errors.New("already exists")

	// ErrorIntegrationFailure wraps transport/HTTP/decoding failures from the
	// external ML service. The roster path recovers from it locally; all other
	// paths surface it.
	ErrorIntegrationFailure = errors.New("integration failure")
)
