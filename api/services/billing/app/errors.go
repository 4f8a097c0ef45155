package app

import "errors"

// Typed errors for the billing app layer. These enable HTTP mapping without
// relying on SDK-specific error types at the transport layer.
var (
	// ErrBadRequest indicates the caller asked for something the account cannot do.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound indicates the account or one of its remote resources does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDatabase indicates a database-related failure.
	ErrDatabase = errors.New("database error")
	// ErrGateway indicates a failure from the payment gateway calls.
	ErrGateway = errors.New("gateway error")
)
