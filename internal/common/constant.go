package common

// SessionHeaderName is the gRPC metadata key carrying the opaque session
// handle in both directions.
const SessionHeaderName = "session_id"

// Account field limits shared by registration, login and administration.
const (
	MinAccountNameLength = 4
	MinPasswordLength    = 8

	// DefaultAccountPassword is assigned to accounts created by an
	// administrator.
	DefaultAccountPassword = "12345678"
)
