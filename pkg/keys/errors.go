package keys

// ErrorKind identifies a kind of error. It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInvalidFormat is returned when a hex string has an odd length or
	// contains characters outside [0-9A-Fa-f].
	ErrInvalidFormat = ErrorKind("ErrInvalidFormat")

	// ErrLengthMismatch is returned when a fixed-size input (scalar, seed,
	// decoded hex) does not have the required length.
	ErrLengthMismatch = ErrorKind("ErrLengthMismatch")

	// ErrInvalidPrivateKey is returned when a scalar is zero, not less than
	// the group order, or rejected by the curve provider.
	ErrInvalidPrivateKey = ErrorKind("ErrInvalidPrivateKey")

	// ErrInvalidPublicKeyFormat is returned when a SEC1 encoded public key
	// cannot be parsed.
	ErrInvalidPublicKeyFormat = ErrorKind("ErrInvalidPublicKeyFormat")

	// ErrInvalidPublicKeyLength is returned when a raw X||Y public key is not
	// exactly 64 bytes and sanitizing was not requested.
	ErrInvalidPublicKeyLength = ErrorKind("ErrInvalidPublicKeyLength")

	// ErrSerializationInconsistency is returned when a provider writes a
	// different number of bytes than the requested form requires.
	ErrSerializationInconsistency = ErrorKind("ErrSerializationInconsistency")

	// ErrProviderUnavailable is returned when a curve context, hash or MAC
	// backend cannot be constructed.
	ErrProviderUnavailable = ErrorKind("ErrProviderUnavailable")

	// ErrFinalized is returned when a streaming hash is used after it has
	// produced its final digest.
	ErrFinalized = ErrorKind("ErrFinalized")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to key material or hashing. It has full
// support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// MakeError creates an Error given a set of arguments.
func MakeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
