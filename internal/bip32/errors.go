package bip32

import "errors"

var (
	ErrHardenedFromPublic = errors.New("cannot derive a hardened key from public key")
	ErrMaxDepthExceeded   = errors.New("max depth exceeded")
	ErrBadChecksum        = errors.New("bad extended key checksum")
	ErrInvalidPrivateFlag = errors.New("key private flag does not match version")
	ErrUnknownVersion     = errors.New("unknown extended key version")
	ErrInvalidPath        = errors.New("invalid derivation path")
)
