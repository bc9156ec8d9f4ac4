// Package codec implements the byte-exact primitives the rest of the wallet
// core is built on: hashing, Base58Check, Bech32/Bech32m, and secp256k1.
package codec

import "errors"

// Sentinel errors returned by codec operations. Callers should use
// errors.Is against these; they are never wrapped away silently.
var (
	// ErrInvalidEncoding indicates the input is not valid for the codec
	// being used (bad alphabet character, bad bech32 charset, etc).
	ErrInvalidEncoding = errors.New("codec: invalid encoding")

	// ErrInvalidChecksum indicates a checksum (Base58Check 4-byte checksum,
	// Bech32/Bech32m polymod) failed verification.
	ErrInvalidChecksum = errors.New("codec: invalid checksum")

	// ErrInvalidLength indicates a decoded payload has the wrong length
	// for its claimed type (e.g. a witness program that is neither 20 nor
	// 32 bytes).
	ErrInvalidLength = errors.New("codec: invalid length")

	// ErrInvalidKey indicates a private or public key is not valid for
	// secp256k1 (out of range scalar, point not on curve, etc).
	ErrInvalidKey = errors.New("codec: invalid key")

	// ErrInvalidSignature indicates a DER signature failed to parse or
	// failed verification.
	ErrInvalidSignature = errors.New("codec: invalid signature")
)
