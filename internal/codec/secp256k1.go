package codec

import (
	"crypto/sha256"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// PrivateKey wraps a validated secp256k1 scalar. Construction always goes
// through ParsePrivateKey so every PrivateKey in the system is known to
// satisfy 0 < k < n.
type PrivateKey struct {
	inner *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 curve point.
type PublicKey struct {
	inner *secp256k1.PublicKey
}

// ParsePrivateKey validates and wraps a 32-byte scalar. It rejects the zero
// scalar and anything greater than or equal to the curve order.
func ParsePrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, ErrInvalidKey
	}
	priv := secp256k1.PrivKeyFromBytes(b)
	// PrivKeyFromBytes does not itself reject out-of-range scalars, so the
	// reduction is checked explicitly against the field/group order.
	scalar := new(secp256k1.ModNScalar)
	overflow := scalar.SetByteSlice(b)
	if overflow || scalar.IsZero() {
		return nil, ErrInvalidKey
	}
	return &PrivateKey{inner: priv}, nil
}

// Bytes returns the 32-byte big-endian scalar.
func (p *PrivateKey) Bytes() []byte {
	b := p.inner.Serialize()
	return b[:]
}

// PubKey derives the corresponding public key.
func (p *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{inner: p.inner.PubKey()}
}

// Sign produces a low-S, DER-encoded ECDSA signature over hash (the caller
// is responsible for hashing the message first — for transaction signing
// that hash is the BIP143 sighash). secp256k1/v4's ecdsa.Sign always
// normalizes to the canonical low-S form.
func (p *PrivateKey) Sign(hash []byte) []byte {
	sig := ecdsa.Sign(p.inner, hash)
	return sig.Serialize()
}

// ParsePublicKey parses a compressed (33-byte) or uncompressed (65-byte)
// public key.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return &PublicKey{inner: pub}, nil
}

// SerializeCompressed returns the 33-byte compressed encoding.
func (p *PublicKey) SerializeCompressed() []byte {
	return p.inner.SerializeCompressed()
}

// SerializeUncompressed returns the 65-byte uncompressed encoding.
func (p *PublicKey) SerializeUncompressed() []byte {
	return p.inner.SerializeUncompressed()
}

// XOnly returns the 32-byte x-only projection of the public key, as used by
// BIP340/BIP341 (Taproot output key derivation). This pipeline never spends
// from Taproot outputs, only decodes/displays P2TR outputs, so only the
// projection — not Schnorr signing — is needed.
func (p *PublicKey) XOnly() [32]byte {
	var out [32]byte
	copy(out[:], schnorr.SerializePubKey(p.inner))
	return out
}

// Verify checks a DER-encoded ECDSA signature against hash and the public
// key. It rejects non-canonical (high-S or malformed) signatures.
func Verify(pub *PublicKey, hash, sig []byte) bool {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(hash, pub.inner)
}

// Sha256 is a convenience re-export so callers signing application messages
// (as opposed to sighashes, which are already double-hashed by their own
// pipeline) don't need a second crypto import.
func Sha256(msg []byte) []byte {
	h := sha256.Sum256(msg)
	return h[:]
}
