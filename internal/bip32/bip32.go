// Package bip32 implements hierarchical deterministic key derivation
// (BIP32) and its BIP44/BIP84-style path parsing, layered on the secp256k1
// scalar arithmetic in internal/codec.
package bip32

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/nimbuswallet/core/internal/codec"
)

// HardenedKeyStart is the index at which hardened derivation begins (2^31),
// per BIP32.
const HardenedKeyStart = 0x80000000

var (
	// ErrInvalidSeed indicates a seed produced a master key outside the
	// valid secp256k1 scalar range (astronomically unlikely in practice).
	ErrInvalidSeed = errors.New("bip32: seed produced an invalid master key")

	// ErrInvalidChild indicates a derivation step produced a child key
	// outside the valid scalar range; per BIP32 the caller should retry
	// with the next index.
	ErrInvalidChild = errors.New("bip32: derived child key is invalid, retry with next index")

	// ErrPublicDerivationOfHardened indicates an attempt to derive a
	// hardened child from a public-only (no private key) extended key.
	ErrPublicDerivationOfHardened = errors.New("bip32: cannot derive a hardened child without the private key")

	// ErrInvalidPath indicates a derivation path string could not be
	// parsed, e.g. "m/84'/0'/0'/0/0".
	ErrInvalidPath = errors.New("bip32: invalid derivation path")
)

// masterSeedKey is the HMAC key BIP32 fixes for master key generation.
var masterSeedKey = []byte("Bitcoin seed")

// ExtendedKey is a node in a BIP32 HD tree. A key with Private == nil is
// public-only and can derive further public-only non-hardened children.
type ExtendedKey struct {
	Private    []byte // 32 bytes, nil if this is a public-only key
	Public     []byte // 33-byte compressed public key, always present
	ChainCode  []byte // 32 bytes
	Depth      byte
	ParentFP   [4]byte
	ChildIndex uint32
}

// NewMaster derives the master extended key from a BIP39 seed, per BIP32's
// "Master key generation" algorithm: I = HMAC-SHA512(key="Bitcoin seed",
// data=seed); IL becomes the master private key, IR the master chain code.
func NewMaster(seed []byte) (*ExtendedKey, error) {
	i := codec.HMACSHA512(masterSeedKey, seed)
	il, ir := i[:32], i[32:]

	scalar := new(secp256k1.ModNScalar)
	if overflow := scalar.SetByteSlice(il); overflow || scalar.IsZero() {
		return nil, ErrInvalidSeed
	}

	priv, err := codec.ParsePrivateKey(il)
	if err != nil {
		return nil, ErrInvalidSeed
	}

	return &ExtendedKey{
		Private:   il,
		Public:    priv.PubKey().SerializeCompressed(),
		ChainCode: ir,
		Depth:     0,
	}, nil
}

// CKDPriv derives the private child key at index, following BIP32's private
// parent -> private child algorithm. Indices >= HardenedKeyStart derive
// hardened children, whose data includes the parent's private key rather
// than its public key.
func (k *ExtendedKey) CKDPriv(index uint32) (*ExtendedKey, error) {
	if k.Private == nil {
		return nil, ErrPublicDerivationOfHardened
	}

	data := make([]byte, 0, 37)
	if index >= HardenedKeyStart {
		data = append(data, 0x00)
		data = append(data, k.Private...)
	} else {
		data = append(data, k.Public...)
	}
	data = append(data, byte(index>>24), byte(index>>16), byte(index>>8), byte(index))

	i := codec.HMACSHA512(k.ChainCode, data)
	il, ir := i[:32], i[32:]

	ilScalar := new(secp256k1.ModNScalar)
	if overflow := ilScalar.SetByteSlice(il); overflow {
		return nil, ErrInvalidChild
	}

	parentScalar := new(secp256k1.ModNScalar)
	parentScalar.SetByteSlice(k.Private)

	childScalar := new(secp256k1.ModNScalar).Add2(ilScalar, parentScalar)
	if childScalar.IsZero() {
		return nil, ErrInvalidChild
	}

	var childBytes [32]byte
	childScalar.PutBytes(&childBytes)

	childPriv, err := codec.ParsePrivateKey(childBytes[:])
	if err != nil {
		return nil, ErrInvalidChild
	}

	return &ExtendedKey{
		Private:    childBytes[:],
		Public:     childPriv.PubKey().SerializeCompressed(),
		ChainCode:  ir,
		Depth:      k.Depth + 1,
		ParentFP:   fingerprint(k.Public),
		ChildIndex: index,
	}, nil
}

// fingerprint returns the first 4 bytes of Hash160(pubkey), the identifier
// BIP32 uses for a parent key when stamping its children.
func fingerprint(pubkey []byte) [4]byte {
	h := codec.Hash160(pubkey)
	var fp [4]byte
	copy(fp[:], h[:4])
	return fp
}

// PrivateKey returns the node's private key wrapped for signing/address
// derivation.
func (k *ExtendedKey) PrivateKey() (*codec.PrivateKey, error) {
	if k.Private == nil {
		return nil, ErrPublicDerivationOfHardened
	}
	return codec.ParsePrivateKey(k.Private)
}

// PublicKey returns the node's public key.
func (k *ExtendedKey) PublicKey() (*codec.PublicKey, error) {
	return codec.ParsePublicKey(k.Public)
}

// ParsePath parses a derivation path of the form "m/84'/0'/0'/0/0" into its
// sequence of indices, with an apostrophe suffix marking a hardened index
// (folded into HardenedKeyStart+n).
func ParsePath(path string) ([]uint32, error) {
	segments := strings.Split(path, "/")
	if len(segments) == 0 || segments[0] != "m" {
		return nil, ErrInvalidPath
	}

	indices := make([]uint32, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		hardened := strings.HasSuffix(seg, "'") || strings.HasSuffix(seg, "h") || strings.HasSuffix(seg, "H")
		if hardened {
			seg = seg[:len(seg)-1]
		}
		n, err := strconv.ParseUint(seg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, seg)
		}
		index := uint32(n)
		if hardened {
			index += HardenedKeyStart
		}
		indices = append(indices, index)
	}
	return indices, nil
}

// DerivePath walks a sequence of indices from master, applying CKDPriv at
// each step.
func DerivePath(master *ExtendedKey, indices []uint32) (*ExtendedKey, error) {
	key := master
	for _, index := range indices {
		var err error
		key, err = key.CKDPriv(index)
		if err != nil {
			return nil, err
		}
	}
	return key, nil
}

// DeriveFromSeed is a convenience wrapper combining NewMaster, ParsePath and
// DerivePath.
func DeriveFromSeed(seed []byte, path string) (*ExtendedKey, error) {
	master, err := NewMaster(seed)
	if err != nil {
		return nil, err
	}
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return DerivePath(master, indices)
}
