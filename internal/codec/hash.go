package codec

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"

	// RIPEMD160 is deprecated for new designs but is a hard Bitcoin protocol
	// requirement (P2PKH/P2WPKH/P2SH all hash through it). Kept isolated here
	// the same way the teacher ring-fences it in wallet/bitcoin/hash.go.
	//nolint:staticcheck // SA1019: required by the Bitcoin address protocol
	"golang.org/x/crypto/ripemd160"
)

// SHA256d returns the double SHA-256 digest (hash256) of data.
func SHA256d(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Hash160 returns RIPEMD160(SHA256(data)), the hash Bitcoin uses to build
// P2PKH and P2WPKH payloads.
//
//nolint:gosec // G406: RIPEMD160 usage required by the Bitcoin protocol.
func Hash160(data []byte) []byte {
	sum := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sum[:])
	return r.Sum(nil)
}

// HMACSHA512 computes HMAC-SHA512(key, data), the primitive BIP32 and the
// BIP39 seed-from-mnemonic step are both built on.
func HMACSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
