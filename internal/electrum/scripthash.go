package electrum

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/nimbuswallet/core/internal/txmodel"
)

// ScriptHash computes an Electrum scripthash: SHA-256 of the scriptPubKey,
// with the 32-byte digest reversed, hex-encoded.
func ScriptHash(scriptPubKey []byte) string {
	sum := sha256.Sum256(scriptPubKey)
	reversed := make([]byte, len(sum))
	for i, b := range sum {
		reversed[len(sum)-1-i] = b
	}
	return hex.EncodeToString(reversed)
}

// ScriptHashForAddress decodes address into a scriptPubKey (P2PKH, P2SH,
// P2WPKH, P2WSH, or P2TR) and returns its Electrum scripthash.
func ScriptHashForAddress(address string) (string, error) {
	script, err := txmodel.ScriptFromAddress(address)
	if err != nil {
		return "", err
	}
	return ScriptHash(script), nil
}
