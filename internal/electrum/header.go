package electrum

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// BlockHeaderFields is an 80-byte Bitcoin block header's fields, decoded
// from the little-endian wire encoding blockchain.block.header returns.
type BlockHeaderFields struct {
	PrevHash   string
	MerkleRoot string
	Version    uint32
	Timestamp  time.Time
	Bits       uint32
	Nonce      uint32
}

// ParseBlockHeader decodes an 80-byte block header given as hex. Bytes
// 68..72 hold the little-endian Unix timestamp.
func ParseBlockHeader(headerHex string) (BlockHeaderFields, error) {
	raw, err := hex.DecodeString(headerHex)
	if err != nil {
		return BlockHeaderFields{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if len(raw) != 80 {
		return BlockHeaderFields{}, fmt.Errorf("%w: header is %d bytes, want 80", ErrInvalidResponse, len(raw))
	}

	version := binary.LittleEndian.Uint32(raw[0:4])
	prevHash := reverseHex(raw[4:36])
	merkleRoot := reverseHex(raw[36:68])
	timestamp := binary.LittleEndian.Uint32(raw[68:72])
	bits := binary.LittleEndian.Uint32(raw[72:76])
	nonce := binary.LittleEndian.Uint32(raw[76:80])

	return BlockHeaderFields{
		Version:    version,
		PrevHash:   prevHash,
		MerkleRoot: merkleRoot,
		Timestamp:  time.Unix(int64(timestamp), 0).UTC(),
		Bits:       bits,
		Nonce:      nonce,
	}, nil
}

func reverseHex(b []byte) string {
	reversed := make([]byte, len(b))
	for i, v := range b {
		reversed[len(b)-1-i] = v
	}
	return hex.EncodeToString(reversed)
}
