package electrum

import (
	"encoding/binary"
	"encoding/hex"
	"testing"
)

func buildHeader(version uint32, prevHash, merkleRoot [32]byte, timestamp, bits, nonce uint32) string {
	raw := make([]byte, 80)
	binary.LittleEndian.PutUint32(raw[0:4], version)
	for i := 0; i < 32; i++ {
		raw[4+i] = prevHash[31-i]
	}
	for i := 0; i < 32; i++ {
		raw[36+i] = merkleRoot[31-i]
	}
	binary.LittleEndian.PutUint32(raw[68:72], timestamp)
	binary.LittleEndian.PutUint32(raw[72:76], bits)
	binary.LittleEndian.PutUint32(raw[76:80], nonce)
	return hex.EncodeToString(raw)
}

func TestParseBlockHeader_RoundTripsFields(t *testing.T) {
	var prevHash, merkleRoot [32]byte
	for i := range prevHash {
		prevHash[i] = byte(i)
	}
	for i := range merkleRoot {
		merkleRoot[i] = byte(255 - i)
	}

	headerHex := buildHeader(4, prevHash, merkleRoot, 1_700_000_000, 0x1d00ffff, 12345)

	fields, err := ParseBlockHeader(headerHex)
	if err != nil {
		t.Fatalf("ParseBlockHeader: %v", err)
	}
	if fields.Version != 4 {
		t.Errorf("Version = %d, want 4", fields.Version)
	}
	if fields.PrevHash != hex.EncodeToString(prevHash[:]) {
		t.Errorf("PrevHash = %s, want %s", fields.PrevHash, hex.EncodeToString(prevHash[:]))
	}
	if fields.MerkleRoot != hex.EncodeToString(merkleRoot[:]) {
		t.Errorf("MerkleRoot = %s, want %s", fields.MerkleRoot, hex.EncodeToString(merkleRoot[:]))
	}
	if fields.Timestamp.Unix() != 1_700_000_000 {
		t.Errorf("Timestamp = %d, want 1700000000", fields.Timestamp.Unix())
	}
	if fields.Bits != 0x1d00ffff {
		t.Errorf("Bits = %#x, want 0x1d00ffff", fields.Bits)
	}
	if fields.Nonce != 12345 {
		t.Errorf("Nonce = %d, want 12345", fields.Nonce)
	}
}

func TestParseBlockHeader_RejectsWrongLength(t *testing.T) {
	if _, err := ParseBlockHeader("aabbcc"); err == nil {
		t.Fatal("expected an error for a too-short header")
	}
}

func TestParseBlockHeader_RejectsInvalidHex(t *testing.T) {
	if _, err := ParseBlockHeader("not-hex-at-all-xyz"); err == nil {
		t.Fatal("expected an error for non-hex input")
	}
}
