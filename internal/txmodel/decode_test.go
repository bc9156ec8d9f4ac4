package txmodel

import (
	"encoding/hex"
	"testing"

	"github.com/nimbuswallet/core/internal/bip84"
)

// buildNonSegwitTx assembles a minimal legacy (non-SegWit) transaction by
// hand: version 1, one input spending a fabricated prevout, one P2PKH
// output, locktime 0.
func buildNonSegwitTx(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	buf = append(buf, 0x01, 0x00, 0x00, 0x00) // version 1

	buf = WriteVarInt(buf, 1) // 1 input
	prevTxid := make([]byte, 32)
	for i := range prevTxid {
		prevTxid[i] = byte(i)
	}
	buf = append(buf, prevTxid...)               // already internal order for this synthetic test
	buf = append(buf, 0x00, 0x00, 0x00, 0x00)     // vout 0
	buf = WriteVarInt(buf, 0)                     // empty scriptSig
	buf = append(buf, 0xff, 0xff, 0xff, 0xff)     // sequence

	buf = WriteVarInt(buf, 1) // 1 output
	value := uint64(50000)
	valBytes := make([]byte, 8)
	for i := 0; i < 8; i++ {
		valBytes[i] = byte(value >> (8 * i))
	}
	buf = append(buf, valBytes...)

	// P2PKH script: 76 a9 14 <20 bytes> 88 ac
	script := make([]byte, 0, 25)
	script = append(script, 0x76, 0xa9, 0x14)
	hash160 := make([]byte, 20)
	for i := range hash160 {
		hash160[i] = byte(0xA0 + i)
	}
	script = append(script, hash160...)
	script = append(script, 0x88, 0xac)
	buf = WriteVarInt(buf, uint64(len(script)))
	buf = append(buf, script...)

	buf = append(buf, 0x00, 0x00, 0x00, 0x00) // locktime 0
	return buf
}

func TestDecode_LegacyTransaction(t *testing.T) {
	raw := buildNonSegwitTx(t)
	tx, err := Decode(hex.EncodeToString(raw), bip84.Mainnet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tx.Version != 1 {
		t.Errorf("version = %d, want 1", tx.Version)
	}
	if len(tx.Inputs) != 1 {
		t.Fatalf("len(Inputs) = %d, want 1", len(tx.Inputs))
	}
	if len(tx.Outputs) != 1 {
		t.Fatalf("len(Outputs) = %d, want 1", len(tx.Outputs))
	}
	if tx.Outputs[0].Value != 50000 {
		t.Errorf("output value = %d, want 50000", tx.Outputs[0].Value)
	}
	if tx.Outputs[0].Address == "" {
		t.Error("expected a decoded P2PKH address")
	}
	if tx.Locktime != 0 {
		t.Errorf("locktime = %d, want 0", tx.Locktime)
	}
}

func TestDecode_PrevTxidIsByteReversed(t *testing.T) {
	raw := buildNonSegwitTx(t)
	tx, err := Decode(hex.EncodeToString(raw), bip84.Mainnet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// buildNonSegwitTx wrote prevTxid = [0,1,2,...,31] in wire (internal)
	// order, so display order must be the reverse: [31,30,...,0].
	for i := 0; i < 32; i++ {
		if tx.Inputs[0].PrevTxid[i] != byte(31-i) {
			t.Fatalf("PrevTxid[%d] = %d, want %d", i, tx.Inputs[0].PrevTxid[i], 31-i)
		}
	}
}

func TestDecode_RejectsTruncatedInput(t *testing.T) {
	if _, err := Decode("0100000001", bip84.Mainnet); err == nil {
		t.Fatal("expected error for truncated transaction")
	}
}

func TestDecode_RejectsInvalidHex(t *testing.T) {
	if _, err := Decode("not hex", bip84.Mainnet); err != ErrInvalidHex {
		t.Fatalf("err = %v, want ErrInvalidHex", err)
	}
}

func TestAddressFromScript_RecognizesAllTemplates(t *testing.T) {
	p2wpkh := append([]byte{0x00, 0x14}, make([]byte, 20)...)
	if _, ok := AddressFromScript(p2wpkh, bip84.Mainnet); !ok {
		t.Error("expected P2WPKH template match")
	}

	p2tr := append([]byte{0x51, 0x20}, make([]byte, 32)...)
	if _, ok := AddressFromScript(p2tr, bip84.Mainnet); !ok {
		t.Error("expected P2TR template match")
	}

	p2pkh := append([]byte{0x76, 0xa9, 0x14}, make([]byte, 20)...)
	p2pkh = append(p2pkh, 0x88, 0xac)
	if _, ok := AddressFromScript(p2pkh, bip84.Mainnet); !ok {
		t.Error("expected P2PKH template match")
	}

	p2sh := append([]byte{0xa9, 0x14}, make([]byte, 20)...)
	p2sh = append(p2sh, 0x87)
	if _, ok := AddressFromScript(p2sh, bip84.Mainnet); !ok {
		t.Error("expected P2SH template match")
	}

	unrecognized := []byte{0x6a, 0x00} // OP_RETURN
	if _, ok := AddressFromScript(unrecognized, bip84.Mainnet); ok {
		t.Error("expected no address for OP_RETURN script")
	}
}

func TestDecodedTx_Fee(t *testing.T) {
	raw := buildNonSegwitTx(t)
	tx, err := Decode(hex.EncodeToString(raw), bip84.Mainnet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fee := tx.Fee([]int64{60000})
	if fee != 10000 {
		t.Errorf("fee = %d, want 10000", fee)
	}
}
