package bip84

import (
	"encoding/hex"
	"testing"

	"github.com/nimbuswallet/core/internal/mnemonic"
)

// abandonSeed is the BIP39 seed for the standard "abandon...about" test
// mnemonic with an empty passphrase (verified against the BIP39 test vector
// in internal/mnemonic).
func abandonSeed(t *testing.T) []byte {
	t.Helper()
	seedHex := "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4"
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	return seed
}

func TestDerive_BIP84OfficialVectorFirstReceiveAddress(t *testing.T) {
	key, err := Derive(abandonSeed(t), Mainnet, 0, ExternalChain, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	const want = "bc1qcr8te4kr609gcawutmrza0j4xyu5dmhg4dqgch"
	if key.Address != want {
		t.Errorf("address = %s, want %s", key.Address, want)
	}
	if key.Path != "m/84'/0'/0'/0/0" {
		t.Errorf("path = %s, want m/84'/0'/0'/0/0", key.Path)
	}
}

func TestDerive_EndToEndFromMnemonic(t *testing.T) {
	const phrase = "twist outside favorite taxi bracket admit unveil around demand number mixture civil diesel enhance hammer meat then replace master carpet farm viable toast muscle"
	if err := mnemonic.Validate(phrase); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	seed, err := mnemonic.Seed(phrase, "")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	key, err := Derive(seed, Mainnet, 0, ExternalChain, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	const want = "bc1q249u4yzmkas7jk7cne0kqwr8ky8097ttxlmlrz"
	if key.Address != want {
		t.Errorf("address = %s, want %s", key.Address, want)
	}
}

func TestDerive_ChangeAddressDiffersFromReceive(t *testing.T) {
	receive, err := Derive(abandonSeed(t), Mainnet, 0, ExternalChain, 0)
	if err != nil {
		t.Fatalf("Derive(external): %v", err)
	}
	change, err := Derive(abandonSeed(t), Mainnet, 0, ChangeChain, 0)
	if err != nil {
		t.Fatalf("Derive(change): %v", err)
	}
	if receive.Address == change.Address {
		t.Fatal("receive and change addresses at index 0 must differ")
	}
}

func TestNetwork_HRPAndCoinType(t *testing.T) {
	if Mainnet.HRP() != "bc" || Mainnet.CoinType() != 0 {
		t.Errorf("Mainnet HRP/CoinType = %s/%d, want bc/0", Mainnet.HRP(), Mainnet.CoinType())
	}
	if Testnet.HRP() != "tb" || Testnet.CoinType() != 1 {
		t.Errorf("Testnet HRP/CoinType = %s/%d, want tb/1", Testnet.HRP(), Testnet.CoinType())
	}
}

func TestAddressFromPublicKey_InvalidKeyLength(t *testing.T) {
	if _, err := AddressFromPublicKey([]byte{0x01, 0x02}, Mainnet); err != nil {
		// Hash160 accepts any input length; the resulting 20-byte program is
		// always valid for a v0 witness address, so this should not error.
		t.Fatalf("unexpected error for short input: %v", err)
	}
}

func TestScriptPubKey_WitnessV0Prefix(t *testing.T) {
	key, err := Derive(abandonSeed(t), Mainnet, 0, ExternalChain, 0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	script := ScriptPubKey(key.Extended.Public)
	if len(script) != 22 {
		t.Fatalf("script length = %d, want 22", len(script))
	}
	if script[0] != 0x00 || script[1] != 0x14 {
		t.Errorf("script prefix = %x, want 0014", script[:2])
	}
}
