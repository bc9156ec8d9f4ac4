// Package bip84 derives native SegWit (P2WPKH) addresses and their signing
// keys from a BIP32 tree, following BIP84's path convention
// m/84'/coin_type'/account'/change/index.
package bip84

import (
	"fmt"

	"github.com/nimbuswallet/core/internal/bip32"
	"github.com/nimbuswallet/core/internal/codec"
)

// Network selects the coin_type and address human-readable part (HRP) used
// when deriving addresses.
type Network int

const (
	// Mainnet is live Bitcoin, coin_type 0, HRP "bc".
	Mainnet Network = iota
	// Testnet is Bitcoin's public test network, coin_type 1, HRP "tb".
	Testnet
)

// CoinType returns the BIP44 coin_type index for the network.
func (n Network) CoinType() uint32 {
	if n == Testnet {
		return 1
	}
	return 0
}

// HRP returns the Bech32 human-readable part used by addresses on the
// network.
func (n Network) HRP() string {
	if n == Testnet {
		return "tb"
	}
	return "bc"
}

// Name returns the network's wire/persistence identifier, "mainnet" or
// "testnet".
func (n Network) Name() string {
	if n == Testnet {
		return "testnet"
	}
	return "mainnet"
}

// Chain distinguishes the external (receive) and internal (change) branches
// of an account, per BIP44's "change" level.
type Chain uint32

const (
	ExternalChain Chain = 0
	ChangeChain   Chain = 1
)

// Key is a single derived BIP84 leaf: its signing material and the address
// it controls.
type Key struct {
	Path    string
	Address string
	Extended *bip32.ExtendedKey
}

// purposeIndex is BIP84's reserved purpose field (84').
const purposeIndex = bip32.HardenedKeyStart + 84

// Derive derives the BIP84 leaf at m/84'/coin_type'/account'/change/index
// from seed.
func Derive(seed []byte, network Network, account uint32, chain Chain, index uint32) (*Key, error) {
	path := []uint32{
		purposeIndex,
		bip32.HardenedKeyStart + network.CoinType(),
		bip32.HardenedKeyStart + account,
		uint32(chain),
		index,
	}

	master, err := bip32.NewMaster(seed)
	if err != nil {
		return nil, fmt.Errorf("bip84: derive master: %w", err)
	}
	leaf, err := bip32.DerivePath(master, path)
	if err != nil {
		return nil, fmt.Errorf("bip84: derive path: %w", err)
	}

	address, err := AddressFromPublicKey(leaf.Public, network)
	if err != nil {
		return nil, fmt.Errorf("bip84: derive address: %w", err)
	}

	return &Key{
		Path:     PathString(network, account, chain, index),
		Address:  address,
		Extended: leaf,
	}, nil
}

// AddressFromPublicKey builds the P2WPKH Bech32 address for a compressed
// public key: witness version 0 over Hash160(pubkey).
func AddressFromPublicKey(compressedPubKey []byte, network Network) (string, error) {
	program := codec.Hash160(compressedPubKey)
	return codec.SegwitAddressEncode(network.HRP(), 0, program)
}

// PathString formats the BIP84 derivation path for display/storage.
func PathString(network Network, account uint32, chain Chain, index uint32) string {
	return fmt.Sprintf("m/84'/%d'/%d'/%d/%d", network.CoinType(), account, uint32(chain), index)
}

// ScriptPubKey returns the witness v0 scriptPubKey (OP_0 <20-byte-hash>) for
// a compressed public key, as used when building transaction outputs and
// decoding scriptPubKeys back into addresses.
func ScriptPubKey(compressedPubKey []byte) []byte {
	program := codec.Hash160(compressedPubKey)
	script := make([]byte, 0, 2+len(program))
	script = append(script, 0x00, byte(len(program)))
	script = append(script, program...)
	return script
}
