package txmodel

import (
	"github.com/nimbuswallet/core/internal/bip84"
	"github.com/nimbuswallet/core/internal/codec"
)

// P2PKHVersion and P2SHVersion are the Base58Check version bytes used by
// legacy address templates, selected by network.
func p2pkhVersion(network bip84.Network) byte {
	if network == bip84.Testnet {
		return 0x6f
	}
	return 0x00
}

func p2shVersion(network bip84.Network) byte {
	if network == bip84.Testnet {
		return 0xc4
	}
	return 0x05
}

// AddressFromScript matches scriptPubKey against the four recognized
// templates (P2WPKH, P2TR, P2PKH, P2SH), first match wins, and returns the
// decoded address. ok is false for any other script form.
func AddressFromScript(script []byte, network bip84.Network) (address string, ok bool) {
	switch {
	case len(script) == 22 && script[0] == 0x00 && script[1] == 0x14:
		addr, err := codec.SegwitAddressEncode(network.HRP(), 0, script[2:22])
		if err != nil {
			return "", false
		}
		return addr, true

	case len(script) == 34 && script[0] == 0x51 && script[1] == 0x20:
		addr, err := codec.SegwitAddressEncode(network.HRP(), 1, script[2:34])
		if err != nil {
			return "", false
		}
		return addr, true

	case len(script) == 25 && script[0] == 0x76 && script[1] == 0xa9 && script[2] == 0x14 &&
		script[23] == 0x88 && script[24] == 0xac:
		return codec.Base58CheckEncode(p2pkhVersion(network), script[3:23]), true

	case len(script) == 23 && script[0] == 0xa9 && script[1] == 0x14 && script[22] == 0x87:
		return codec.Base58CheckEncode(p2shVersion(network), script[2:22]), true

	default:
		return "", false
	}
}

// ScriptFromAddress is AddressFromScript's inverse: it parses an address
// string (Bech32/Bech32m SegWit, or Base58Check legacy) and returns the
// scriptPubKey a transaction output paying it would carry.
func ScriptFromAddress(address string) ([]byte, error) {
	if hrp, version, program, err := codec.SegwitAddressDecode(address); err == nil && hrp != "" {
		script := make([]byte, 0, 2+len(program))
		script = append(script, segwitOpcodeForVersion(version), byte(len(program)))
		return append(script, program...), nil
	}

	version, payload, err := codec.Base58CheckDecode(address)
	if err != nil {
		return nil, err
	}
	if len(payload) != 20 {
		return nil, codec.ErrInvalidLength
	}

	switch version {
	case 0x00, 0x6f: // P2PKH, mainnet or testnet
		script := make([]byte, 0, 25)
		script = append(script, 0x76, 0xa9, 0x14)
		script = append(script, payload...)
		return append(script, 0x88, 0xac), nil
	case 0x05, 0xc4: // P2SH, mainnet or testnet
		script := make([]byte, 0, 23)
		script = append(script, 0xa9, 0x14)
		script = append(script, payload...)
		return append(script, 0x87), nil
	default:
		return nil, codec.ErrInvalidEncoding
	}
}

// segwitOpcodeForVersion returns the opcode byte that pushes the witness
// version (OP_0 for v0, OP_1..OP_16 for v1-v16).
func segwitOpcodeForVersion(version byte) byte {
	if version == 0 {
		return 0x00
	}
	return 0x50 + version
}
