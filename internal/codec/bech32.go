package codec

import (
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// SegwitAddressEncode encodes a (hrp, witness version, witness program) triple
// as a segwit Bech32/Bech32m address. Version 0 (P2WPKH/P2WSH) uses Bech32
// (BIP173); version 1 and above (P2TR et al.) use Bech32m (BIP350).
//
// Bech32/Bech32m polymod encode+decode is delegated to
// github.com/btcsuite/btcd/btcutil/bech32 — the library the rest of the
// btcd-derived pack (opd-ai-paywall, EXCCoin-exccd, toole-brendan-shell) uses
// for exactly this, rather than hand-rolling a second checksum algorithm
// alongside Base58Check.
func SegwitAddressEncode(hrp string, version byte, program []byte) (string, error) {
	if err := validateWitnessProgram(version, program); err != nil {
		return "", err
	}

	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", ErrInvalidEncoding
	}

	data := make([]byte, 0, len(converted)+1)
	data = append(data, version)
	data = append(data, converted...)

	if version == 0 {
		return bech32.Encode(hrp, data)
	}
	return bech32.EncodeM(hrp, data)
}

// SegwitAddressDecode reverses SegwitAddressEncode, verifying that the
// checksum variant used (Bech32 vs Bech32m) matches the witness version
// embedded in the address, per BIP350.
func SegwitAddressDecode(address string) (hrp string, version byte, program []byte, err error) {
	decodedHRP, data, encoding, decErr := bech32.DecodeGeneric(address)
	if decErr != nil {
		return "", 0, nil, ErrInvalidEncoding
	}
	if len(data) == 0 {
		return "", 0, nil, ErrInvalidLength
	}

	version = data[0]
	wantEncoding := bech32.Bech32m
	if version == 0 {
		wantEncoding = bech32.Bech32
	}
	if encoding != wantEncoding {
		return "", 0, nil, ErrInvalidChecksum
	}

	program, convErr := bech32.ConvertBits(data[1:], 5, 8, false)
	if convErr != nil {
		return "", 0, nil, ErrInvalidEncoding
	}

	if err := validateWitnessProgram(version, program); err != nil {
		return "", 0, nil, err
	}

	return decodedHRP, version, program, nil
}

func validateWitnessProgram(version byte, program []byte) error {
	if version > 16 {
		return ErrInvalidEncoding
	}
	if version == 0 && len(program) != 20 && len(program) != 32 {
		return ErrInvalidLength
	}
	if len(program) < 2 || len(program) > 40 {
		return ErrInvalidLength
	}
	return nil
}
