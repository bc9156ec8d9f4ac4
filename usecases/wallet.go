package usecases

import (
	"fmt"
	"strings"

	"github.com/mrz1836/go-sanitize"

	"github.com/nimbuswallet/core/internal/mnemonic"
	"github.com/nimbuswallet/core/internal/txmodel"
	"github.com/nimbuswallet/core/internal/walletrepo"
	walleterr "github.com/nimbuswallet/core/pkg/errors"
)

// CreateWallet generates a fresh mnemonic, derives its index-0 addresses,
// and marks the new wallet active. The mnemonic is returned exactly once;
// the caller is responsible for showing it to the user and confirming
// they've recorded it before proceeding.
func (s *Service) CreateWallet(req CreateWalletRequest) (*CreateWalletResult, error) {
	if err := walletrepo.ValidateWalletName(req.Name); err != nil {
		return nil, walleterr.WrapKind(walleterr.InvalidInput, err, "create wallet")
	}

	w, err := s.repo.CreateWallet(req.Name, s.walletType())
	if err != nil {
		return nil, mapWalletRepoErr(err, "create wallet")
	}
	if err := s.repo.EnsureGapLimit(w.ID, s.cfg.Wallet.GapLimit); err != nil {
		return nil, mapWalletRepoErr(err, "create wallet")
	}

	phrase, err := s.repo.RevealMnemonic(w.ID)
	if err != nil {
		return nil, mapWalletRepoErr(err, "create wallet")
	}
	return &CreateWalletResult{Wallet: *w, Mnemonic: phrase}, nil
}

// ImportWallet restores a wallet from a hand-entered recovery phrase. On an
// invalid phrase, the returned error's Details carry enough structure
// (word-count mismatch, unrecognized words with suggestions, or checksum
// failure) for the UI to guide correction, per the invalidWordCount /
// invalidWord(w) / invalidChecksum distinction.
func (s *Service) ImportWallet(req ImportWalletRequest) (*walletrepo.Wallet, error) {
	if err := walletrepo.ValidateWalletName(req.Name); err != nil {
		return nil, walleterr.WrapKind(walleterr.InvalidInput, err, "import wallet")
	}

	phrase := mnemonic.Normalize(req.Phrase)
	if err := mnemonic.Validate(phrase); err != nil {
		return nil, classifyMnemonicError(err, phrase)
	}

	w, err := s.repo.ImportWallet(req.Name, s.walletType(), phrase)
	if err != nil {
		return nil, mapWalletRepoErr(err, "import wallet")
	}
	if err := s.repo.EnsureGapLimit(w.ID, s.cfg.Wallet.GapLimit); err != nil {
		return nil, mapWalletRepoErr(err, "import wallet")
	}
	return w, nil
}

// classifyMnemonicError turns mnemonic.Validate's flat error into the
// richer, UI-actionable shape spec §7 calls for.
func classifyMnemonicError(err error, normalized string) error {
	if err == mnemonic.ErrInvalidWordCount {
		return walleterr.WithDetails(
			walleterr.New(walleterr.InvalidInput, "recovery phrase must be 12, 15, 18, 21, or 24 words"),
			map[string]string{"reason": "invalidWordCount"},
		)
	}

	if typos := mnemonic.DetectTypos(normalized); len(typos) > 0 {
		t := typos[0]
		details := map[string]string{
			"reason": "invalidWord",
			"word":   t.Word,
			"index":  fmt.Sprintf("%d", t.Index),
		}
		if t.Suggestion != "" {
			details["suggestion"] = t.Suggestion
		}
		return walleterr.WithDetails(
			walleterr.Newf(walleterr.InvalidInput, "word %d (%q) is not a recognized recovery word", t.Index+1, t.Word),
			details,
		)
	}

	return walleterr.WrapKind(walleterr.InvalidChecksum, err, "import wallet")
}

// ImportWatchOnly registers a wallet that can observe a single address but
// never sign for it.
func (s *Service) ImportWatchOnly(req ImportWatchOnlyRequest) (*walletrepo.Wallet, error) {
	if err := walletrepo.ValidateWalletName(req.Name); err != nil {
		return nil, walleterr.WrapKind(walleterr.InvalidInput, err, "import watch-only wallet")
	}

	address := sanitize.BitcoinAddress(strings.TrimSpace(req.Address))
	if _, err := txmodel.ScriptFromAddress(address); err != nil {
		return nil, walleterr.WrapKind(walleterr.InvalidInput, err, "invalid address")
	}

	w, err := s.repo.ImportWatchOnly(req.Name, address)
	if err != nil {
		return nil, mapWalletRepoErr(err, "import watch-only wallet")
	}
	return w, nil
}

// ListWallets returns every wallet's summary, active first sorted by
// creation time (the repository's own ordering).
func (s *Service) ListWallets() []walletrepo.Summary {
	return s.repo.ListWallets()
}

// ActivateWallet switches the active wallet.
func (s *Service) ActivateWallet(walletID string) error {
	if err := s.repo.SetActive(walletID); err != nil {
		return mapWalletRepoErr(err, "activate wallet")
	}
	return nil
}

// DeleteWallet removes a wallet and its stored mnemonic, closing its
// transactions adapter first.
func (s *Service) DeleteWallet(walletID string) error {
	s.closeAdapter(walletID)
	if err := s.repo.Delete(walletID); err != nil {
		return mapWalletRepoErr(err, "delete wallet")
	}
	return nil
}

// NextReceiveAddress returns the active wallet's next unused external
// address, expanding the gap-limit window if every known address has
// history.
func (s *Service) NextReceiveAddress() (*ReceiveAddressResult, error) {
	wallet, err := s.repo.GetActive()
	if err != nil {
		return nil, mapWalletRepoErr(err, "next receive address")
	}

	addr, err := s.repo.NextReceiveAddress(wallet.ID, s.cfg.Wallet.GapLimit)
	if err != nil {
		return nil, mapWalletRepoErr(err, "next receive address")
	}
	return &ReceiveAddressResult{Address: addr.Address, DerivationIndex: addr.DerivationIndex}, nil
}

// ViewBackupPhrase returns a wallet's recovery phrase for an explicit
// "view backup" action, distinct from the one-time display at creation.
func (s *Service) ViewBackupPhrase(walletID string) (string, error) {
	phrase, err := s.repo.RevealMnemonic(walletID)
	if err != nil {
		return "", mapWalletRepoErr(err, "view backup phrase")
	}
	return phrase, nil
}

// mapWalletRepoErr reclassifies walletrepo's flat sentinel errors onto the
// core error taxonomy, preserving the original as Cause.
func mapWalletRepoErr(err error, op string) error {
	switch err {
	case walletrepo.ErrWalletNotFound, walletrepo.ErrNoActiveWallet, walletrepo.ErrAddressNotFound:
		return walleterr.WrapKind(walleterr.NotFound, err, op)
	case walletrepo.ErrWalletExists, walletrepo.ErrInvalidWalletName, walletrepo.ErrWatchOnly:
		return walleterr.WrapKind(walleterr.InvalidInput, err, op)
	case walletrepo.ErrGapLimitAborted:
		return walleterr.WrapKind(walleterr.NetworkUnavailable, err, op)
	default:
		return walleterr.Wrap(err, op)
	}
}
