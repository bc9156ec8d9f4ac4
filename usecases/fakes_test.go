package usecases

import (
	"context"
	"errors"

	"github.com/nimbuswallet/core/internal/codec"
	"github.com/nimbuswallet/core/internal/electrum"
	"github.com/nimbuswallet/core/internal/walletrepo"
)

// fakeWalletRepo is a minimal, map-backed stand-in for *walletrepo.Repository
// that lets each test wire exactly the failure it needs without standing up
// real secret storage or disk persistence.
type fakeWalletRepo struct {
	wallets  map[string]*walletrepo.Wallet
	active   string
	mnemonic map[string]string
	addrs    map[string][]walletrepo.Address
	change   map[string]walletrepo.Address
	utxos    map[string][]walletrepo.UTXO
	keys     map[string]*codec.PrivateKey
	spent    []spentCall

	createErr     error
	importErr     error
	watchOnlyErr  error
	gapLimitErr   error
	nextRecvErr   error
	changeErr     error
	confirmedBal  int64
	confirmedErr  error
	addressesErr  error
	signingKeyErr error
	markSpentErr  error
}

type spentCall struct {
	txid string
	vout uint32
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		wallets:  make(map[string]*walletrepo.Wallet),
		mnemonic: make(map[string]string),
		addrs:    make(map[string][]walletrepo.Address),
		change:   make(map[string]walletrepo.Address),
		utxos:    make(map[string][]walletrepo.UTXO),
		keys:     make(map[string]*codec.PrivateKey),
	}
}

func (f *fakeWalletRepo) CreateWallet(name string, walletType walletrepo.WalletType) (*walletrepo.Wallet, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	w := &walletrepo.Wallet{ID: "wallet-" + name, Name: name, Type: walletType, Active: true}
	f.wallets[w.ID] = w
	f.active = w.ID
	f.mnemonic[w.ID] = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	return w, nil
}

func (f *fakeWalletRepo) ImportWallet(name string, walletType walletrepo.WalletType, phrase string) (*walletrepo.Wallet, error) {
	if f.importErr != nil {
		return nil, f.importErr
	}
	w := &walletrepo.Wallet{ID: "wallet-" + name, Name: name, Type: walletType, Active: true}
	f.wallets[w.ID] = w
	f.active = w.ID
	f.mnemonic[w.ID] = phrase
	return w, nil
}

func (f *fakeWalletRepo) ImportWatchOnly(name string, address string) (*walletrepo.Wallet, error) {
	if f.watchOnlyErr != nil {
		return nil, f.watchOnlyErr
	}
	w := &walletrepo.Wallet{ID: "wallet-" + name, Name: name, Type: walletrepo.WatchOnly, Active: true}
	f.wallets[w.ID] = w
	f.active = w.ID
	return w, nil
}

func (f *fakeWalletRepo) ListWallets() []walletrepo.Summary {
	out := make([]walletrepo.Summary, 0, len(f.wallets))
	for _, w := range f.wallets {
		out = append(out, walletrepo.Summary{ID: w.ID, Name: w.Name, Type: w.Type, Active: w.ID == f.active})
	}
	return out
}

func (f *fakeWalletRepo) GetActive() (*walletrepo.Wallet, error) {
	if f.active == "" {
		return nil, walletrepo.ErrNoActiveWallet
	}
	return f.wallets[f.active], nil
}

func (f *fakeWalletRepo) SetActive(id string) error {
	if _, ok := f.wallets[id]; !ok {
		return walletrepo.ErrWalletNotFound
	}
	f.active = id
	return nil
}

func (f *fakeWalletRepo) Delete(id string) error {
	if _, ok := f.wallets[id]; !ok {
		return walletrepo.ErrWalletNotFound
	}
	delete(f.wallets, id)
	return nil
}

func (f *fakeWalletRepo) EnsureGapLimit(walletID string, gap int) error {
	return f.gapLimitErr
}

func (f *fakeWalletRepo) NextReceiveAddress(walletID string, gap int) (*walletrepo.Address, error) {
	if f.nextRecvErr != nil {
		return nil, f.nextRecvErr
	}
	return &walletrepo.Address{Address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", DerivationIndex: 0}, nil
}

func (f *fakeWalletRepo) ChangeAddress(walletID string) (*walletrepo.Address, error) {
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	if addr, ok := f.change[walletID]; ok {
		return &addr, nil
	}
	return &walletrepo.Address{Address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", IsChange: true}, nil
}

func (f *fakeWalletRepo) SetUTXOs(walletID string, utxos []walletrepo.UTXO) error {
	f.utxos[walletID] = utxos
	return nil
}

func (f *fakeWalletRepo) UTXOs(walletID string) ([]walletrepo.UTXO, error) {
	return f.utxos[walletID], nil
}

func (f *fakeWalletRepo) ConfirmedBalance(walletID string, tipHeight int64) (int64, error) {
	if f.confirmedErr != nil {
		return 0, f.confirmedErr
	}
	return f.confirmedBal, nil
}

func (f *fakeWalletRepo) MarkSpent(walletID, txid string, vout uint32, spentByTxid string) (bool, error) {
	if f.markSpentErr != nil {
		return false, f.markSpentErr
	}
	f.spent = append(f.spent, spentCall{txid: txid, vout: vout})
	return true, nil
}

func (f *fakeWalletRepo) SigningKey(walletID string, isChange bool, index uint32) (*codec.PrivateKey, error) {
	if f.signingKeyErr != nil {
		return nil, f.signingKeyErr
	}
	key, ok := f.keys[walletID]
	if !ok {
		return nil, errors.New("fakeWalletRepo: no key configured")
	}
	return key, nil
}

func (f *fakeWalletRepo) RevealMnemonic(walletID string) (string, error) {
	phrase, ok := f.mnemonic[walletID]
	if !ok {
		return "", walletrepo.ErrWalletNotFound
	}
	return phrase, nil
}

func (f *fakeWalletRepo) TxHistory(walletID string) ([]walletrepo.TxMetadata, error) {
	return nil, nil
}

func (f *fakeWalletRepo) Addresses(walletID string, isChange *bool) ([]walletrepo.Address, error) {
	if f.addressesErr != nil {
		return nil, f.addressesErr
	}
	return f.addrs[walletID], nil
}

func (f *fakeWalletRepo) UpsertTxMetadata(walletID string, meta walletrepo.TxMetadata) error {
	return nil
}

// fakeElectrumGateway is a minimal stand-in for *electrum.Client.
type fakeElectrumGateway struct {
	hasHistory    bool
	hasHistoryErr error
	unspent       []electrum.UnspentEntry
	unspentErr    error
	feeRate       float64
	feeErr        error
	broadcastTxid string
	broadcastErr  error
	broadcastHex  string
}

func (f *fakeElectrumGateway) HasHistory(address string) (bool, error) {
	return f.hasHistory, f.hasHistoryErr
}

func (f *fakeElectrumGateway) ListUnspent(ctx context.Context, scripthash string) ([]electrum.UnspentEntry, error) {
	return f.unspent, f.unspentErr
}

func (f *fakeElectrumGateway) EstimateFee(ctx context.Context, blocks int) (float64, error) {
	return f.feeRate, f.feeErr
}

func (f *fakeElectrumGateway) Broadcast(ctx context.Context, rawTxHex string) (string, error) {
	f.broadcastHex = rawTxHex
	if f.broadcastErr != nil {
		return "", f.broadcastErr
	}
	return f.broadcastTxid, nil
}

func (f *fakeElectrumGateway) GetHistory(ctx context.Context, scripthash string) ([]electrum.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeElectrumGateway) GetTransactionHex(ctx context.Context, txid string) (string, error) {
	return "", nil
}

func (f *fakeElectrumGateway) GetMerkle(ctx context.Context, txid string, height int64) (electrum.Merkle, error) {
	return electrum.Merkle{}, nil
}

func (f *fakeElectrumGateway) BlockHeader(ctx context.Context, height int64) (string, error) {
	return "", nil
}

func (f *fakeElectrumGateway) SubscribeBlockHeight() (<-chan uint32, func()) {
	ch := make(chan uint32)
	return ch, func() {}
}

func (f *fakeElectrumGateway) SubscribeAddressStatus() (<-chan electrum.AddressStatus, func()) {
	ch := make(chan electrum.AddressStatus)
	return ch, func() {}
}
