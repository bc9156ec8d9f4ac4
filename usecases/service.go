package usecases

import (
	"sync"

	"github.com/nimbuswallet/core/internal/bip84"
	"github.com/nimbuswallet/core/internal/config"
	"github.com/nimbuswallet/core/internal/txadapter"
	"github.com/nimbuswallet/core/internal/walletrepo"
)

// Dependencies bundles the constructed infrastructure a Service wires
// together. None of it is built here: the caller (normally cmd/walletcore)
// owns process lifetime for the Electrum connection and secret store.
type Dependencies struct {
	Config  *config.Config
	Repo    WalletRepo
	Client  ElectrumGateway
	Logger  *config.Logger
	DataDir string
}

// Service is the façade's single entry point: create/import a wallet,
// send bitcoin, list transactions, derive the next receive address. It
// holds one transactions adapter per wallet it has touched, built lazily
// and torn down when a wallet is deleted or the service is closed.
type Service struct {
	cfg     *config.Config
	repo    WalletRepo
	client  ElectrumGateway
	logger  *config.Logger
	dataDir string

	mu       sync.Mutex
	adapters map[string]*txadapter.Adapter
}

// NewService constructs a Service from already-running infrastructure.
func NewService(deps *Dependencies) *Service {
	return &Service{
		cfg:      deps.Config,
		repo:     deps.Repo,
		client:   deps.Client,
		logger:   deps.Logger,
		dataDir:  deps.DataDir,
		adapters: make(map[string]*txadapter.Adapter),
	}
}

// Close tears down every adapter the service has constructed.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.adapters {
		a.Close()
		delete(s.adapters, id)
	}
}

// network returns the BIP84 network selected by configuration.
func (s *Service) network() bip84.Network {
	if s.cfg.Wallet.NetworkType == config.Testnet {
		return bip84.Testnet
	}
	return bip84.Mainnet
}

// walletType maps the configured network onto the wallet repository's
// network-or-watch-only wallet type.
func (s *Service) walletType() walletrepo.WalletType {
	if s.cfg.Wallet.NetworkType == config.Testnet {
		return walletrepo.Testnet
	}
	return walletrepo.Mainnet
}

// adapterFor returns the wallet's transactions adapter, constructing it on
// first use. Callers never close it directly; closeAdapter and Close own
// that.
func (s *Service) adapterFor(walletID string) *txadapter.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.adapters[walletID]; ok {
		return a
	}
	a := txadapter.New(walletID, s.network(), s.client, s.repo, s.dataDir, s.logger)
	s.adapters[walletID] = a
	return a
}

// closeAdapter tears down and forgets a wallet's adapter, if one exists.
func (s *Service) closeAdapter(walletID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.adapters[walletID]; ok {
		a.Close()
		delete(s.adapters, walletID)
	}
}
