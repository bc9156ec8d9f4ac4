package walletrepo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nimbuswallet/core/internal/fileutil"
)

const (
	indexFileName    = "wallets.json"
	indexFilePerm    = 0o600
	indexCurrentVers = 1
)

type indexFile struct {
	Version  int                      `json:"version"`
	ActiveID string                   `json:"activeId"`
	Wallets  map[string]*walletRecord `json:"wallets"`
}

func (r *Repository) indexPath() string {
	return filepath.Join(r.dataDir, indexFileName)
}

// Save atomically persists every wallet, its addresses, UTXOs, and
// transaction metadata to a single index file. Mnemonics and private keys
// are never included — those live exclusively in the secret store.
func (r *Repository) Save() error {
	r.mu.RLock()
	snapshot := indexFile{
		Version:  indexCurrentVers,
		ActiveID: r.activeID,
		Wallets:  r.wallets,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("walletrepo: marshal index: %w", err)
	}

	if err := os.MkdirAll(r.dataDir, 0o750); err != nil {
		return fmt.Errorf("walletrepo: create data dir: %w", err)
	}
	return fileutil.WriteAtomic(r.indexPath(), data, indexFilePerm)
}

// Load reads the persisted index file, if present. A missing file is not
// an error: it means a fresh installation with no wallets yet.
func (r *Repository) Load() error {
	data, err := os.ReadFile(r.indexPath()) //nolint:gosec // G304: path built from validated base dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("walletrepo: read index: %w", err)
	}

	var snapshot indexFile
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("walletrepo: parse index: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeID = snapshot.ActiveID
	r.wallets = snapshot.Wallets
	if r.wallets == nil {
		r.wallets = make(map[string]*walletRecord)
	}
	return nil
}
