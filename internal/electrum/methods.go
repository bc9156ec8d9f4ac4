package electrum

import (
	"context"
	"encoding/json"
	"fmt"
)

// Features calls server.features and returns the raw server capability dict.
func (c *Client) Features(ctx context.Context) (map[string]interface{}, error) {
	raw, err := c.Call(ctx, "server.features", nil)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return out, nil
}

// HeaderNotification is the shape of both headers.subscribe's initial
// result and its follow-up notifications.
type HeaderNotification struct {
	Height int64  `json:"height"`
	Hex    string `json:"hex"`
}

func (c *Client) subscribeHeaders(ctx context.Context) error {
	raw, err := c.Call(ctx, "blockchain.headers.subscribe", nil)
	if err != nil {
		return err
	}
	var hdr HeaderNotification
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	c.tip.Store(hdr.Height)
	c.pub.blockHeight.publish(uint32(hdr.Height))
	return nil
}

// Balance is the confirmed/unconfirmed satoshi balance of a scripthash.
type Balance struct {
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
}

// GetBalance calls blockchain.scripthash.get_balance.
func (c *Client) GetBalance(ctx context.Context, scripthash string) (Balance, error) {
	raw, err := c.Call(ctx, "blockchain.scripthash.get_balance", []interface{}{scripthash})
	if err != nil {
		return Balance{}, err
	}
	var bal Balance
	if err := json.Unmarshal(raw, &bal); err != nil {
		return Balance{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return bal, nil
}

// HistoryEntry is one line of blockchain.scripthash.get_history's result.
// Height <= 0 means the transaction is unconfirmed (mempool).
type HistoryEntry struct {
	TxHash string `json:"tx_hash"`
	Height int64  `json:"height"`
}

// GetHistory calls blockchain.scripthash.get_history.
func (c *Client) GetHistory(ctx context.Context, scripthash string) ([]HistoryEntry, error) {
	raw, err := c.Call(ctx, "blockchain.scripthash.get_history", []interface{}{scripthash})
	if err != nil {
		return nil, err
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return entries, nil
}

// UnspentEntry is one line of blockchain.scripthash.listunspent's result.
type UnspentEntry struct {
	TxHash string `json:"tx_hash"`
	TxPos  uint32 `json:"tx_pos"`
	Value  int64  `json:"value"`
	Height int64  `json:"height"`
}

// ListUnspent calls blockchain.scripthash.listunspent.
func (c *Client) ListUnspent(ctx context.Context, scripthash string) ([]UnspentEntry, error) {
	raw, err := c.Call(ctx, "blockchain.scripthash.listunspent", []interface{}{scripthash})
	if err != nil {
		return nil, err
	}
	var entries []UnspentEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return entries, nil
}

// GetTransactionHex calls blockchain.transaction.get without verbose mode
// and returns the raw transaction hex.
func (c *Client) GetTransactionHex(ctx context.Context, txid string) (string, error) {
	raw, err := c.Call(ctx, "blockchain.transaction.get", []interface{}{txid})
	if err != nil {
		return "", err
	}
	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return hexStr, nil
}

// GetTransactionVerbose calls blockchain.transaction.get with verbose=true
// and returns the server's decoded dict as-is.
func (c *Client) GetTransactionVerbose(ctx context.Context, txid string) (map[string]interface{}, error) {
	raw, err := c.Call(ctx, "blockchain.transaction.get", []interface{}{txid, true})
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return out, nil
}

// Broadcast calls blockchain.transaction.broadcast and returns the txid the
// server accepted.
func (c *Client) Broadcast(ctx context.Context, rawTxHex string) (string, error) {
	raw, err := c.Call(ctx, "blockchain.transaction.broadcast", []interface{}{rawTxHex})
	if err != nil {
		return "", err
	}
	var txid string
	if err := json.Unmarshal(raw, &txid); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return txid, nil
}

// Merkle is the result of blockchain.transaction.get_merkle.
type Merkle struct {
	BlockHeight int64    `json:"block_height"`
	Pos         int      `json:"pos"`
	Merkle      []string `json:"merkle"`
}

// GetMerkle calls blockchain.transaction.get_merkle.
func (c *Client) GetMerkle(ctx context.Context, txid string, height int64) (Merkle, error) {
	raw, err := c.Call(ctx, "blockchain.transaction.get_merkle", []interface{}{txid, height})
	if err != nil {
		return Merkle{}, err
	}
	var m Merkle
	if err := json.Unmarshal(raw, &m); err != nil {
		return Merkle{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return m, nil
}

// BlockHeader calls blockchain.block.header and returns the raw 80-byte
// header hex.
func (c *Client) BlockHeader(ctx context.Context, height int64) (string, error) {
	raw, err := c.Call(ctx, "blockchain.block.header", []interface{}{height})
	if err != nil {
		return "", err
	}
	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return hexStr, nil
}

// EstimateFee calls blockchain.estimatefee(blocks) and returns the
// estimate in BTC/kB; a negative value means the server could not estimate.
func (c *Client) EstimateFee(ctx context.Context, blocks int) (float64, error) {
	raw, err := c.Call(ctx, "blockchain.estimatefee", []interface{}{blocks})
	if err != nil {
		return 0, err
	}
	var fee float64
	if err := json.Unmarshal(raw, &fee); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return fee, nil
}
