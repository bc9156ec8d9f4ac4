package electrum

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type request struct {
	Method string        `json:"method"`
	JSONRPC string       `json:"jsonrpc"`
	Params []interface{} `json:"params"`
	ID     uint64        `json:"id"`
}

type response struct {
	ID     *uint64         `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *rpcErrorObject `json:"error"`
}

type rpcErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Call sends a JSON-RPC request and blocks until a matching response
// arrives, the connection drops, ctx is cancelled, or requestTimeout
// elapses — whichever happens first.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	c.connMu.Lock()
	conn := c.conn
	w := c.writer
	c.connMu.Unlock()
	if conn == nil || w == nil {
		return nil, ErrNotConnected
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	id := c.nextID.Add(1)
	data, err := json.Marshal(request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("electrum: marshal request: %w", err)
	}

	pr := &pendingRequest{resultCh: make(chan rpcResult, 1)}
	c.pendingMu.Lock()
	c.pending[id] = pr
	c.pendingMu.Unlock()
	pr.timer = time.AfterFunc(requestTimeout, func() { c.timeoutPending(id) })

	c.connMu.Lock()
	_, werr := w.Write(append(data, '\n'))
	if werr == nil {
		werr = w.Flush()
	}
	c.connMu.Unlock()
	if werr != nil {
		c.removePending(id)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, werr)
	}

	select {
	case res := <-pr.resultCh:
		return res.result, res.err
	case <-ctx.Done():
		c.removePending(id)
		return nil, ctx.Err()
	}
}

func (c *Client) timeoutPending(id uint64) {
	c.pendingMu.Lock()
	pr, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
	if ok {
		pr.resultCh <- rpcResult{err: ErrTimeout}
	}
}

func (c *Client) removePending(id uint64) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if pr, ok := c.pending[id]; ok {
		pr.timer.Stop()
		delete(c.pending, id)
	}
}

// failAllPending delivers err to every outstanding request, used when the
// connection drops out from under them.
func (c *Client) failAllPending(err error) {
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = make(map[uint64]*pendingRequest)
	c.pendingMu.Unlock()
	for _, pr := range pending {
		pr.timer.Stop()
		pr.resultCh <- rpcResult{err: err}
	}
}
