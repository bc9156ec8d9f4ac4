package electrum

import (
	"bufio"
	"encoding/json"
)

// readLoop owns the connection's receive side: it blocks on ReadBytes until
// the line delimiter, dispatches each line, and returns (signalling the
// connection is dead) on the first read error.
func (c *Client) readLoop(r *bufio.Reader) error {
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return err
		}
		if len(line) == 0 {
			continue
		}

		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			continue // one malformed line does not kill the connection
		}

		if resp.ID != nil {
			c.deliver(*resp.ID, resp)
			continue
		}
		if resp.Method != "" {
			go c.dispatchNotification(resp.Method, resp.Params)
		}
	}
}

func (c *Client) deliver(id uint64, resp response) {
	c.pendingMu.Lock()
	pr, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
	if !ok {
		return
	}
	pr.timer.Stop()

	if resp.Error != nil {
		pr.resultCh <- rpcResult{err: &ServerError{Code: resp.Error.Code, Message: resp.Error.Message}}
		return
	}
	pr.resultCh <- rpcResult{result: resp.Result}
}
