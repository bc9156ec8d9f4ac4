package electrum

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"
)

// newPipedClient wires a Client directly to one end of an in-memory pipe,
// bypassing Run/Dial, and starts its read loop. The caller gets the other
// end to play the role of the Electrum server.
func newPipedClient(t *testing.T) (*Client, net.Conn) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	t.Cleanup(func() { _ = clientSide.Close(); _ = serverSide.Close() })

	c := New(Config{})
	c.conn = clientSide
	c.writer = bufio.NewWriter(clientSide)
	go func() { _ = c.readLoop(bufio.NewReader(clientSide)) }()
	return c, serverSide
}

// fakeServer reads one request line at a time and lets the test decide how
// to answer it.
func fakeServer(t *testing.T, conn net.Conn, respond func(req request) response) {
	t.Helper()
	go func() {
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadBytes('\n')
			if err != nil {
				return
			}
			var req request
			if err := json.Unmarshal(line, &req); err != nil {
				return
			}
			resp := respond(req)
			data, _ := json.Marshal(resp)
			if _, err := conn.Write(append(data, '\n')); err != nil {
				return
			}
		}
	}()
}

func TestCall_RoundTripDeliversMatchingResult(t *testing.T) {
	c, server := newPipedClient(t)
	fakeServer(t, server, func(req request) response {
		id := req.ID
		return response{ID: &id, Result: json.RawMessage(`{"confirmed":100,"unconfirmed":7}`)}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	bal, err := c.GetBalance(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.Confirmed != 100 || bal.Unconfirmed != 7 {
		t.Errorf("bal = %+v, want {100 7}", bal)
	}
}

func TestCall_ServerErrorObjectSurfacesAsServerError(t *testing.T) {
	c, server := newPipedClient(t)
	fakeServer(t, server, func(req request) response {
		id := req.ID
		return response{ID: &id, Error: &rpcErrorObject{Code: 1, Message: "no such scripthash"}}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.GetBalance(ctx, "deadbeef")
	if err == nil {
		t.Fatal("expected a ServerError")
	}
	se, ok := err.(*ServerError)
	if !ok || se.Code != 1 {
		t.Errorf("err = %v, want ServerError{Code: 1}", err)
	}
}

func TestCall_ContextCancellationReturnsPromptly(t *testing.T) {
	c, _ := newPipedClient(t) // server side never answers

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.GetBalance(ctx, "deadbeef")
	if err == nil {
		t.Fatal("expected a context error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Call took %v to return after ctx cancellation, want << 1s", elapsed)
	}

	// the abandoned request must have been cleared from the pending map,
	// not leaked.
	c.pendingMu.Lock()
	n := len(c.pending)
	c.pendingMu.Unlock()
	if n != 0 {
		t.Errorf("pending map has %d leaked entries", n)
	}
}

func TestCall_ConcurrentRequestsGetTheirOwnResponses(t *testing.T) {
	c, server := newPipedClient(t)

	// Echo back id*10 as the balance's confirmed amount, reversing the
	// order requests are answered in to prove the correlator (not
	// arrival order) determines which caller gets which result.
	fakeServer(t, server, func(req request) response {
		id := req.ID
		result, _ := json.Marshal(Balance{Confirmed: int64(id) * 10})
		return response{ID: &id, Result: result}
	})

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	results := make([]Balance, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			results[i], errs[i] = c.GetBalance(ctx, "sh")
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("request %d: %v", i, errs[i])
		}
		if results[i].Confirmed%10 != 0 {
			t.Errorf("request %d got malformed result %+v", i, results[i])
		}
		seen[results[i].Confirmed] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct results (one per request id), got %d", n, len(seen))
	}
}
