package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/nimbuswallet/core/pkg/errors"
)

var (
	errInner     = stderrors.New("inner")
	errRootCause = stderrors.New("root cause")
	errPlain     = stderrors.New("plain error")
)

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, walleterr.ExitSuccess},
		{"invalid input", walleterr.New(walleterr.InvalidInput, "bad"), walleterr.ExitInput},
		{"invalid checksum", walleterr.New(walleterr.InvalidChecksum, "bad"), walleterr.ExitInput},
		{"crypto failure", walleterr.New(walleterr.CryptoFailure, "bad"), walleterr.ExitGeneral},
		{"network unavailable", walleterr.New(walleterr.NetworkUnavailable, "bad"), walleterr.ExitNetwork},
		{"timeout", walleterr.New(walleterr.Timeout, "bad"), walleterr.ExitNetwork},
		{"protocol error", walleterr.New(walleterr.ProtocolError, "bad"), walleterr.ExitNetwork},
		{"server error", walleterr.New(walleterr.ServerError, "bad"), walleterr.ExitNetwork},
		{"persistence failure", walleterr.New(walleterr.PersistenceFailure, "bad"), walleterr.ExitGeneral},
		{"not found", walleterr.New(walleterr.NotFound, "bad"), walleterr.ExitNotFound},
		{"insufficient funds", walleterr.New(walleterr.InsufficientFunds, "bad"), walleterr.ExitFunds},
		{"unclassified error", errPlain, walleterr.ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, walleterr.ExitCode(tt.err))
		})
	}
}

func TestWrap_preservesKind(t *testing.T) {
	t.Parallel()
	wrapped := walleterr.Wrap(walleterr.ErrWalletNotFound, "wallet %s", "main")
	assert.Contains(t, wrapped.Error(), "wallet main")
	assert.Contains(t, wrapped.Error(), "wallet not found")
	assert.Equal(t, walleterr.NotFound, walleterr.KindOf(wrapped))
	require.ErrorIs(t, wrapped, walleterr.ErrWalletNotFound)
}

func TestWrap_nilInput(t *testing.T) {
	t.Parallel()
	assert.NoError(t, walleterr.Wrap(nil, "context"))
}

func TestWrap_unclassifiedErrorBecomesProtocolError(t *testing.T) {
	t.Parallel()
	wrapped := walleterr.Wrap(errPlain, "fetching header")
	assert.Equal(t, walleterr.ProtocolError, walleterr.KindOf(wrapped))

	var we *walleterr.CoreError
	require.ErrorAs(t, wrapped, &we)
	assert.Equal(t, errPlain, we.Cause)
}

func TestWrapKind_reclassifies(t *testing.T) {
	t.Parallel()
	wrapped := walleterr.WrapKind(walleterr.Timeout, errPlain, "rpc %s timed out", "blockchain.scripthash.get_history")
	assert.Equal(t, walleterr.Timeout, walleterr.KindOf(wrapped))
	assert.Contains(t, wrapped.Error(), "timed out")
}

func TestWithDetails(t *testing.T) {
	t.Parallel()
	details := map[string]string{"code": "-32600", "message": "invalid request"}
	err := walleterr.WithDetails(walleterr.New(walleterr.ServerError, "electrum rejected broadcast"), details)

	var we *walleterr.CoreError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, details, we.Details)
	assert.Equal(t, walleterr.ServerError, we.Kind)
}

func TestWithDetails_nilInput(t *testing.T) {
	t.Parallel()
	assert.NoError(t, walleterr.WithDetails(nil, map[string]string{"k": "v"}))
}

func TestWithDetails_nonCoreError(t *testing.T) {
	t.Parallel()
	result := walleterr.WithDetails(errPlain, map[string]string{"k": "v"})
	var we *walleterr.CoreError
	require.ErrorAs(t, result, &we)
	assert.Equal(t, walleterr.ProtocolError, we.Kind)
	assert.Equal(t, map[string]string{"k": "v"}, we.Details)
	assert.Equal(t, errPlain, we.Cause)
}

func TestNewf(t *testing.T) {
	t.Parallel()
	err := walleterr.Newf(walleterr.InvalidInput, "amount %d below dust limit %d", 100, 546)
	assert.Equal(t, "amount 100 below dust limit 546", err.Error())
	assert.Equal(t, walleterr.InvalidInput, err.Kind)
}

func TestCoreError_Error(t *testing.T) {
	t.Parallel()

	t.Run("message only", func(t *testing.T) {
		t.Parallel()
		err := &walleterr.CoreError{Kind: walleterr.InvalidInput, Message: "something failed"}
		assert.Equal(t, "something failed", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		t.Parallel()
		err := &walleterr.CoreError{Kind: walleterr.ProtocolError, Message: "outer", Cause: errInner}
		assert.Equal(t, "outer: inner", err.Error())
	})
}

func TestCoreError_Unwrap(t *testing.T) {
	t.Parallel()

	t.Run("with cause", func(t *testing.T) {
		t.Parallel()
		err := &walleterr.CoreError{Kind: walleterr.ProtocolError, Message: "wrapper", Cause: errRootCause}
		assert.Equal(t, errRootCause, err.Unwrap())
	})

	t.Run("nil cause", func(t *testing.T) {
		t.Parallel()
		err := &walleterr.CoreError{Kind: walleterr.ProtocolError, Message: "no cause"}
		assert.NoError(t, err.Unwrap())
	})
}

func TestCoreError_Is(t *testing.T) {
	t.Parallel()

	t.Run("matching kind", func(t *testing.T) {
		t.Parallel()
		a := &walleterr.CoreError{Kind: walleterr.NotFound, Message: "a"}
		b := &walleterr.CoreError{Kind: walleterr.NotFound, Message: "b"}
		assert.True(t, a.Is(b))
	})

	t.Run("different kind", func(t *testing.T) {
		t.Parallel()
		a := &walleterr.CoreError{Kind: walleterr.NotFound, Message: "a"}
		b := &walleterr.CoreError{Kind: walleterr.Timeout, Message: "b"}
		assert.False(t, a.Is(b))
	})

	t.Run("non-CoreError target", func(t *testing.T) {
		t.Parallel()
		a := &walleterr.CoreError{Kind: walleterr.NotFound, Message: "a"}
		assert.False(t, a.Is(errPlain))
	})
}

func TestAs(t *testing.T) {
	t.Parallel()

	t.Run("CoreError target", func(t *testing.T) {
		t.Parallel()
		err := walleterr.Wrap(walleterr.ErrTxNotFound, "lookup")
		var we *walleterr.CoreError
		assert.True(t, walleterr.As(err, &we))
		assert.Equal(t, walleterr.NotFound, we.Kind)
	})

	t.Run("non-CoreError", func(t *testing.T) {
		t.Parallel()
		var we *walleterr.CoreError
		assert.False(t, walleterr.As(errPlain, &we))
	})
}

func TestIs(t *testing.T) {
	t.Parallel()

	t.Run("matching sentinel", func(t *testing.T) {
		t.Parallel()
		wrapped := walleterr.Wrap(walleterr.ErrWalletNotFound, "context")
		assert.True(t, walleterr.Is(wrapped, walleterr.ErrWalletNotFound))
	})

	t.Run("non-matching", func(t *testing.T) {
		t.Parallel()
		wrapped := walleterr.Wrap(walleterr.ErrWalletNotFound, "context")
		assert.False(t, walleterr.Is(wrapped, walleterr.ErrInsufficientFunds))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.False(t, walleterr.Is(nil, walleterr.ErrWalletNotFound))
	})
}

func TestKindOf_edgeCases(t *testing.T) {
	t.Parallel()

	t.Run("CoreError", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, walleterr.NotFound, walleterr.KindOf(walleterr.ErrWalletNotFound))
	})

	t.Run("non-CoreError", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, walleterr.Kind(""), walleterr.KindOf(errPlain))
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, walleterr.Kind(""), walleterr.KindOf(nil))
	})
}
