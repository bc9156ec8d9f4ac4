// Package secretstore holds key material — mnemonics, master seeds, and
// cached derived private keys — bound to this device, with an optional
// per-item presence flag and a password-derived envelope for export.
package secretstore

import (
	"runtime"
	"sync"
)

// SecureBytes wraps a sensitive byte slice with best-effort mlock and
// explicit zeroing on Destroy, so key material doesn't linger in process
// memory or get paged to disk any longer than necessary.
type SecureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewSecureBytes allocates size bytes of secure memory.
func NewSecureBytes(size int) *SecureBytes {
	data := make([]byte, size)
	sb := &SecureBytes{data: data}
	sb.locked = mlock(data)
	runtime.SetFinalizer(sb, func(s *SecureBytes) { s.Destroy() })
	return sb
}

// SecureBytesFromSlice copies data into newly allocated secure memory. The
// caller retains ownership of the original slice.
func SecureBytesFromSlice(data []byte) *SecureBytes {
	sb := NewSecureBytes(len(data))
	copy(sb.data, data)
	return sb
}

// Bytes returns the underlying slice. Returns nil once Destroy has run.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsLocked reports whether the backing memory is mlocked.
func (s *SecureBytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Len returns the length of the data, or 0 after Destroy.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// ZeroBytes overwrites b with zeroes in place. Use it for key material that
// passes through as a plain slice for the duration of a single derivation
// (e.g. a seed reconstructed from the stored mnemonic) rather than living
// in a SecureBytes for its whole lifetime.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Destroy zeros and unlocks the memory. Safe to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	for i := range s.data {
		s.data[i] = 0
	}
	if s.locked {
		munlock(s.data)
		s.locked = false
	}
	s.data = nil
	runtime.SetFinalizer(s, nil)
}
