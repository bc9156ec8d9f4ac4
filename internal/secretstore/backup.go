package secretstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	backupSaltLen  = 32
	backupKeyLen   = 32
	backupIter     = 100_000
	backupNonceLen = 12 // AES-GCM standard nonce size
)

type backupItem struct {
	Data                []byte `json:"data"`
	RequireUserPresence bool   `json:"requireUserPresence"`
}

func deriveBackupKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, backupIter, backupKeyLen, sha256.New)
}

// Export serializes every stored item and encrypts it under a key derived
// from password via PBKDF2-HMAC-SHA256. The returned blob is
// salt || nonce || ciphertext_with_tag; salt and nonce are random per call
// so exporting the same store twice never produces the same bytes.
func (s *Store) Export(password string) ([]byte, error) {
	s.mu.RLock()
	plain := make(map[string]backupItem, len(s.items))
	for k, e := range s.items {
		plain[k] = backupItem{Data: e.secure.Bytes(), RequireUserPresence: e.requireUserPresence}
	}
	s.mu.RUnlock()

	serialized, err := json.Marshal(plain)
	if err != nil {
		return nil, fmt.Errorf("secretstore: marshal backup: %w", err)
	}

	salt := make([]byte, backupSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("secretstore: generate salt: %w", err)
	}
	key := deriveBackupKey(password, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretstore: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretstore: new gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("secretstore: generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, serialized, nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// Import decrypts a blob produced by Export and replaces the store's
// entire contents with the items it contains. On a wrong password or a
// corrupted blob it returns ErrAuthFailed without distinguishing the two —
// GCM's tag check and the key derivation both fail the same way to the
// caller.
func (s *Store) Import(blob []byte, password string) error {
	if len(blob) < backupSaltLen+backupNonceLen {
		return ErrAuthFailed
	}
	salt := blob[:backupSaltLen]
	nonce := blob[backupSaltLen : backupSaltLen+backupNonceLen]
	ciphertext := blob[backupSaltLen+backupNonceLen:]

	key := deriveBackupKey(password, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return ErrAuthFailed
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return ErrAuthFailed
	}

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrAuthFailed
	}

	var items map[string]backupItem
	if err := json.Unmarshal(plain, &items); err != nil {
		return ErrAuthFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		e.secure.Destroy()
	}
	s.items = make(map[string]*entry, len(items))
	for k, it := range items {
		s.items[k] = &entry{
			secure:              SecureBytesFromSlice(it.Data),
			requireUserPresence: it.RequireUserPresence,
		}
	}
	return nil
}
