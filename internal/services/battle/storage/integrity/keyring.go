package integrity

import (
	"crypto/hkdf"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrKeyringNotConfigured is returned by a nil keyring.
	ErrKeyringNotConfigured = errors.New("hmac keyring is not configured")
	// ErrSignatureMismatch indicates a signature that does not match its chain hash.
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Keyring stores root HMAC keys and the active key id.
type Keyring struct {
	keys        map[string][]byte
	activeKeyID string
}

// NewKeyring constructs a keyring for HMAC signing and verification. Keys are
// copied.
func NewKeyring(keys map[string][]byte, activeKeyID string) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("hmac keys are required")
	}
	activeKeyID = strings.TrimSpace(activeKeyID)
	if activeKeyID == "" {
		return nil, fmt.Errorf("active hmac key id is required")
	}
	if _, ok := keys[activeKeyID]; !ok {
		return nil, fmt.Errorf("active hmac key id %q is not configured", activeKeyID)
	}
	owned := make(map[string][]byte, len(keys))
	for id, key := range keys {
		if len(key) == 0 {
			return nil, fmt.Errorf("hmac key %q is empty", id)
		}
		owned[id] = append([]byte(nil), key...)
	}
	return &Keyring{keys: owned, activeKeyID: activeKeyID}, nil
}

// ActiveKeyID returns the configured signing key id.
func (k *Keyring) ActiveKeyID() string {
	if k == nil {
		return ""
	}
	return k.activeKeyID
}

// KeyIDs returns every configured key id in order.
func (k *Keyring) KeyIDs() []string {
	if k == nil {
		return nil
	}
	ids := make([]string, 0, len(k.keys))
	for id := range k.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SignChainHash signs a battle chain hash with the active key and returns
// the signature with the key id that produced it.
func (k *Keyring) SignChainHash(battleID, chainHash string) (string, string, error) {
	if k == nil {
		return "", "", ErrKeyringNotConfigured
	}
	key, err := k.deriveKey(k.activeKeyID, battleID)
	if err != nil {
		return "", "", err
	}
	return hmacSHA256Hex(key, chainHash), k.activeKeyID, nil
}

// VerifyChainHash validates a chain hash signature made with keyID. Retired
// keys still verify as long as they stay in the keyring.
func (k *Keyring) VerifyChainHash(battleID, chainHash, signature, keyID string) error {
	if k == nil {
		return ErrKeyringNotConfigured
	}
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return fmt.Errorf("signature key id is required")
	}
	key, err := k.deriveKey(keyID, battleID)
	if err != nil {
		return err
	}
	expected := hmacSHA256Hex(key, chainHash)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

func (k *Keyring) deriveKey(keyID, battleID string) ([]byte, error) {
	rootKey, ok := k.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("hmac key id %q is unknown", keyID)
	}
	return deriveBattleKey(rootKey, battleID)
}

func deriveBattleKey(rootKey []byte, battleID string) ([]byte, error) {
	battleID = strings.TrimSpace(battleID)
	if battleID == "" {
		return nil, fmt.Errorf("battle id is required")
	}
	key, err := hkdf.Key(sha256.New, rootKey, nil, "battle:"+battleID, 32)
	if err != nil {
		return nil, fmt.Errorf("derive battle key: %w", err)
	}
	return key, nil
}

func hmacSHA256Hex(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
