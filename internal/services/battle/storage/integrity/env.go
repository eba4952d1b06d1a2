package integrity

import (
	"fmt"
	"strings"

	"github.com/louisbranch/skirmish/internal/platform/config"
)

const defaultKeyID = "v1"

// Config is the keyring configuration read from SKIRMISH_BATTLE_HMAC_*.
//
// KEYS holds "id=secret" pairs separated by commas; when it is empty the
// single KEY is stored under KEY_ID.
type Config struct {
	Keys  string `env:"BATTLE_HMAC_KEYS"`
	Key   string `env:"BATTLE_HMAC_KEY"`
	KeyID string `env:"BATTLE_HMAC_KEY_ID" envDefault:"v1"`
}

// LoadConfig reads the keyring variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParsePrefixedEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Configured reports whether any key material is present.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.Keys) != "" || strings.TrimSpace(c.Key) != ""
}

// Keyring builds the keyring described by c.
func (c Config) Keyring() (*Keyring, error) {
	keyID := strings.TrimSpace(c.KeyID)
	if keyID == "" {
		keyID = defaultKeyID
	}

	keySpec := strings.TrimSpace(c.Keys)
	if keySpec == "" {
		raw := strings.TrimSpace(c.Key)
		if raw == "" {
			return nil, fmt.Errorf("%sBATTLE_HMAC_KEY is required", config.Prefix)
		}
		return NewKeyring(map[string][]byte{keyID: []byte(raw)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id, value = strings.TrimSpace(id), strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid %sBATTLE_HMAC_KEYS entry", config.Prefix)
		}
		if _, dup := keys[id]; dup {
			return nil, fmt.Errorf("duplicate %sBATTLE_HMAC_KEYS id %q", config.Prefix, id)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}

// KeyringFromEnv loads the HMAC keyring from environment variables.
func KeyringFromEnv() (*Keyring, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Keyring()
}
