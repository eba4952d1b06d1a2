// Package hmackey generates journal signing keys for the battle store.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/skirmish/internal/platform/config"
)

// minBytes is the shortest key Run generates.
const minBytes = 16

// Config holds configuration for key generation.
type Config struct {
	Bytes int
	// KeyID, when set, prints a keyring entry for rotation instead of a
	// single key.
	KeyID string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes")
	fs.StringVar(&cfg.KeyID, "key-id", cfg.KeyID, "key id for a rotated keyring entry")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the key and writes the environment lines to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes < minBytes {
		return fmt.Errorf("bytes must be at least %d", minBytes)
	}
	if out == nil {
		return errors.New("output is required")
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if strings.ContainsAny(keyID, "=,") {
		return errors.New("key id must not contain '=' or ','")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	key := hex.EncodeToString(buf)
	if keyID == "" {
		_, err := fmt.Fprintf(out, "%sBATTLE_HMAC_KEY=%s\n", config.Prefix, key)
		return err
	}
	_, err := fmt.Fprintf(out, "%sBATTLE_HMAC_KEYS=%s=%s\n%sBATTLE_HMAC_KEY_ID=%s\n",
		config.Prefix, keyID, key, config.Prefix, keyID)
	return err
}
