// Package integrity signs and verifies the chain hashes of the battle
// journal. Each battle gets its own HMAC key derived from a root key, so a
// signature copied between battles never verifies.
package integrity
