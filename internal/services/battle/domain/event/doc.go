// Package event defines the battle event envelope and the event-type registry
// guarding the write path.
//
// Events are the only way battle state changes. The registry validates the
// envelope and canonicalizes payload JSON before a journal assigns sequence
// and integrity fields, so every observer folding the same events reaches the
// same state.
package event
