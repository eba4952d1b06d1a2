// Package app runs one battle: it resolves actions against the current state,
// rejects the ones whose preconditions fail and submits the outcome of the
// rest through the battle state proxy.
package app
