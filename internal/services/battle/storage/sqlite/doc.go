// Package sqlite persists battles in SQLite: the signed event journal, the
// battle setup and the unit records a battle started from.
package sqlite
