// Package migrations embeds the SQL schema history of the battle store.
package migrations
