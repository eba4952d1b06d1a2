package migrations

import (
	"io/fs"
	"sort"
	"testing"
)

func TestBattleMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(FS, Root)
	if err != nil {
		t.Fatalf("read battle migrations: %v", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	want := []string{"001_events.sql", "002_battles.sql"}
	if len(files) != len(want) {
		t.Fatalf("migrations = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("migration %d = %s, want %s", i, files[i], want[i])
		}
	}
}
