package config

import (
	"bytes"
	"testing"
)

func TestExitfWritesAndExits(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	prevOut, prevExit := stderr, exit
	stderr = &buf
	exit = func(c int) { code = c }
	t.Cleanup(func() { stderr, exit = prevOut, prevExit })

	Exitf("Error: %s", "scenario path is required")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got := buf.String(); got != "Error: scenario path is required\n" {
		t.Fatalf("stderr = %q", got)
	}
}
