package log

import (
	"bytes"
	"testing"
)

func TestLevelFromInt(t *testing.T) {
	tests := []struct {
		in   int
		want Level
	}{
		{in: -1, want: Off},
		{in: 0, want: Off},
		{in: 1, want: Basic},
		{in: 2, want: Detailed},
		{in: 3, want: Trace},
		{in: 4, want: Wire},
		{in: 9, want: Wire},
	}

	for _, tc := range tests {
		if got := LevelFromInt(tc.in); got != tc.want {
			t.Fatalf("LevelFromInt(%d) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDebugRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(Detailed)
	defer func() {
		SetOutput(nil)
		SetLevel(Off)
	}()

	Debug(Trace, "hidden %d\n", 1)
	if buf.Len() != 0 {
		t.Fatalf("trace message written at detailed level: %q", buf.String())
	}

	Log("login failed: %s\n", "boom")
	if got, want := buf.String(), "[basic] login failed: boom\n"; got != want {
		t.Fatalf("Log wrote %q, want %q", got, want)
	}
}
