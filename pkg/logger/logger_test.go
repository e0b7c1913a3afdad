package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"prod":       Prod,
		"Production": Prod,
		" dev ":      Dev,
		"":           Dev,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestFileLogging(t *testing.T) {
	dir := t.TempDir()
	log := New(&Config{Mode: Dev, Level: "info", App: "wheel", Dir: dir, File: true})

	log.Info("hello")
	log.Error("boom")
	_ = log.Sync()

	for _, name := range []string{"wheel.log", "wheel_error.log"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("expected %s to have content", name)
		}
	}
}

func TestInvalidLevelFallsBack(t *testing.T) {
	log := New(&Config{Level: "loud"})
	if !log.Core().Enabled(-1) {
		t.Error("expected debug to be enabled after an invalid level")
	}
}
