package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readLog closes the logger and returns what reached path.
func readLog(t *testing.T, path string) string {
	t.Helper()
	if err := Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(content)
}

func TestLevelRoundTrip(t *testing.T) {
	for _, level := range []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelOff} {
		if got := ParseLogLevel(level.String()); got != level {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", level.String(), got, level)
		}
	}
}

func TestParseLogLevelLenient(t *testing.T) {
	tests := map[string]LogLevel{
		" debug ": LevelDebug,
		"warning": LevelWarn,
		"Off":     LevelOff,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "cratuity.log")

	if err := Setup(LevelWarn, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if GetLevel() != LevelWarn {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelWarn)
	}

	Debugf("cache hit %q", "serde")
	Infof("submitted page %d", 2)
	Warnf("fetch failed: %s", "timeout")
	Errorf("worker stopped")

	out := readLog(t, logPath)
	for _, absent := range []string{"cache hit", "submitted page"} {
		if strings.Contains(out, absent) {
			t.Errorf("%q should be filtered at WARN", absent)
		}
	}
	for _, present := range []string{"fetch failed: timeout", "worker stopped", "cratuity"} {
		if !strings.Contains(out, present) {
			t.Errorf("log should contain %q, got: %s", present, out)
		}
	}
}

func TestSetupOffWritesNothing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := Setup(LevelOff); err != nil {
		t.Fatalf("Setup with LevelOff failed: %v", err)
	}
	Errorf("should go nowhere")

	if _, err := os.Stat(filepath.Join(home, ".cratuity")); !os.IsNotExist(err) {
		t.Errorf("no log directory should be created when logging is off")
	}
}

func TestSetupDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := Setup(LevelWarn); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	Warnf("default path message")

	out := readLog(t, filepath.Join(home, ".cratuity", "cratuity.log"))
	if !strings.Contains(out, "default path message") {
		t.Error("default log file should contain the message")
	}
}

func TestSetupReplacesOpenFile(t *testing.T) {
	tempDir := t.TempDir()
	first := filepath.Join(tempDir, "first.log")
	second := filepath.Join(tempDir, "second.log")

	if err := Setup(LevelInfo, first); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	Infof("to first")
	if err := Setup(LevelInfo, second); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	Infof("to second")
	Close()

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if strings.Contains(string(a), "to second") {
		t.Error("first file should not receive messages after re-setup")
	}
	if !strings.Contains(string(b), "to second") {
		t.Error("second file should receive messages after re-setup")
	}
}

func TestFieldLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fields.log")
	if err := Setup(LevelDebug, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	WithFields(map[string]interface{}{
		"query":    "serde",
		"page":     2,
		"per_page": 50,
	}).Infof("fetching batch")

	out := readLog(t, logPath)
	for _, want := range []string{"fetching batch", "query=serde", "page=2", "per_page=50"} {
		if !strings.Contains(out, want) {
			t.Errorf("log should contain %q, got: %s", want, out)
		}
	}
	if strings.Index(out, "page=2") > strings.Index(out, "query=serde") {
		t.Error("fields should be written in sorted key order")
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelOff) })

	SetLevel(LevelDebug)
	if GetLevel() != LevelDebug {
		t.Errorf("SetLevel(LevelDebug) failed, got %v", GetLevel())
	}
	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("SetLevel(LevelError) failed, got %v", GetLevel())
	}
}
