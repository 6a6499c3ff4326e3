package opener

import (
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/pders01/cratuity/internal/config"
)

func TestNewLauncherUsesConfiguredCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX true binary")
	}
	cfg := config.TestConfig()
	cfg.Opener.Command = "true"

	l := NewLauncher(cfg)
	if l.Command() != "true" {
		t.Errorf("Command() = %q, want %q", l.Command(), "true")
	}
}

func TestOpenRunsCommandWithLink(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Opener.Command = "browser --new-tab"

	l := NewLauncher(cfg)
	l.command = "browser --new-tab"

	var got *exec.Cmd
	l.start = func(cmd *exec.Cmd) error {
		got = cmd
		return nil
	}

	if err := l.Open("docs.rs/serde"); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a command to be started")
	}

	args := got.Args
	if runtime.GOOS == "windows" {
		return
	}
	want := []string{"browser", "--new-tab", "https://docs.rs/serde"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestOpenRejectsUnsafeLinks(t *testing.T) {
	l := NewLauncher(config.TestConfig())
	l.start = func(*exec.Cmd) error {
		t.Error("no command should start for an unsafe link")
		return nil
	}

	for _, link := range []string{"", "file:///etc/passwd", "http://localhost/x", "https://docs.rs/<x>"} {
		if err := l.Open(link); err == nil {
			t.Errorf("Open(%q) expected error", link)
		}
	}
}

func TestOpenReportsStartFailure(t *testing.T) {
	l := NewLauncher(config.TestConfig())
	l.command = "missing-opener"
	l.start = func(*exec.Cmd) error { return errors.New("not found") }

	if err := l.Open("https://crates.io/crates/serde"); err == nil {
		t.Error("expected error when the opener fails to start")
	}
}

func TestOpenWithoutCommand(t *testing.T) {
	l := NewLauncher(config.TestConfig())
	l.command = ""

	if err := l.Open("https://crates.io/crates/serde"); err == nil {
		t.Error("expected error with no opener")
	}
}

func TestFindCommand(t *testing.T) {
	if got := findCommand(); got != "" {
		t.Errorf("findCommand() with no candidates = %q", got)
	}
	if got := findCommand("definitely-not-a-real-command-xyz"); got != "" {
		t.Errorf("findCommand() for missing binary = %q", got)
	}
	if runtime.GOOS != "windows" {
		if got := findCommand("definitely-not-a-real-command-xyz", "sh -c"); got != "sh -c" {
			t.Errorf("findCommand() = %q, want %q", got, "sh -c")
		}
	}
}
