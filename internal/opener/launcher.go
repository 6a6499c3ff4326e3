// Package opener hands crate links to the desktop's URL handler.
package opener

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/cratuity/internal/config"
	"github.com/pders01/cratuity/internal/debuglog"
	"github.com/pders01/cratuity/internal/validation"
)

// fallbacks are tried in order when the configured opener is missing.
var fallbacks = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open", "sensible-browser", "x-www-browser", "www-browser"},
	"freebsd": {"xdg-open"},
}

type Launcher struct {
	command   string
	validator *validation.LinkValidator
	start     func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	command := strings.TrimSpace(cfg.Opener.Command)
	if command == "" || (runtime.GOOS != "windows" && findCommand(command) == "") {
		if found := findCommand(fallbacks[runtime.GOOS]...); found != "" {
			command = found
		}
	}

	return &Launcher{
		command:   command,
		validator: validation.NewLinkValidator(),
		start:     startDetached,
	}
}

// Command returns the opener that will be executed.
func (l *Launcher) Command() string {
	return l.command
}

// Open validates link and launches the opener on it without waiting.
func (l *Launcher) Open(link string) error {
	normalized, err := l.validator.ValidateAndNormalize(link)
	if err != nil {
		return fmt.Errorf("refusing to open %q: %w", link, err)
	}

	if l.command == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd := l.buildCommand(normalized)
	debuglog.Debugf("opening %s with %s", normalized, l.command)

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.command, err)
	}
	return nil
}

func (l *Launcher) buildCommand(link string) *exec.Cmd {
	if runtime.GOOS == "windows" && l.command == "start" {
		return exec.Command("cmd", "/c", "start", "", link)
	}

	fields := strings.Fields(l.command)
	args := append(fields[1:], link)
	return exec.Command(fields[0], args...)
}

// startDetached starts GUI applications without blocking on them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		fields := strings.Fields(cmd)
		if len(fields) == 0 {
			continue
		}
		if _, err := exec.LookPath(fields[0]); err == nil {
			return cmd
		}
	}
	return ""
}
