package handlers

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/vmfleet/vmfleet/internal/config"
)

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// promptPassword interactively asks for the endpoint password.
	promptPassword = askPassword

	// stdinIsTTY reports whether an interactive prompt is possible.
	stdinIsTTY = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

// resolvePassword fills the connection password, prompting interactively
// when the flag and defaults file left it empty. Without a terminal there
// is nothing to prompt on and the run fails before connecting.
func resolvePassword(conn *config.Connection) error {
	if conn.Password != "" {
		return nil
	}
	if !stdinIsTTY() {
		return fmt.Errorf("no password given and stdin is not a terminal, use --password")
	}

	password, err := promptPassword(conn.User, conn.Host)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("empty password")
	}
	conn.Password = password
	return nil
}

// askPassword prompts for a password without echoing it.
func askPassword(user, host string) (string, error) {
	var password string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Password for %s@%s", user, host)).
			EchoMode(huh.EchoModePassword).
			Value(&password),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return password, nil
}
