package infrastructure

import "github.com/alessio/shellescape"

// CommandLine renders a command and its arguments as a shell-safe string
// for logging. Commands are never run through a shell.
func CommandLine(binary string, args ...string) string {
	return shellescape.QuoteCommand(append([]string{binary}, args...))
}
