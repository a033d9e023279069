package version

import (
	"fmt"

	"github.com/fatih/color"
)

// Build information for the srcdef CLI. Overridable via -ldflags.
var (
	Version    = "0.1.0-dev"
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = ""
)

var (
	nameColor    = color.New(color.FgCyan, color.Bold)
	versionColor = color.New(color.FgGreen, color.Bold)
	faintColor   = color.New(color.Faint)
)

// String renders the version line; colors follow color.NoColor.
func String() string {
	s := nameColor.Sprint("srcdef") + " " + versionColor.Sprint(Version)
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		s += faintColor.Sprintf(" (%s)", commit)
	}
	if BuildDate != "" {
		s += faintColor.Sprintf(" built %s", BuildDate)
	}
	return s
}

// Details lists all known build fields, one per line.
func Details() string {
	out := fmt.Sprintf("version: %s\n", Version)
	if GitCommit != "" {
		out += fmt.Sprintf("commit:  %s\n", GitCommit)
	}
	if GitMessage != "" {
		out += fmt.Sprintf("message: %s\n", GitMessage)
	}
	if BuildDate != "" {
		out += fmt.Sprintf("built:   %s\n", BuildDate)
	}
	return out
}
