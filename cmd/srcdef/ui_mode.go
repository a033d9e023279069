package main

import (
	"fmt"
	"os"
	"strings"

	"srcdef/internal/driver"
)

// uiMode selects the bubbletea progress view of `srcdef index`.
type uiMode uint8

const (
	uiModeAuto uiMode = iota
	uiModeOn
	uiModeOff
)

var uiModeNames = [...]string{uiModeAuto: "auto", uiModeOn: "on", uiModeOff: "off"}

func (m uiMode) String() string { return uiModeNames[m] }

func readUIMode(value string) (uiMode, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return uiModeAuto, nil
	}
	for m, name := range uiModeNames {
		if name == v {
			return uiMode(m), nil
		}
	}
	return uiModeAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// progressView reports whether indexing should draw progress. The view
// renders to stderr and only accompanies the pretty report; auto also
// stays quiet under CI.
func (m uiMode) progressView(format driver.Format, stderr *os.File) bool {
	if format != driver.FormatPretty {
		return false
	}
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return isTerminal(stderr) && os.Getenv("CI") == ""
}
