package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.TrimSpace(strings.ToLower(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides on the progress view. In auto mode it needs both
// streams on a terminal: diagnostics go to stdout, the view to stderr.
func shouldUseTUI(mode uiMode) bool {
	return useTUI(mode, isTerminal(os.Stdout) && isTerminal(os.Stderr))
}

func useTUI(mode uiMode, tty bool) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return tty
	}
}
