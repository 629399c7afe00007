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

// autoUIThreshold is the file count from which auto mode shows progress.
// Smaller runs finish before the UI would render a frame.
const autoUIThreshold = 20

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether to draw progress. The UI goes to stderr,
// so machine-readable output on stdout is never mixed with it.
func shouldUseTUI(mode uiMode, files int, machineOutput bool) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return !machineOutput && files >= autoUIThreshold && isTerminal(os.Stderr)
	}
}
