package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// useColor is resolved once per invocation from --color.
var useColor bool

func readColorMode(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "", nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func setupColor(cmd *cobra.Command) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err = readColorMode(colorFlag)
	if err != nil {
		return err
	}
	color.NoColor = !useColor
	return nil
}
