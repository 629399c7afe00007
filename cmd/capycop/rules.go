package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"capycop/internal/rule"
	"capycop/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in rules and their effective settings",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type rulePayload struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Enabled         bool     `json:"enabled"`
	Severity        string   `json:"severity"`
	SafeAutocorrect bool     `json:"safe_autocorrect"`
	Params          []string `json:"params,omitempty"`
}

var (
	ruleNameStyle     = lipgloss.NewStyle().Bold(true)
	ruleDisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	registry, errs := rules.Builtin(cfg.RuleSettings())
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "capycop: %v\n", e)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return renderRulesJSON(out, registry.All())
	}
	renderRulesPretty(out, registry.All())
	return nil
}

func renderRulesJSON(out io.Writer, all []*rule.Rule) error {
	payload := make([]rulePayload, 0, len(all))
	for _, rl := range all {
		payload = append(payload, rulePayload{
			Name:            rl.Name,
			Description:     rl.Description,
			Enabled:         rl.Enabled,
			Severity:        strings.ToLower(rl.Severity.String()),
			SafeAutocorrect: rl.SafeAutocorrect,
			Params:          rl.Params,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func renderRulesPretty(out io.Writer, all []*rule.Rule) {
	width := 0
	for _, rl := range all {
		width = max(width, runewidth.StringWidth(rl.Name))
	}
	for _, rl := range all {
		name := runewidth.FillRight(rl.Name, width)
		state := "enabled "
		style := ruleNameStyle
		if !rl.Enabled {
			state = "disabled"
			style = ruleDisabledStyle
		}
		safety := "safe"
		if !rl.SafeAutocorrect {
			safety = "unsafe"
		}
		if !useColor {
			style = lipgloss.NewStyle()
		}
		fmt.Fprintf(out, "%s  %s  %-10s %-6s %s\n",
			style.Render(name), state, strings.ToLower(rl.Severity.String()), safety, rl.Description)
		if len(rl.Params) > 0 {
			fmt.Fprintf(out, "%s  params: %s\n", strings.Repeat(" ", width), strings.Join(rl.Params, ", "))
		}
	}
}
