package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"capycop/internal/rules"
	"capycop/internal/version"
)

type versionInfo struct {
	Version   string
	GitCommit string
	BuildDate string
	Rules     []string
}

type versionOptions struct {
	format    string
	showHash  bool
	showDate  bool
	showRules bool
}

type versionPayload struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	Tagline   string   `json:"tagline"`
	GitCommit string   `json:"git_commit,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
	Rules     []string `json:"rules,omitempty"`
}

const versionTagline = "one selector is better than two"

var (
	versionFormat    string
	versionShowHash  bool
	versionShowDate  bool
	versionShowRules bool
	versionShowFull  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowRules, "rules", false, "list the built-in rules")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show capycop build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := versionOptions{
			format:    strings.ToLower(versionFormat),
			showHash:  versionShowHash || versionShowFull,
			showDate:  versionShowDate || versionShowFull,
			showRules: versionShowRules || versionShowFull,
		}

		switch opts.format {
		case "pretty", "json":
			// supported
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}

		info := collectVersionInfo()
		if opts.format == "json" {
			return renderVersionJSON(cmd.OutOrStdout(), info, opts)
		}

		renderVersionPretty(cmd.OutOrStdout(), info, opts)
		return nil
	},
}

func collectVersionInfo() versionInfo {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	return versionInfo{
		Version:   v,
		GitCommit: strings.TrimSpace(version.GitCommit),
		BuildDate: strings.TrimSpace(version.BuildDate),
		Rules:     rules.Names(),
	}
}

func renderVersionPretty(out io.Writer, info versionInfo, opts versionOptions) {
	shown := info.Version
	if info.Version == version.Version {
		shown = version.Colored()
	}
	fmt.Fprintf(out, "capycop %s: %s\n", shown, versionTagline)
	if opts.showHash {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(info.GitCommit))
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(info.BuildDate))
	}
	if opts.showRules {
		fmt.Fprintf(out, "rules:  %s\n", strings.Join(info.Rules, ", "))
	}
	if !opts.showHash && !opts.showDate && !opts.showRules {
		fmt.Fprintln(out, "set --hash, --date, --rules or --full for more build trivia")
	}
}

func renderVersionJSON(out io.Writer, info versionInfo, opts versionOptions) error {
	payload := versionPayload{
		Tool:    "capycop",
		Version: info.Version,
		Tagline: versionTagline,
	}
	if opts.showHash {
		payload.GitCommit = valueOrUnknown(info.GitCommit)
	}
	if opts.showDate {
		payload.BuildDate = valueOrUnknown(info.BuildDate)
	}
	if opts.showRules {
		payload.Rules = info.Rules
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
