package diag

import "strings"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevConvention marks style offenses, the default for rules.
	SevConvention
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevConvention:
		return "CONVENTION"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Letter is the one-letter tag used by the short output format.
func (s Severity) Letter() string {
	switch s {
	case SevInfo:
		return "I"
	case SevConvention:
		return "C"
	case SevWarning:
		return "W"
	case SevError:
		return "E"
	}
	return "?"
}

// ParseSeverity accepts the lowercase names used in configuration.
func ParseSeverity(name string) (Severity, bool) {
	switch strings.ToLower(name) {
	case "info":
		return SevInfo, true
	case "convention":
		return SevConvention, true
	case "warning":
		return SevWarning, true
	case "error":
		return SevError, true
	}
	return SevInfo, false
}
