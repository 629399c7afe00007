package main

import (
	"fmt"
	"io"

	"capycop/internal/observ"
)

// printTimings writes the phase table, or one line per phase when the
// timer saw a single phase only.
func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	report := timer.Report()
	if len(report.Phases) == 0 {
		return
	}
	if len(report.Phases) == 1 {
		p := report.Phases[0]
		if _, err := fmt.Fprintf(out, "%s %.1f ms\n", p.Name, p.DurationMS); err != nil {
			panic(err)
		}
		return
	}
	if _, err := io.WriteString(out, timer.Summary()); err != nil {
		panic(err)
	}
}
