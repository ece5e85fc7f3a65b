package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ritzau/pipe-analyzer/pkg/analysis"
)

// PrintReport prints the result table, the system summary and any data
// integrity warnings with colors.
func PrintReport(w io.Writer, res *analysis.Result) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	params := res.Params

	bold.Fprintln(w, "Pipe Network Analysis")
	bold.Fprintln(w, "=====================")
	fmt.Fprintf(w, "Reservoir: elevation %.2f m, total head %.2f m\n", params.ReservoirElevation, params.ReservoirTotalHead)
	fmt.Fprintf(w, "Pipes: %d\n\n", len(res.Rows))

	cyan.Fprintf(w, "%-10s %-10s %-10s %10s %10s %10s %10s %8s %10s %8s %8s\n",
		"PIPE", "FROM", "TO", "DIST m", "ELEV m", "HEAD m", "PRESS m", "V m/s", "RE", "D mm", "Q l/s")
	for _, r := range res.Rows {
		fmt.Fprintf(w, "%-10s %-10s %-10s %10.1f %10.2f %10.2f ",
			r.PipeID, r.StartJunction, r.EndJunction, r.DistanceM, r.ElevationM, r.TotalHeadM)

		pressure := green
		if r.PressureHeadM < params.MinPressureHead {
			pressure = red
		}
		pressure.Fprintf(w, "%10.2f ", r.PressureHeadM)

		velocity := fmt.Sprintf("%8.2f", r.Velocity)
		if r.Velocity > params.MaxVelocity {
			yellow.Fprint(w, velocity)
		} else {
			fmt.Fprint(w, velocity)
		}
		fmt.Fprintf(w, " %10.0f %8.0f %8.2f\n", r.Reynolds, r.DiameterMM, r.FlowLPS)
	}
	fmt.Fprintln(w)

	PrintWarnings(w, res)
	PrintSummary(w, res)
}

// PrintSummary prints the system summary block.
func PrintSummary(w io.Writer, res *analysis.Result) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	s := res.Summary
	status := func(ok bool) *color.Color {
		if ok {
			return green
		}
		return red
	}

	bold.Fprintln(w, "SYSTEM SUMMARY:")
	fmt.Fprintf(w, "  Total head loss:     %.2f m\n", s.TotalHeadLoss)
	fmt.Fprintf(w, "  Min pressure head:   %.2f m at %s\n", s.MinPressureHead, s.CriticalNode)
	fmt.Fprintf(w, "  Max velocity:        %.2f m/s\n", s.MaxVelocity)
	status(s.PressureAdequate).Fprintf(w, "  Pressure adequate:   %t (>= %.1f m)\n", s.PressureAdequate, res.Params.MinPressureHead)
	status(s.VelocityAcceptable).Fprintf(w, "  Velocity acceptable: %t (<= %.1f m/s)\n", s.VelocityAcceptable, res.Params.MaxVelocity)

	if s.ConstraintsMet() {
		green.Fprintln(w, "✓ All design constraints are met")
	}
}

// PrintWarnings lists data integrity warnings, if any.
func PrintWarnings(w io.Writer, res *analysis.Result) {
	if len(res.Warnings) == 0 {
		return
	}
	yellow := color.New(color.FgYellow)

	yellow.Fprintf(w, "WARNINGS (%d):\n", len(res.Warnings))
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
	fmt.Fprintln(w)
}
