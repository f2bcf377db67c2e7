// Package analysis aggregates the results of repeated runs.
package analysis

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/boxstack/simulation"
)

// Summary describes a batch of runs.
type Summary struct {
	Runs      int            `json:"runs"       yaml:"runs"`
	Completed int            `json:"completed"  yaml:"completed"`
	Failed    int            `json:"failed"     yaml:"failed"`
	Reasons   map[string]int `json:"reasons"    yaml:"reasons"`
	Ticks     Distribution   `json:"ticks"      yaml:"ticks"`
	Stacks    Distribution   `json:"stacks"     yaml:"stacks"`
	// CompletedTicks covers only the runs that reached their target.
	CompletedTicks Distribution `json:"completed_ticks" yaml:"completed_ticks"`
}

// CompletionRate returns the share of runs that reached their target.
func (s Summary) CompletionRate() float64 {
	if s.Runs == 0 {
		return 0
	}

	return float64(s.Completed) / float64(s.Runs)
}

// Distribution holds the moments and quantiles of one measurement.
type Distribution struct {
	N      int     `json:"n"      yaml:"n"`
	Mean   float64 `json:"mean"   yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	Min    float64 `json:"min"    yaml:"min"`
	Median float64 `json:"median" yaml:"median"`
	Max    float64 `json:"max"    yaml:"max"`
}

// Describe computes the distribution of xs. The slice is sorted in place.
// An empty slice gives the zero Distribution, and a single value has no
// spread.
func Describe(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}

	sort.Float64s(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 || math.IsNaN(std) {
		std = 0
	}

	return Distribution{
		N:      len(xs),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(xs),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
		Max:    floats.Max(xs),
	}
}

// Summarize aggregates results.
func Summarize(results []simulation.Result) Summary {
	s := Summary{
		Runs:    len(results),
		Reasons: make(map[string]int),
	}

	ticks := make([]float64, 0, len(results))
	stacks := make([]float64, 0, len(results))
	var completedTicks []float64

	for _, r := range results {
		s.Reasons[r.HaltReason.String()]++

		if r.Error != "" {
			s.Failed++
			continue
		}

		ticks = append(ticks, float64(r.Ticks))
		stacks = append(stacks, float64(r.CompletedStacks))

		if r.Completed() {
			s.Completed++
			completedTicks = append(completedTicks, float64(r.Ticks))
		}
	}

	s.Ticks = Describe(ticks)
	s.Stacks = Describe(stacks)
	s.CompletedTicks = Describe(completedTicks)

	return s
}

// WriteTable prints the summary as an aligned table.
func (s Summary) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "runs\t%d\n", s.Runs)
	fmt.Fprintf(tw, "completed\t%d (%.1f%%)\n", s.Completed, 100*s.CompletionRate())
	fmt.Fprintf(tw, "failed\t%d\n", s.Failed)

	reasons := make([]string, 0, len(s.Reasons))
	for r := range s.Reasons {
		reasons = append(reasons, r)
	}

	sort.Strings(reasons)

	for _, r := range reasons {
		fmt.Fprintf(tw, "halt %s\t%d\n", r, s.Reasons[r])
	}

	fmt.Fprintln(tw, "\tmean\tstddev\tmin\tmedian\tmax")
	writeRow(tw, "ticks", s.Ticks)
	writeRow(tw, "stacks", s.Stacks)
	writeRow(tw, "ticks to complete", s.CompletedTicks)

	return tw.Flush()
}

func writeRow(w io.Writer, name string, d Distribution) {
	fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.0f\t%.1f\t%.0f\n",
		name, d.Mean, d.StdDev, d.Min, d.Median, d.Max)
}
