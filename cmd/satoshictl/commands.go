package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/export/pdf"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/render/radar"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/benchmark"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/scoring"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/share"
)

const defaultBenchmark = "Satoshi"

func newScoreCmd() *cobra.Command {
	var rf ratingFlags
	cmd := &cobra.Command{
		Use:   "score [category=value ...]",
		Short: "Print the weighted score and plain average",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := rf.ratings(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "score:   %d/100\n", scoring.Score(m))
			fmt.Fprintf(out, "average: %.2f/10\n", scoring.Average(m))
			return nil
		},
	}
	rf.bind(cmd)
	return cmd
}

// requirementsFor returns the built-in rows of bench.
func requirementsFor(bench string) ([]gaps.Requirement, error) {
	rows := gaps.ForBenchmark(benchmark.Requirements(benchmark.DefaultBlueprint()), bench)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", benchmark.ErrUnknownBenchmark, bench)
	}
	return rows, nil
}

func newGapsCmd() *cobra.Command {
	var (
		rf    ratingFlags
		bench string
	)
	cmd := &cobra.Command{
		Use:   "gaps [category=value ...]",
		Short: "List what is missing to reach a benchmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := rf.ratings(args)
			if err != nil {
				return err
			}
			rows, err := requirementsFor(bench)
			if err != nil {
				return err
			}
			items := gaps.Compute(m, rows)
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintf(out, "Nothing left: you match %s.\n", bench)
				return nil
			}
			for _, it := range items {
				fmt.Fprintf(out, "%-20s +%-4g (%g -> %g) %s\n", it.Metric.Label(), it.Delta, it.UserHas, it.NeededToReach, it.Detail)
			}
			fmt.Fprintf(out, "total: +%g\n", gaps.TotalDelta(items))
			return nil
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringVarP(&bench, "benchmark", "b", defaultBenchmark, "benchmark name")
	return cmd
}

func newShareCmd() *cobra.Command {
	var (
		rf     ratingFlags
		origin string
	)
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode share codes",
	}
	cmd.PersistentFlags().StringVar(&origin, "origin", "http://localhost:9080", "origin used in generated links")

	encode := &cobra.Command{
		Use:   "encode [category=value ...]",
		Short: "Print the score code and share URL of some ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := rf.ratings(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), share.EncodeScores(m))
			fmt.Fprintln(cmd.OutOrStdout(), share.BuildScoreURL(origin+"/share", m))
			return nil
		},
	}
	rf.bind(encode)

	decode := &cobra.Command{
		Use:   "decode <code-or-url>",
		Short: "Print the ratings held by a score code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := share.DecodeScores(args[0])
			if len(m) == 0 {
				m = share.ReadScores(args[0])
			}
			out := cmd.OutOrStdout()
			for _, c := range category.All() {
				if v, ok := m[c]; ok {
					fmt.Fprintf(out, "%s=%g\n", c, v)
				}
			}
			return nil
		},
	}

	compare := &cobra.Command{
		Use:   "compare <id> [id ...]",
		Short: "Build compare links for up to three profiles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := share.NormalizeIDs(args)
			if len(ids) == 0 {
				return fmt.Errorf("no valid ids in %s", strings.Join(args, " "))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, share.ToCompareCode(ids))
			fmt.Fprintln(out, share.BuildShareURL(origin+"/compare", ids))
			fmt.Fprintln(out, share.BuildShortLink(origin, ids))
			return nil
		},
	}

	ids := &cobra.Command{
		Use:   "ids <code-or-link>",
		Short: "Print the profile ids held by a compare code or link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			var got []string
			switch {
			case strings.Contains(raw, "#"):
				got = share.ReadCodeFromHash(raw)
			case strings.Contains(raw, "="):
				got = share.ReadSharedIDs(raw)
			default:
				got = share.FromCompareCode(raw)
			}
			for _, id := range got {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.AddCommand(encode, decode, compare, ids)
	return cmd
}

// writeTo opens path for writing, or returns stdout when path is "-".
func writeTo(cmd *cobra.Command, path string) (*bufio.Writer, func() error, error) {
	if path == "-" {
		w := bufio.NewWriter(cmd.OutOrStdout())
		return w, w.Flush, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}, nil
}

func newRadarCmd() *cobra.Command {
	var (
		rf     ratingFlags
		ids    []string
		output string
	)
	cmd := &cobra.Command{
		Use:   "radar [category=value ...]",
		Short: "Draw your ratings against benchmarks as SVG",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := rf.ratings(args)
			if err != nil {
				return err
			}
			series := []radar.Series{radar.SeriesFromScores("You", m, "")}
			known := func(id string) bool {
				_, ok := benchmark.ByID(id)
				return ok
			}
			for _, id := range share.ResolveIDs(ids, known) {
				b, _ := benchmark.ByID(id)
				series = append(series, radar.SeriesFromScores(b.Name, b.Scores, ""))
			}

			w, done, err := writeTo(cmd, output)
			if err != nil {
				return err
			}
			radar.Render(w, radar.ScoresChart(series...))
			return done()
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringSliceVar(&ids, "ids", []string{"bm-satoshi"}, "benchmark ids to overlay")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		rf     ratingFlags
		name   string
		bench  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export [category=value ...]",
		Short: "Write the comparison report as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := rf.ratings(args)
			if err != nil {
				return err
			}
			rows, err := requirementsFor(bench)
			if err != nil {
				return err
			}
			if output == "" {
				output = pdf.FileName(name)
			}
			w, done, err := writeTo(cmd, output)
			if err != nil {
				return err
			}
			rep := pdf.Report{
				Name:      name,
				Score:     scoring.Score(m),
				Benchmark: bench,
				Gaps:      gaps.Compute(m, rows),
				Blueprint: benchmark.DefaultBlueprint(),
			}
			if err := pdf.Render(w, rep); err != nil {
				_ = done()
				return err
			}
			if err := done(); err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintln(cmd.ErrOrStderr(), "wrote", output)
			}
			return nil
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringVar(&name, "name", "Anonymous", "candidate name")
	cmd.Flags().StringVarP(&bench, "benchmark", "b", defaultBenchmark, "benchmark name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default <name>_satoshi_report.pdf)")
	return cmd
}
