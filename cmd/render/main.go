// Command render draws one chart from a stats payload to a file, or prints
// the tooltip a chart would show at a given date and value.
//
// Usage:
//
//	render --url https://host/stats.json --value hp --format svg -o hp.svg
//	render hover --url https://host/stats.json --value hp --date 01/02/2024 --at 1500
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"statchart/internal/graph"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagURL     string
	flagEntity  string
	flagValue   string
	flagTitle   string
	flagFilter  string
	flagMissing string
	flagWidth   int
	flagHeight  int
	flagRound   float64
	flagTight   bool
	flagTimeout time.Duration
	flagVerbose bool

	flagFormat string
	flagOutput string

	flagDate string
	flagAt   float64
)

var rootCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a time-series chart from a stats payload",
	Long: `Fetches a stats payload, selects series by entity and/or value key and
writes the chart as png, svg, html or json.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
	RunE: runRender,
}

var hoverCmd = &cobra.Command{
	Use:   "hover",
	Short: "Print the tooltip nearest to a date and value",
	Args:  cobra.NoArgs,
	RunE:  runHover,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagURL, "url", "", "stats payload url (required)")
	pf.StringVar(&flagEntity, "entity", "", "entity id")
	pf.StringVar(&flagValue, "value", "", "value key")
	pf.StringVar(&flagTitle, "title", "", "chart title override")
	pf.StringVar(&flagFilter, "filter", "", "filters, e.g. active,top:5,since:01/01/2024")
	pf.StringVar(&flagMissing, "missing", "gap", "entities lacking the value key: gap or drop")
	pf.IntVar(&flagWidth, "width", graph.DefaultWidth, "chart width")
	pf.IntVar(&flagHeight, "height", graph.DefaultHeight, "chart height")
	pf.Float64Var(&flagRound, "round", graph.DefaultRoundingUnit, "rounding unit of a tight value axis")
	pf.BoolVar(&flagTight, "tight", false, "fit the value axis to the data instead of starting at zero")
	pf.DurationVar(&flagTimeout, "timeout", 15*time.Second, "fetch timeout")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("url")

	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", "png", "png, svg, html or json")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default chart.<format>)")

	hoverCmd.Flags().StringVar(&flagDate, "date", "", "date as MM/DD/YYYY (required)")
	hoverCmd.Flags().Float64Var(&flagAt, "at", 0, "value under the pointer")
	_ = hoverCmd.MarkFlagRequired("date")

	rootCmd.AddCommand(hoverCmd)
}

// options validates the flags the same way the HTTP API validates
// parameters.
func options() (graph.Options, error) {
	q := url.Values{}
	q.Set("url", flagURL)
	q.Set("entity", flagEntity)
	q.Set("value", flagValue)
	q.Set("title", flagTitle)
	q.Set("filter", flagFilter)
	q.Set("missing", flagMissing)
	q.Set("width", strconv.Itoa(flagWidth))
	q.Set("height", strconv.Itoa(flagHeight))
	q.Set("round", strconv.FormatFloat(flagRound, 'f', -1, 64))
	q.Set("tight", strconv.FormatBool(flagTight))
	return graph.OptionsFromQuery(q)
}

func runRender(cmd *cobra.Command, args []string) error {
	format, err := graph.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	o, err := options()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	b := graph.NewBuilder(graph.NewFetcher(flagTimeout))
	img, err := b.Chart(ctx, o, format)
	if err != nil {
		return err
	}
	out := flagOutput
	if out == "" {
		out = "chart." + string(format)
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(img))
	return nil
}

func runHover(cmd *cobra.Command, args []string) error {
	at, err := graph.ParseDate(flagDate)
	if err != nil {
		return err
	}
	o, err := options()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	d, err := graph.NewBuilder(graph.NewFetcher(flagTimeout)).Data(ctx, o)
	if err != nil {
		return err
	}
	tip, err := graph.NewHoverController(d).Move(at, flagAt)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", graph.FormatDate(tip.Date), tip.Label)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
