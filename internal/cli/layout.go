package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/pedigree/pkg/io"
	"github.com/matzehuels/pedigree/pkg/pipeline"
)

// layoutFlags holds the layout flags shared by the layout and batch
// commands. Only flags set on the command line override the config file.
type layoutFlags struct {
	packed       bool
	align        bool
	width        float64
	childWeight  float64
	spouseWeight float64
	plotWidth    float64
	plotHeight   float64
	symbolSize   float64
	labelHeight  float64
	refresh      bool
	noCache      bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.packed, "packed", true, "pack subtrees and refine positions (false centres children instead)")
	fs.BoolVar(&f.align, "align", true, "draw spouses on the same generation row")
	fs.Float64Var(&f.width, "width", pipeline.DefaultWidth, "preferred drawing width in slots")
	fs.Float64Var(&f.childWeight, "child-weight", pipeline.DefaultChildWeight, "pull of children towards their parents")
	fs.Float64Var(&f.spouseWeight, "spouse-weight", pipeline.DefaultSpouseWeight, "pull between spouses")
	fs.Float64Var(&f.plotWidth, "plot-width", pipeline.DefaultPlotWidth, "plot width")
	fs.Float64Var(&f.plotHeight, "plot-height", pipeline.DefaultPlotHeight, "plot height")
	fs.Float64Var(&f.symbolSize, "symbol-size", pipeline.DefaultSymbolSize, "symbol size relative to the largest that fits")
	fs.Float64Var(&f.labelHeight, "label-height", 0, "space reserved below each symbol for labels")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options merges the flags that were set explicitly into base.
func (f *layoutFlags) options(cmd *cobra.Command, base pipeline.Options) pipeline.Options {
	opts := base
	changed := cmd.Flags().Changed
	if changed("packed") {
		opts.Unpacked = !f.packed
	}
	if changed("align") {
		opts.SeparateSpouses = !f.align
	}
	floats := []struct {
		name string
		dst  *float64
		val  float64
	}{
		{"width", &opts.Width, f.width},
		{"child-weight", &opts.ChildWeight, f.childWeight},
		{"spouse-weight", &opts.SpouseWeight, f.spouseWeight},
		{"plot-width", &opts.PlotWidth, f.plotWidth},
		{"plot-height", &opts.PlotHeight, f.plotHeight},
		{"symbol-size", &opts.SymbolSize, f.symbolSize},
		{"label-height", &opts.LabelHeight, f.labelHeight},
	}
	for _, fl := range floats {
		if changed(fl.name) {
			*fl.dst = fl.val
		}
	}
	opts.Refresh = f.refresh
	return opts
}

// layoutCommand creates the layout command for computing pedigree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [pedigree.json|pedigree.toml]",
		Short: "Compute the drawing layout of a pedigree",
		Long: `Compute the drawing layout of a pedigree.

The layout command reads a pedigree file, assigns every individual a
generation, orders each generation row and computes horizontal positions
together with the scaling needed to fit the requested plot. The output is a
layout.json document listing every slot with its position, family link and
marriage marks.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, c.Config.Layout)
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the pedigree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := pio.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load pedigree %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	res, cacheHit, err := runner.LayoutWithCacheInfo(ctx, pipeline.Request{
		Name:     filepath.Base(input),
		Pedigree: data.Pedigree,
		Hints:    data.Hints,
		Options:  opts,
	})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutput(input)
	}
	if err := pio.ExportLayout(outputPath, data.Pedigree, res.Layout, &res.Scaling); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats, cacheHit)
	printNextStep("Generations", appName+" depth "+input)
	return nil
}

// defaultOutput derives <input>.layout.json from the input path.
func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
