package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/pedigree/pkg/io"
	"github.com/matzehuels/pedigree/pkg/pipeline"
)

// batchCommand creates the batch command for laying out many pedigrees.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		outDir      string
		concurrency int
		flags       layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "batch [pedigree files...]",
		Short: "Lay out several pedigree files concurrently",
		Long: `Lay out several pedigree files concurrently.

Every file is read and laid out independently with the same options; a file
that fails to load or lay out is reported and does not stop the others. Each
layout is written next to its input as <input>.layout.json unless --out-dir
is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("concurrency") {
				concurrency = c.Config.Batch.concurrency()
			}
			opts := flags.options(cmd, c.Config.Layout)
			return c.runBatch(cmd.Context(), args, opts, outDir, concurrency, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "d", "", "directory for layout files (default: next to each input)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", pipeline.DefaultConcurrency, "number of layouts computed at once")
	flags.register(cmd)

	return cmd
}

// batchItem tracks one input through loading, layout and export.
type batchItem struct {
	input  string
	output string
	data   *pio.Data
	err    error
}

func (c *CLI) runBatch(ctx context.Context, inputs []string, opts pipeline.Options, outDir string, concurrency int, noCache bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	items := make([]batchItem, len(inputs))
	var reqs []pipeline.Request
	var index []int
	for i, input := range inputs {
		items[i] = batchItem{input: input, output: batchOutput(input, outDir)}
		data, err := pio.ReadFile(input)
		if err != nil {
			items[i].err = fmt.Errorf("load pedigree: %w", err)
			continue
		}
		items[i].data = data
		req := pipeline.Request{
			Name:     filepath.Base(input),
			Pedigree: data.Pedigree,
			Hints:    data.Hints,
			Options:  opts,
		}
		reqs = append(reqs, req)
		index = append(index, i)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d pedigrees...", len(reqs)))
	spinner.Start()
	results, errs := runner.Batch(ctx, reqs, concurrency)
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for k, i := range index {
		it := &items[i]
		if errs[k] != nil {
			it.err = fmt.Errorf("compute layout: %w", errs[k])
			continue
		}
		res := results[k]
		if err := pio.ExportLayout(it.output, it.data.Pedigree, res.Layout, &res.Scaling); err != nil {
			it.err = fmt.Errorf("write output: %w", err)
		}
	}

	failed := 0
	for _, it := range items {
		if it.err != nil {
			failed++
			printError("%s: %v", it.input, it.err)
			continue
		}
		printFile(it.output)
	}
	prog.done(fmt.Sprintf("Laid out %d of %d pedigrees", len(items)-failed, len(items)))

	if failed > 0 {
		printWarning("%d of %d pedigrees failed", failed, len(items))
		return fmt.Errorf("%d pedigrees failed", failed)
	}
	printSuccess("Batch complete")
	return nil
}

// batchOutput places the layout of input in dir, or next to input.
func batchOutput(input, dir string) string {
	out := defaultOutput(input)
	if dir == "" {
		return out
	}
	return filepath.Join(dir, filepath.Base(out))
}
