package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/pedigree/pkg/io"
	"github.com/matzehuels/pedigree/pkg/pedigree/depth"
)

// depthCommand creates the depth command, which prints generation rows.
func (c *CLI) depthCommand() *cobra.Command {
	var (
		align   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "depth [pedigree.json|pedigree.toml]",
		Short: "Print the generation of every individual",
		Long: `Print the generation of every individual.

Founders start at generation 0 and every child sits one generation below its
deeper parent. With --align (the default) married couples are moved onto the
same generation when that can be done without breaking the parent/child
order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("align") {
				align = !c.Config.Layout.SeparateSpouses
			}
			return c.runDepth(cmd.Context(), args[0], align, noCache)
		},
	}

	cmd.Flags().BoolVar(&align, "align", true, "draw spouses on the same generation row")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runDepth(ctx context.Context, input string, align, noCache bool) error {
	data, err := pio.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load pedigree %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	level, cacheHit, err := runner.DepthWithCacheInfo(ctx, data.Pedigree, align)
	if err != nil {
		return fmt.Errorf("compute depth: %w", err)
	}

	fmt.Println(generationTable(data.Pedigree, level))
	printDetail("%d individuals in %d generations", data.Pedigree.Len(), depth.Generations(level))
	if cacheHit {
		printDetail("%s", iconCached)
	}
	return nil
}
