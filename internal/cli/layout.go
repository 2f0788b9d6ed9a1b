package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/graph"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
)

// layoutFlags holds the layout command's flag values.
type layoutFlags struct {
	output   string
	format   string
	forms    bool
	preview  bool
	detailed bool
	noCache  bool
	refresh  bool

	rankSep float64
	nodeSep float64
	marginX float64
	marginY float64
	strict  bool
}

// overrides returns the layout options whose flags were set explicitly.
func (f *layoutFlags) overrides(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	set := func(flag, key string, v any) {
		if cmd.Flags().Changed(flag) {
			m[key] = v
		}
	}
	set("rank-sep", "rank_sep", f.rankSep)
	set("node-sep", "node_sep", f.nodeSep)
	set("margin-x", "margin_x", f.marginX)
	set("margin-y", "margin_y", f.marginY)
	set("strict", "strict", f.strict)
	return m
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout <graph-file>",
		Short: "Compute a grid layout for a flow graph",
		Long: `Compute a grid layout for a flow graph.

The input is a graph document (.json, .toml, .yaml, .hcl), or with --forms a
page/form routing definition (.json, .yaml). The output is the layout as JSON,
or as Graphviz DOT with pinned node positions (--format dot).

Layout options come from the defaults, the [layout] section of the config
file, the graph's own "options" block and finally the flags below.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], f, f.overrides(cmd))
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", `output file, "-" for stdout (default: <input>.layout.<format>)`)
	cmd.Flags().StringVarP(&f.format, "format", "f", pipeline.DefaultFormat, "output format: json, dot")
	cmd.Flags().BoolVar(&f.forms, "forms", false, "read the input as a page/form routing definition")
	cmd.Flags().BoolVar(&f.preview, "preview", false, "print the occupancy grid")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "add rank, column and metadata to DOT labels")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if cached")

	cmd.Flags().Float64Var(&f.rankSep, "rank-sep", 0, "vertical gap between ranks")
	cmd.Flags().Float64Var(&f.nodeSep, "node-sep", 0, "horizontal gap between columns")
	cmd.Flags().Float64Var(&f.marginX, "margin-x", 0, "left and right margin")
	cmd.Flags().Float64Var(&f.marginY, "margin-y", 0, "top and bottom margin")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when a node is placed on an occupied cell")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, f layoutFlags, overrides map[string]any) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)

	var doc graph.Graph
	if f.forms {
		doc, err = runner.ReadFlowFile(ctx, input)
	} else {
		doc, err = runner.ReadFile(ctx, input)
	}
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Format:    f.format,
		Layout:    cfg.Layout,
		Overrides: overrides,
		Detailed:  f.detailed,
		Refresh:   f.refresh,
		Logger:    c.Logger,
	}
	result, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done("Laid out " + filepath.Base(input))

	outputPath := f.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout." + opts.Format
	}

	if outputPath == "-" {
		if _, err := os.Stdout.Write(result.Artifact); err != nil {
			return err
		}
		if f.preview {
			fmt.Fprintln(os.Stderr, renderPreview(result.Layout))
		}
		return nil
	}

	if err := flowerrors.ValidatePath(outputPath); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, result.Artifact, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	l := result.Layout
	printStats(len(l.Nodes), l.Stats.Ranks, l.Stats.Crossings, result.CacheInfo.LayoutHit)
	if l.Stats.Blocked > 0 {
		printWarning("%d node(s) had no unblocked column and were placed in column 0", l.Stats.Blocked)
	}
	if f.preview {
		printNewline()
		fmt.Println(renderPreview(l))
	}
	if opts.Format == pipeline.FormatDOT {
		printNewline()
		svg := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".svg"
		printNextStep("Render", fmt.Sprintf("neato -n2 -Tsvg %s -o %s", outputPath, svg))
	}
	return nil
}
