// Command colidx is the CLI surface over the indexing engine: index builds
// and reports the shape of one or more delimited files, cell fetches a
// single value, view opens an interactive terminal browser, and chart
// renders a per-worker scan report. It replaces the teacher's hand-rolled
// flag/switch dispatch (src/go/cmd/csvquery) with a github.com/urfave/cli/v2
// application, in the style of ChristianF88/cidrx's src/cli/cli.go.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/colidx/colidx/internal/chart"
	"github.com/colidx/colidx/internal/collection"
	"github.com/colidx/colidx/internal/dialect"
	"github.com/colidx/colidx/internal/sourceindex"
	"github.com/colidx/colidx/internal/tempspill"
	"github.com/colidx/colidx/internal/viewer"
)

var (
	delimFlag = &cli.StringFlag{Name: "delim", Value: ",", Usage: "field delimiter (may be multi-byte)"}
	quoteFlag = &cli.StringFlag{Name: "quote", Value: `"`, Usage: "quote character, empty to disable quoting"}
	presetFlag = &cli.StringFlag{Name: "preset", Usage: "load dialect from a TOML preset file"}
	savePresetFlag = &cli.StringFlag{Name: "save-preset", Usage: "write the resolved dialect out as a TOML preset file and continue"}
	noHeaderFlag = &cli.BoolFlag{Name: "no-header", Usage: "treat the first row as data, not a header"}
	trimWSFlag = &cli.BoolFlag{Name: "trim-ws", Usage: "trim spaces/tabs at field edges outside quotes"}
	threadsFlag = &cli.IntFlag{Name: "threads", Usage: "worker count (default: number of CPUs)"}
	skipLinesFlag = &cli.IntFlag{Name: "skip-lines", Usage: "raw lines to discard before the header/data"}
	commentFlag = &cli.StringFlag{Name: "comment", Usage: "comment character; lines starting with it are skipped"}
	escapeBackslashFlag = &cli.BoolFlag{Name: "escape-backslash", Usage: `treat \X as literal X`}
)

func resolveDialect(c *cli.Context) (dialect.Config, error) {
	cfg, err := loadOrBuildDialect(c)
	if err != nil {
		return dialect.Config{}, err
	}

	if out := c.String("save-preset"); out != "" {
		if err := dialect.SavePreset(out, cfg); err != nil {
			return dialect.Config{}, fmt.Errorf("saving preset: %w", err)
		}
	}

	return cfg, nil
}

func loadOrBuildDialect(c *cli.Context) (dialect.Config, error) {
	if p := c.String("preset"); p != "" {
		cfg, err := dialect.LoadPreset(p)
		if err != nil {
			return dialect.Config{}, fmt.Errorf("loading preset: %w", err)
		}
		return cfg, nil
	}

	cfg := dialect.Default()
	cfg.Delim = []byte(c.String("delim"))
	if q := c.String("quote"); q != "" {
		cfg.Quote = q[0]
	} else {
		cfg.Quote = 0
	}
	cfg.HasHeader = !c.Bool("no-header")
	cfg.TrimWS = c.Bool("trim-ws")
	cfg.EscapeBackslash = c.Bool("escape-backslash")
	cfg.SkipLines = c.Int("skip-lines")
	if cm := c.String("comment"); cm != "" {
		cfg.HasComment = true
		cfg.CommentChar = cm[0]
	}
	if t := c.Int("threads"); t > 0 {
		cfg.NumThreads = t
	}
	if err := cfg.Validate(); err != nil {
		return dialect.Config{}, err
	}
	return cfg, nil
}

// resolvePaths spills "-" (stdin) into a temp file via tempspill so every
// downstream Open sees a plain file path, per SPEC_FULL.md §6's contract for
// non-file input. It returns a cleanup func that removes any spilled files;
// callers must run it after the sources built from paths are closed.
func resolvePaths(paths []string) ([]string, func(), error) {
	resolved := make([]string, len(paths))
	var spilled []*tempspill.File

	cleanup := func() {
		for _, f := range spilled {
			f.Close()
		}
	}

	for i, p := range paths {
		if p != "-" {
			resolved[i] = p
			continue
		}
		f, err := tempspill.Spill("", os.Stdin)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("spilling stdin: %w", err)
		}
		spilled = append(spilled, f)
		resolved[i] = f.Path()
	}

	return resolved, cleanup, nil
}

func dialectFlags() []cli.Flag {
	return []cli.Flag{
		delimFlag, quoteFlag, presetFlag, savePresetFlag, noHeaderFlag, trimWSFlag,
		threadsFlag, skipLinesFlag, commentFlag, escapeBackslashFlag,
	}
}

func runIndex(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: colidx index [flags] FILE...")
	}
	cfg, err := resolveDialect(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	paths, cleanup, err := resolvePaths(c.Args().Slice())
	if err != nil {
		return err
	}
	defer cleanup()

	coll, err := collection.Open(ctx, paths, cfg)
	if err != nil {
		return err
	}
	defer coll.Close()

	fmt.Printf("sources:  %v\n", coll.Filenames())
	fmt.Printf("rows:     %d\n", coll.NumRows())
	fmt.Printf("columns:  %d\n", coll.NumColumns())
	fmt.Printf("row sizes: %v\n", coll.RowSizes())
	return nil
}

func runCell(c *cli.Context) error {
	if c.NArg() < 3 {
		return fmt.Errorf("usage: colidx cell [flags] FILE ROW COL")
	}
	cfg, err := resolveDialect(c)
	if err != nil {
		return err
	}

	path := c.Args().Get(0)
	row, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid row: %w", err)
	}
	col, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return fmt.Errorf("invalid col: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	paths, cleanup, err := resolvePaths([]string{path})
	if err != nil {
		return err
	}
	defer cleanup()

	idx, err := sourceindex.Open(ctx, paths[0], cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	dec := sourceindex.NewDecoder(idx)
	fmt.Println(dec.String(row, col))
	return nil
}

func runView(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: colidx view [flags] FILE...")
	}
	cfg, err := resolveDialect(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	paths, cleanup, err := resolvePaths(c.Args().Slice())
	if err != nil {
		return err
	}
	defer cleanup()

	coll, err := collection.Open(ctx, paths, cfg)
	if err != nil {
		return err
	}
	defer coll.Close()

	return viewer.Run(coll)
}

func runChart(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: colidx chart [flags] FILE")
	}
	cfg, err := resolveDialect(c)
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		out = "colidx-chart.html"
	}

	ctx, cancel := signalContext()
	defer cancel()

	paths, cleanup, err := resolvePaths([]string{c.Args().Get(0)})
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := chart.Collect(ctx, paths[0], cfg)
	if err != nil {
		return err
	}
	if err := chart.Render(report, out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM instead of the
// process being killed outright; builder.Build checks it once, after its
// parallel scan, per SPEC_FULL.md §5.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	app := &cli.App{
		Name:  "colidx",
		Usage: "lazy columnar indexing over delimited text files",
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "build and report the shape of one or more delimited files",
				Flags:  dialectFlags(),
				Action: runIndex,
			},
			{
				Name:   "cell",
				Usage:  "print one decoded cell value",
				Flags:  dialectFlags(),
				Action: runCell,
			},
			{
				Name:   "view",
				Usage:  "open an interactive terminal table browser",
				Flags:  dialectFlags(),
				Action: runView,
			},
			{
				Name:  "chart",
				Usage: "render an HTML bar chart of per-worker scan stats",
				Flags: append(dialectFlags(), &cli.StringFlag{
					Name:  "out",
					Usage: "output HTML path (default colidx-chart.html)",
				}),
				Action: runChart,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "colidx:", err)
		os.Exit(1)
	}
}
