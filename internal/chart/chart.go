// Package chart renders an HTML bar chart of bytes scanned per worker from
// a ParallelIndexBuilder run, exercising the same per-worker statistics the
// teacher's printStatus terminal reporter prints (internal/indexer/indexer.go),
// per SPEC_FULL.md §2.2. It is grounded on ChristianF88/cidrx's
// src/output/heatmap.go for the go-echarts page/chart/render idiom.
package chart

import (
	"context"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/colidx/colidx/internal/builder"
	"github.com/colidx/colidx/internal/dialect"
	"github.com/colidx/colidx/internal/mmapsrc"
)

// Report is the per-worker scan summary a ParallelIndexBuilder run produces.
type Report struct {
	Path       string
	Rows       int
	Columns    int
	ChunkBytes []int64
}

// Collect opens path, runs ParallelIndexBuilder over it, and returns the
// per-worker byte counts as a Report, without keeping the memory map open
// afterward.
func Collect(ctx context.Context, path string, cfg dialect.Config) (Report, error) {
	src, err := mmapsrc.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer src.Close()

	res, err := builder.Build(ctx, src, cfg)
	if err != nil {
		return Report{}, err
	}

	return Report{Path: path, Rows: res.Rows, Columns: res.Columns, ChunkBytes: res.ChunkBytes}, nil
}

// Render writes an HTML bar chart of r.ChunkBytes to outPath.
func Render(r Report, outPath string) error {
	workers := make([]string, len(r.ChunkBytes))
	values := make([]opts.BarData, len(r.ChunkBytes))
	for i, b := range r.ChunkBytes {
		workers[i] = fmt.Sprintf("worker %d", i)
		values[i] = opts.BarData{Value: b}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "colidx scan report",
			Theme:     types.ThemeVintage,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Bytes scanned per worker — %s", r.Path),
			Subtitle: fmt.Sprintf("%d rows, %d columns", r.Rows, r.Columns),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "worker"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "bytes"}),
	)
	bar.SetXAxis(workers).AddSeries("bytes scanned", values)

	page := components.NewPage()
	page.AddCharts(bar)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating chart file %s: %w", outPath, err)
	}
	defer f.Close()

	return page.Render(f)
}
