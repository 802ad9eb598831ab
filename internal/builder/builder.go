// Package builder implements ParallelIndexBuilder: it partitions a
// ByteSource into roughly equal chunks, runs region.Index on each chunk in
// parallel, and splices the per-chunk offset vectors into one ordered,
// row/column-normalized index, per SPEC_FULL.md §4.3. It generalizes
// csvquery's Scanner.Scan/processChunk goroutine-per-chunk pipeline
// (internal/indexer/scanner.go): chunk boundaries are moved forward to the
// byte after the next newline, and a two-pass quote-state reconciliation
// corrects any chunk whose boundary newline sits inside a quoted field.
package builder

import (
	"bytes"
	"context"
	"sync"

	"github.com/colidx/colidx/internal/colerr"
	"github.com/colidx/colidx/internal/dialect"
	"github.com/colidx/colidx/internal/mmapsrc"
	"github.com/colidx/colidx/internal/preamble"
	"github.com/colidx/colidx/internal/region"
)

// Result is the raw product ParallelIndexBuilder hands to the sourceindex
// package for wrapping into a SourceIndex.
type Result struct {
	// DataOffsets is the row-major offset vector for data rows only (the
	// header row, if any, has already been split out into HeaderOffsets).
	DataOffsets []int64
	// HeaderOffsets holds the header row's own offset vector, or nil when
	// the dialect has no header.
	HeaderOffsets []int64
	Columns       int
	Rows          int
	// DataStart is the byte position the first data cell begins at: the
	// Go stand-in for the offsets[-1] sentinel described in SPEC_FULL.md §3.
	DataStart int64
	// HeaderStart is the byte position the header row's first cell begins
	// at (equivalently, where the preamble scanner landed). Unused when
	// there is no header.
	HeaderStart int64
	// ChunkBytes records how many bytes each worker's chunk covered, in
	// worker order, for the chart subcommand's per-worker report.
	ChunkBytes []int64
}

type chunkResult struct {
	offsets []int64
	res     region.Result
}

// Build runs the full ParallelIndexBuilder algorithm over src under cfg.
// ctx is checked once, after the parallel scan and before the serial
// reconciliation pass; region.Index does not observe ctx, so a cancellation
// arriving mid-scan takes effect only after every chunk has been scanned. It
// then aborts with colerr.Cancelled and no partial Result is returned.
func Build(ctx context.Context, src *mmapsrc.ByteSource, cfg dialect.Config) (Result, error) {
	data := src.Data()
	headerStart := preamble.FindFirstLine(data, cfg.SkipLines, cfg.HasComment, cfg.CommentChar)

	if headerStart >= len(data) {
		return Result{DataStart: int64(headerStart)}, nil
	}

	numThreads := cfg.NumThreads
	if numThreads <= 0 {
		numThreads = 1
	}

	// NMax is applied to the grouped rows below, not per chunk.
	scanCfg := cfg
	scanCfg.NMax = dialect.Unlimited

	boundaries := partitionBoundaries(data, headerStart, len(data), numThreads)
	chunks := make([]chunkResult, len(boundaries)-1)
	chunkBytes := make([]int64, len(boundaries)-1)
	for i := range chunkBytes {
		chunkBytes[i] = boundaries[i+1] - boundaries[i]
	}

	var wg sync.WaitGroup
	for i := 0; i < len(boundaries)-1; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var offs []int64
			res := region.Index(data, int(boundaries[i]), int(boundaries[i+1]), 0, scanCfg, false, 0, &offs)
			chunks[i] = chunkResult{offsets: offs, res: res}
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, &colerr.Cancelled{Err: err}
	}

	offsetsAll, endingInQuote, err := reconcile(data, boundaries, chunks, scanCfg)
	if err != nil {
		return Result{}, err
	}

	size := int64(len(data))
	if endingInQuote && !cfg.LenientUnterminatedQuote {
		return Result{}, &colerr.MalformedInput{
			Path:   src.Path(),
			Offset: size,
			Reason: "quoted field left open at end of file",
		}
	}
	if size > 0 && (endingInQuote || data[size-1] != '\n') {
		offsetsAll = append(offsetsAll, size)
	}

	rows := groupRows(offsetsAll, data, size)
	if cfg.NMax > 0 {
		limit := cfg.NMax
		if cfg.HasHeader {
			limit++
		}
		if len(rows) > limit {
			rows = rows[:limit]
		}
	}

	result := Result{DataStart: int64(headerStart), HeaderStart: int64(headerStart), ChunkBytes: chunkBytes}
	if len(rows) == 0 {
		return result, nil
	}

	columns := len(rows[0])
	result.Columns = columns

	start := 0
	if cfg.HasHeader {
		result.HeaderOffsets = normalizeRow(rows[0], columns, src.Path(), -1, cfg)
		if len(rows[0]) > 0 {
			last := rows[0][len(rows[0])-1]
			result.DataStart = rowEndPos(last, cfg, data)
		}
		start = 1
	}

	for i := start; i < len(rows); i++ {
		dataRowIdx := i - start
		normalized := normalizeRow(rows[i], columns, src.Path(), dataRowIdx, cfg)
		result.DataOffsets = append(result.DataOffsets, normalized...)
	}
	result.Rows = len(rows) - start

	return result, nil
}

// partitionBoundaries splits [start, end) into numThreads contiguous, roughly
// equal ranges, moving each internal boundary forward to the byte after the
// next newline so that no multi-byte delimiter or backslash escape straddles
// two chunks. A boundary newline may still sit inside a quoted field;
// reconcile below corrects the quote state for such a chunk. Boundaries that
// collapse onto the same position yield empty chunks.
func partitionBoundaries(data []byte, start, end, numThreads int) []int64 {
	total := end - start
	if total <= 0 {
		return []int64{int64(start), int64(end)}
	}
	if numThreads > total {
		numThreads = total
	}
	if numThreads < 1 {
		numThreads = 1
	}

	chunkSize := total / numThreads
	bounds := make([]int64, numThreads+1)
	bounds[0] = int64(start)
	for i := 1; i < numThreads; i++ {
		b := start + i*chunkSize
		if prev := int(bounds[i-1]); b < prev {
			b = prev
		}
		if nl := bytes.IndexByte(data[b:end], '\n'); nl >= 0 {
			b += nl + 1
		} else {
			b = end
		}
		bounds[i] = int64(b)
	}
	bounds[numThreads] = int64(end)
	return bounds
}

// reconcile walks the per-chunk pass-1 results (each computed assuming
// inQuote=false) left to right, trusting a chunk's own offsets whenever the
// incoming state it actually saw matches that assumption, and re-indexing
// serially — merging forward across chunk boundaries as needed — whenever it
// doesn't, per SPEC_FULL.md §4.3's quote-parity reconciliation.
func reconcile(data []byte, boundaries []int64, chunks []chunkResult, cfg dialect.Config) ([]int64, bool, error) {
	var final []int64
	state := false
	n := len(chunks)

	for i := 0; i < n; {
		if !state {
			final = append(final, chunks[i].offsets...)
			state = chunks[i].res.EndingInQuote
			i++
			continue
		}

		// The pass-1 assumption (inQuote=false) was wrong for chunk i:
		// re-index from the true state, extending rightward until the
		// merged range ends outside a quote or we exhaust the chunks.
		start := boundaries[i]
		j := i
		for {
			end := boundaries[j+1]
			var merged []int64
			res := region.Index(data, int(start), int(end), 0, cfg, state, 0, &merged)
			if !res.EndingInQuote || j+1 >= n {
				final = append(final, merged...)
				state = res.EndingInQuote
				i = j + 1
				break
			}
			j++
		}
	}

	return final, state, nil
}

// groupRows splits a flat, ordered offset vector into per-row slices: a row
// closes at the first entry whose byte is a newline (or the synthetic
// end-of-file offset, which points at size rather than at a real byte).
func groupRows(offsets []int64, data []byte, size int64) [][]int64 {
	var rows [][]int64
	var current []int64
	for _, off := range offsets {
		current = append(current, off)
		isRowEnd := off >= size || data[off] == '\n'
		if isRowEnd {
			rows = append(rows, current)
			current = nil
		}
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

// normalizeRow pads or truncates row to exactly columns entries, reporting a
// RaggedRow diagnostic through cfg.OnRaggedRow when it doesn't already have
// that many. dataRowIdx < 0 marks the header row, which is never reported as
// ragged (a header defines columns by construction).
//
// Padding repeats the row's terminating offset into every missing trailing
// slot rather than inventing a fresh position; sourceindex.cellAt reads two
// equal adjacent offsets as a signal that the slot is a synthetic, empty
// Cell, since two real terminators are never at the same byte position.
func normalizeRow(row []int64, columns int, path string, dataRowIdx int, cfg dialect.Config) []int64 {
	if len(row) == columns {
		return row
	}

	if dataRowIdx >= 0 && cfg.OnRaggedRow != nil {
		cfg.OnRaggedRow(dialect.RaggedRow{Row: dataRowIdx, Expected: columns, Got: len(row)})
	}

	out := make([]int64, columns)
	rowEnd := row[len(row)-1]

	if len(row) < columns {
		copy(out, row[:len(row)-1])
		for i := len(row) - 1; i < columns; i++ {
			out[i] = rowEnd
		}
		return out
	}

	copy(out, row[:columns-1])
	out[columns-1] = rowEnd
	return out
}

// rowEndPos returns the byte position immediately following the terminator
// at off: off+1 for a newline, off+delimLen for a delimiter.
func rowEndPos(off int64, cfg dialect.Config, data []byte) int64 {
	if off < int64(len(data)) && data[off] == '\n' {
		return off + 1
	}
	return off + int64(cfg.DelimLen())
}
