// Package dialect holds the immutable DialectConfig value object and its
// validation, the way csvquery's IndexerConfig groups the knobs a scan run
// needs before any file is touched.
package dialect

import (
	"fmt"
	"runtime"
)

// Unlimited is the NMax sentinel meaning "no row cap".
const Unlimited = 0

// RaggedRow is delivered to Config.OnRaggedRow for every data row whose
// field count does not match the established column count. It is a soft
// diagnostic, never an error: ragged rows are always padded/truncated and
// indexing continues regardless of whether a sink is set.
type RaggedRow struct {
	Row      int
	Expected int
	Got      int
}

// Config enumerates the dialect options of SPEC_FULL.md §6. It is built once
// and never mutated after Validate succeeds.
type Config struct {
	Delim           []byte
	Quote           byte // 0 disables quoting
	TrimWS          bool
	EscapeDouble    bool
	EscapeBackslash bool
	HasHeader       bool
	SkipLines       int
	NMax            int // 0 == Unlimited
	CommentChar     byte
	HasComment      bool
	NumThreads      int
	Progress        bool

	// LenientUnterminatedQuote, when true, treats a quoted field left open
	// at EOF as "field continues to EOF" instead of raising MalformedInput.
	LenientUnterminatedQuote bool

	// OnRaggedRow, if non-nil, receives one diagnostic per ragged row
	// encountered while building a SourceIndex. Ragged rows are always
	// padded/truncated to Columns regardless of whether a sink is set.
	OnRaggedRow func(RaggedRow)
}

// Default returns the RFC4180-ish comma/quote dialect used throughout the
// test suite and the CLI's default preset.
func Default() Config {
	return Config{
		Delim:        []byte{','},
		Quote:        '"',
		TrimWS:       false,
		EscapeDouble: true,
		HasHeader:    true,
		NumThreads:   runtime.NumCPU(),
	}
}

// Validate rejects configurations the indexer cannot reason about, per
// SPEC_FULL.md §9's resolution of the Delim[0]==Quote open question.
func (c *Config) Validate() error {
	if len(c.Delim) == 0 {
		return fmt.Errorf("colidx: dialect: delim must be at least one byte")
	}
	if c.Quote != 0 && c.Delim[0] == c.Quote {
		return fmt.Errorf("colidx: dialect: delim[0] (%q) must not equal quote (%q)", c.Delim[0], c.Quote)
	}
	if c.NMax < 0 {
		return fmt.Errorf("colidx: dialect: n_max must be non-negative")
	}
	if c.SkipLines < 0 {
		return fmt.Errorf("colidx: dialect: skip_lines must be non-negative")
	}
	if c.NumThreads <= 0 {
		c.NumThreads = 1
	}
	return nil
}

// DelimLen returns the byte length of the configured delimiter.
func (c Config) DelimLen() int { return len(c.Delim) }

// HasQuote reports whether quoting is enabled.
func (c Config) HasQuote() bool { return c.Quote != 0 }
