package dialect

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// preset mirrors Config with plain strings/runes for the fields that don't
// round-trip through TOML's native types (single bytes, byte slices).
type preset struct {
	Dialect struct {
		Delim           string `toml:"delim"`
		Quote           string `toml:"quote"`
		TrimWS          bool   `toml:"trim_ws"`
		EscapeDouble    bool   `toml:"escape_double"`
		EscapeBackslash bool   `toml:"escape_backslash"`
		HasHeader       bool   `toml:"has_header"`
		SkipLines       int    `toml:"skip_lines"`
		NMax            int    `toml:"n_max"`
		CommentChar     string `toml:"comment_char"`
		NumThreads      int    `toml:"num_threads"`
		Progress        bool   `toml:"progress"`
	} `toml:"dialect"`
}

// LoadPreset reads a TOML dialect preset from path, the way a team might
// check in "excel-csv.toml" or "tsv.toml" next to their data pipelines.
//
//	[dialect]
//	delim = ","
//	quote = "\""
//	has_header = true
//	escape_double = true
func LoadPreset(path string) (Config, error) {
	var p preset
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return Config{}, fmt.Errorf("colidx: dialect: loading preset %q: %w", path, err)
	}

	cfg := Default()
	d := p.Dialect
	if d.Delim != "" {
		cfg.Delim = []byte(d.Delim)
	}
	// An explicit empty string can't distinguish "unset" from "disable
	// quoting" in TOML, so disabling quoting requires quote = " " in the
	// preset file; an omitted key leaves Default()'s quote untouched.
	if d.Quote == " " {
		cfg.Quote = 0
	} else if d.Quote != "" {
		cfg.Quote = d.Quote[0]
	}
	cfg.TrimWS = d.TrimWS
	cfg.EscapeDouble = d.EscapeDouble
	cfg.EscapeBackslash = d.EscapeBackslash
	cfg.HasHeader = d.HasHeader
	cfg.SkipLines = d.SkipLines
	cfg.NMax = d.NMax
	if d.CommentChar != "" {
		cfg.CommentChar = d.CommentChar[0]
		cfg.HasComment = true
	}
	if d.NumThreads > 0 {
		cfg.NumThreads = d.NumThreads
	}
	cfg.Progress = d.Progress

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SavePreset writes cfg out as a TOML preset file, inverse of LoadPreset.
func SavePreset(path string, cfg Config) error {
	var p preset
	p.Dialect.Delim = string(cfg.Delim)
	if cfg.Quote != 0 {
		p.Dialect.Quote = string(cfg.Quote)
	} else {
		p.Dialect.Quote = " "
	}
	p.Dialect.TrimWS = cfg.TrimWS
	p.Dialect.EscapeDouble = cfg.EscapeDouble
	p.Dialect.EscapeBackslash = cfg.EscapeBackslash
	p.Dialect.HasHeader = cfg.HasHeader
	p.Dialect.SkipLines = cfg.SkipLines
	p.Dialect.NMax = cfg.NMax
	if cfg.HasComment {
		p.Dialect.CommentChar = string(cfg.CommentChar)
	}
	p.Dialect.NumThreads = cfg.NumThreads
	p.Dialect.Progress = cfg.Progress

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("colidx: dialect: saving preset %q: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(&p)
}
