// Command otzar is the CLI for the corpus import pipeline.
// It imports a corpus directory into a SQLite database, exports corpus
// archives, and offers small citation utilities.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/otzarlib/otzar/core/citation"
	"github.com/otzarlib/otzar/core/hebrew"
	"github.com/otzarlib/otzar/core/importer"
	"github.com/otzarlib/otzar/internal/archive"
	"github.com/otzarlib/otzar/internal/config"
	"github.com/otzarlib/otzar/internal/logging"
	"github.com/otzarlib/otzar/internal/metrics"
	"github.com/otzarlib/otzar/internal/source"
	"github.com/otzarlib/otzar/internal/store"
)

const version = "0.1.0"

// CLI defines the command-line interface for otzar.
var CLI struct {
	// Global flags
	Config string `name:"config" short:"c" help:"Config file path" type:"path"`

	// Command groups (noun-first organization)
	Corpus  CorpusGroup `cmd:"" help:"Corpus operations (import, export, stats)"`
	Ref     RefGroup    `cmd:"" help:"Citation and numeral utilities"`
	Version VersionCmd  `cmd:"" help:"Print version information"`
}

// CorpusGroup contains corpus lifecycle operations.
type CorpusGroup struct {
	Import ImportCmd `cmd:"" help:"Import a corpus directory into a database"`
	Export ExportCmd `cmd:"" help:"Archive a corpus directory"`
	Stats  StatsCmd  `cmd:"" help:"Show row counts for an imported database"`
}

// RefGroup contains citation utilities.
type RefGroup struct {
	Parse    ParseCmd    `cmd:"" help:"Parse a citation string"`
	Gematria GematriaCmd `cmd:"" help:"Render a number as Hebrew numerals"`
	Daf      DafCmd      `cmd:"" help:"Render a sequential position as a daf address"`
}

// ImportCmd imports a corpus directory into a SQLite database.
type ImportCmd struct {
	CorpusDir string `arg:"" optional:"" help:"Corpus root directory or exported .tar.xz/.tar.gz archive" type:"path"`
	Out       string `name:"out" short:"o" help:"Output database path"`
	Workers   int    `name:"workers" help:"Flattening worker count (0 = CPU cores)"`
	Archive   string `name:"archive" help:"Also package the database and stats into this .tar.xz or .tar.gz"`
}

func (c *ImportCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.CorpusDir != "" {
		cfg.Import.CorpusDir = c.CorpusDir
	}
	if c.Out != "" {
		cfg.Store.Path = c.Out
	}
	if c.Workers != 0 {
		cfg.Import.Workers = c.Workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corpusDir := cfg.Import.CorpusDir
	if strings.HasSuffix(corpusDir, ".tar.xz") || strings.HasSuffix(corpusDir, ".tar.gz") {
		extracted, cleanup, err := extractCorpus(corpusDir)
		if err != nil {
			return fmt.Errorf("extract corpus: %w", err)
		}
		defer cleanup()
		corpusDir = extracted
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		go serveMetrics(cfg.Metrics.Port)
	}

	start := time.Now()
	result, err := importer.Run(ctx, source.NewDir(corpusDir), importer.Options{
		Workers: cfg.Import.Workers,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if m != nil {
		m.Record(result.Stats, time.Since(start).Seconds())
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.WriteResult(ctx, result); err != nil {
		return fmt.Errorf("persist failed: %w", err)
	}

	fmt.Printf("Imported %d books (%d lines, %d links) into %s\n",
		len(result.Books), result.Stats.LinesEmitted, result.Stats.LinksCreated, cfg.Store.Path)
	if result.Stats.DocumentsFailed > 0 {
		fmt.Printf("  %d documents failed and were excluded\n", result.Stats.DocumentsFailed)
	}
	if result.Stats.LinksDropped > 0 {
		fmt.Printf("  %d link pairs dropped as unresolvable\n", result.Stats.LinksDropped)
	}

	if c.Archive != "" {
		if err := packageDatabase(cfg.Store.Path, c.Archive, result.Stats); err != nil {
			return fmt.Errorf("archive failed: %w", err)
		}
		fmt.Printf("Archived database to %s\n", c.Archive)
	}
	return nil
}

// extractCorpus unpacks an exported corpus archive into a temp directory and
// locates the corpus root inside it.
func extractCorpus(path string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "otzar-corpus-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	if err := archive.Extract(path, dir); err != nil {
		cleanup()
		return "", nil, err
	}
	root, err := findCorpusRoot(dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return root, cleanup, nil
}

// findCorpusRoot returns the directory holding books/: the extraction dir
// itself, or the archive's single top-level directory (exports nest the
// corpus under a base dir derived from the archive name).
func findCorpusRoot(dir string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, "books")); err == nil {
		return dir, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		nested := filepath.Join(dir, entries[0].Name())
		if _, err := os.Stat(filepath.Join(nested, "books")); err == nil {
			return nested, nil
		}
	}
	return "", fmt.Errorf("no books directory in %s", dir)
}

// packageDatabase stages the database and a stats manifest into a temp
// directory and archives it.
func packageDatabase(dbPath, archivePath string, stats importer.StatsSnapshot) error {
	stage, err := os.MkdirTemp("", "otzar-export-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stage)

	if err := copyFile(dbPath, filepath.Join(stage, filepath.Base(dbPath))); err != nil {
		return err
	}

	manifest, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(stage, "stats.json"), manifest, 0644); err != nil {
		return err
	}

	return archive.CreateCorpusArchive(stage, archivePath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	addr := fmt.Sprintf(":%d", port)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Warn("metrics server stopped", "error", err.Error())
	}
}

// ExportCmd archives a corpus directory into a compressed tarball.
type ExportCmd struct {
	CorpusDir string `arg:"" help:"Corpus root directory" type:"existingdir"`
	Out       string `name:"out" short:"o" required:"" help:"Output archive path (.tar.xz or .tar.gz)"`
}

func (c *ExportCmd) Run() error {
	if err := archive.CreateCorpusArchive(c.CorpusDir, c.Out); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("Exported %s to %s\n", c.CorpusDir, c.Out)
	return nil
}

// StatsCmd prints row counts from an imported database.
type StatsCmd struct {
	Database string `arg:"" help:"Database path" type:"existingfile"`
}

func (c *StatsCmd) Run() error {
	s, err := store.OpenReadOnly(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	for _, table := range []string{"books", "lines", "toc_entries", "alt_toc_entries", "links"} {
		var n int64
		if err := s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		fmt.Printf("%-16s %d\n", table, n)
	}
	return nil
}

// ParseCmd parses a citation string and prints the result as JSON.
type ParseCmd struct {
	Citation string `arg:"" help:"Citation string, e.g. 'Beit Yosef, Orach Chayim 325:34:1'"`
}

func (c *ParseCmd) Run() error {
	cit := citation.Parse(c.Citation)
	if cit == nil {
		return fmt.Errorf("unparseable citation: %q", c.Citation)
	}
	out, err := json.MarshalIndent(cit, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// GematriaCmd renders a number as Hebrew numerals.
type GematriaCmd struct {
	Number     int  `arg:"" help:"Positive integer"`
	Punctuated bool `name:"punctuated" short:"p" help:"Add geresh/gershayim punctuation"`
}

func (c *GematriaCmd) Run() error {
	if c.Number < 1 {
		return fmt.Errorf("number must be positive, got %d", c.Number)
	}
	if c.Punctuated {
		fmt.Println(hebrew.GematriaPunctuated(c.Number))
	} else {
		fmt.Println(hebrew.Gematria(c.Number))
	}
	return nil
}

// DafCmd renders a 1-based sequential position as a daf address.
type DafCmd struct {
	Position int `arg:"" help:"1-based sequential position"`
}

func (c *DafCmd) Run() error {
	if c.Position < 1 {
		return fmt.Errorf("position must be positive, got %d", c.Position)
	}
	fmt.Printf("%s (%s)\n", hebrew.DafExternal(c.Position), hebrew.DafHebrew(c.Position))
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("otzar version %s\n", version)
	return nil
}

// loadConfig loads the config file named by the global flag, falling back to
// defaults plus environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(logging.ParseLevel(cfg.Logging.Level), parseFormat(cfg.Logging.Format))
	return cfg, nil
}

func parseFormat(s string) logging.Format {
	if s == "text" {
		return logging.FormatText
	}
	return logging.FormatJSON
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("otzar"),
		kong.Description("Hebrew library corpus import and structural resolution"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
