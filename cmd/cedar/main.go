// Command cedar is the CLI tool for CedarBible.
// It provides commands for parsing USFM sources, importing them into a
// book store, and serving the parsed books over HTTP.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kong"

	"github.com/cedarworks/CedarBible/core/sqlite"
	"github.com/cedarworks/CedarBible/core/usfm"
	"github.com/cedarworks/CedarBible/internal/api"
	"github.com/cedarworks/CedarBible/internal/discovery"
	"github.com/cedarworks/CedarBible/internal/logging"
	"github.com/cedarworks/CedarBible/internal/osis"
	"github.com/cedarworks/CedarBible/internal/store"
)

const version = "0.2.0"

// CLI defines the command-line interface for cedar.
var CLI struct {
	// Global flags
	DB        string `name:"db" help:"Path to the book database" type:"path" default:"cedar.db"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text"`

	Parse   ParseCmd   `cmd:"" help:"Parse a USFM file and print the book"`
	Import  ImportCmd  `cmd:"" help:"Import a directory of USFM files into the database"`
	Books   BooksCmd   `cmd:"" help:"List stored books or show one"`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP API and WebSocket server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	s, err := store.Open(CLI.DB)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", CLI.DB, err)
	}
	return s, nil
}

// ParseCmd parses one USFM file and prints the resulting book.
type ParseCmd struct {
	Path   string `arg:"" help:"Path to USFM file (.usfm, .sfm, optionally .xz)" type:"existingfile"`
	Format string `help:"Output format (json, osis)" enum:"json,osis" default:"json"`
	Verify bool   `help:"Re-parse emitted OSIS and print element counts"`
}

func (c *ParseCmd) Run() error {
	src, err := discovery.Load(c.Path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.Path, err)
	}

	b, diags := usfm.ParseLines(src.Lines)
	for _, d := range diags {
		logging.LineSkipped(c.Path, d.Line, d.Text, "reason", d.Reason)
	}
	logging.FileParsed(c.Path, b.ID, len(b.Chapters), len(diags))

	switch c.Format {
	case "osis":
		doc := osis.Emit(b)
		os.Stdout.Write(doc)
		if c.Verify {
			stats, err := osis.Verify(doc)
			if err != nil {
				return fmt.Errorf("verifying emitted OSIS: %w", err)
			}
			fmt.Fprintf(os.Stderr, "verified: %d book(s), %d chapter(s), %d verse(s), %d note(s)\n",
				stats.Books, stats.Chapters, stats.Verses, stats.Notes)
		}
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("encoding book: %w", err)
		}
	}

	if len(diags) > 0 {
		fmt.Fprintf(os.Stderr, "%d line(s) skipped\n", len(diags))
	}
	return nil
}

// ImportCmd imports every USFM file under a directory.
type ImportCmd struct {
	Dir     string `arg:"" help:"Directory to scan for USFM files" type:"existingdir"`
	Workers int    `help:"Parallel parse workers" default:"4"`
}

func (c *ImportCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.ImportDir(c.Dir, c.Workers, func(res store.ImportResult, done, total int) {
		if res.Err != nil {
			fmt.Printf("  [FAIL] %s: %v\n", res.Path, res.Err)
			return
		}
		fmt.Printf("  [OK]   %s -> %s (%d chapter(s), %d diagnostic(s)) [%d/%d]\n",
			res.Path, res.BookID, res.Chapters, len(res.Diagnostics), done, total)
	})
	if err != nil {
		return fmt.Errorf("importing %s: %w", c.Dir, err)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	fmt.Printf("\nImported %d file(s), %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to import", failed)
	}
	return nil
}

// BooksCmd lists stored books, or shows one book by code.
type BooksCmd struct {
	Code   string `arg:"" optional:"" help:"Book code to show (e.g. GEN)"`
	Format string `help:"Output format for a single book (json, osis)" enum:"json,osis" default:"json"`
}

func (c *BooksCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if c.Code != "" {
		b, err := s.GetBook(c.Code)
		if err != nil {
			return err
		}
		if c.Format == "osis" {
			os.Stdout.Write(osis.Emit(b))
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	books, err := s.ListBooks()
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("No books stored.")
		return nil
	}
	for _, bs := range books {
		fmt.Printf("  %-4s %-30s %d chapter(s)\n", bs.Code, bs.LongName, bs.Chapters)
	}
	fmt.Printf("\nTotal: %d book(s)\n", len(books))
	return nil
}

// ServeCmd starts the HTTP API and WebSocket server.
type ServeCmd struct {
	Addr string `help:"Listen address" default:"localhost:8743"`
}

func (c *ServeCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	srv := api.NewServer(s)
	logging.Info("server starting",
		"addr", c.Addr,
		"db", CLI.DB,
		"sqlite_driver", sqlite.DriverType(),
	)
	return http.ListenAndServe(c.Addr, srv.Routes())
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("cedar version %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("cedar"),
		kong.Description("Parse USFM scripture sources into typed books, store them, and serve them over HTTP."),
		kong.UsageOnError(),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	if err := ctx.Run(); err != nil {
		logging.Error("command failed", "error", err)
		os.Exit(1)
	}
}
