package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/engine"
	"github.com/fwojciec/docsel/etree"
	"github.com/fwojciec/docsel/fs"
	"github.com/fwojciec/docsel/htmltomarkdown"
	dslog "github.com/fwojciec/docsel/slog"
	"github.com/fwojciec/docsel/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Journal database path. Set before calling Run().
	DBPath string

	// SQLite database used by the journal.
	DB *sqlite.DB

	// Services for end-to-end testing.
	EditService docsel.EditService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// journaled lists the commands that read or write the edit journal.
var journaled = map[string]bool{
	"replace": true,
	"insert":  true,
	"delete":  true,
	"format":  true,
	"comment": true,
	"reply":   true,
	"history": true,
	"serve":   true,

	"edit-comment": true,
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsel"),
		kong.Description("Select and edit elements of .docx documents with JSON locators"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsel --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelError
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps.Open = func(path string) (docsel.Document, error) {
		doc, err := etree.Open(path)
		if err != nil {
			return nil, err
		}
		return &document{
			Backend:  dslog.NewLoggingBackend(doc, deps.Logger.With("path", path)),
			WriterTo: doc,
		}, nil
	}
	deps.Selector = dslog.NewLoggingSelector(engine.New(), deps.Logger)
	deps.Store = fs.NewFileStore()
	deps.Exporter = htmltomarkdown.NewExporter(htmltomarkdown.NewConverter())
	if cmd == "export" && cli.Export.Out != "" {
		deps.Excerpts = fs.NewWriter(cli.Export.Out)
	}

	if journaled[cmd] && !cli.NoJournal {
		if m.EditService == nil {
			m.DB = sqlite.NewDB(m.DBPath)
			if err := m.DB.Open(); err != nil {
				fmt.Fprintf(stderr, "Hint: Set DOCSEL_DB to use a different database path, or pass --no-journal\n")
				return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
			}
			defer m.Close()
			m.EditService = sqlite.NewEditService(m.DB)
		}
		deps.Edits = m.EditService
	}
	deps.Editor = engine.NewEditor(deps.Selector, deps.Edits)

	return kongCtx.Run(deps)
}

// document pairs a logged backend with the serializer of the document
// underneath it.
type document struct {
	docsel.Backend
	io.WriterTo
}

func defaultDBPath() string {
	if path := os.Getenv("DOCSEL_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docsel.db"
	}
	return filepath.Join(home, ".docsel", "docsel.db")
}
