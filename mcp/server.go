// Package mcp exposes an open document to Model Context Protocol clients.
//
// Tools select elements with JSON locators and edit them. All tool calls
// share one document and are serialized.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Config holds the document and services a Server works with.
type Config struct {
	// Path is where the document is read from and saved to.
	Path     string
	Document docsel.Document

	// Open reloads the document from Path.
	Open func(path string) (docsel.Document, error)

	Editor   *engine.Editor
	Store    docsel.DocumentStore
	Exporter docsel.Exporter

	// Edits serves the edit_history tool. Optional.
	Edits  docsel.EditService
	Logger *slog.Logger
}

// Validate returns an error if a required collaborator is missing.
func (c *Config) Validate() error {
	switch {
	case c.Path == "":
		return docsel.Errorf(docsel.EINVALID, "mcp: document path required")
	case c.Document == nil:
		return docsel.Errorf(docsel.EINVALID, "mcp: document required")
	case c.Open == nil:
		return docsel.Errorf(docsel.EINVALID, "mcp: open function required")
	case c.Editor == nil || c.Editor.Selector == nil:
		return docsel.Errorf(docsel.EINVALID, "mcp: editor with a selector required")
	case c.Store == nil:
		return docsel.Errorf(docsel.EINVALID, "mcp: document store required")
	case c.Exporter == nil:
		return docsel.Errorf(docsel.EINVALID, "mcp: exporter required")
	}
	return nil
}

// Server is the MCP server for one document.
type Server struct {
	cfg    Config
	server *mcp.Server

	mu    sync.Mutex
	doc   docsel.Document
	dirty bool
}

// NewServer creates a new MCP server over the configured document.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	impl := &mcp.Implementation{
		Name:    "docsel",
		Version: Version,
	}

	s := &Server{
		cfg:    cfg,
		doc:    cfg.Document,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Logger: cfg.Logger}),
	}
	s.registerTools()
	return s, nil
}

// Run serves the MCP protocol over stdio.
// It blocks until the context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves the MCP protocol over t and returns once the session is
// established.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

// Dirty reports whether the document has unsaved edits.
func (s *Server) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// toolError converts err into the message a client sees, prefixed with the
// application error code.
func toolError(err error) error {
	var e *docsel.Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Code == docsel.EAMBIGUOUS {
		return fmt.Errorf("%s: %s (%d matches)", e.Code, e.Message, e.Count)
	}
	return fmt.Errorf("%s: %s", e.Code, e.Message)
}
