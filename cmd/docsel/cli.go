package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/engine"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Open loads the document at path.
	Open func(path string) (docsel.Document, error)

	Selector docsel.Selector
	Editor   *engine.Editor
	Store    docsel.DocumentStore
	Exporter docsel.Exporter
	Excerpts docsel.ExcerptWriter
	Edits    docsel.EditService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool `short:"v" help:"Log every enumeration and mutation to stderr"`
	NoJournal bool `name:"no-journal" help:"Do not record edits in the journal database"`

	Select  SelectCmd  `cmd:"" help:"Describe the elements a locator matches"`
	Text    TextCmd    `cmd:"" help:"Print the text of the elements a locator matches"`
	Export  ExportCmd  `cmd:"" help:"Render the elements a locator matches as Markdown"`
	Replace ReplaceCmd `cmd:"" help:"Overwrite the text of every matching element"`
	Insert  InsertCmd  `cmd:"" help:"Insert text before, after or in place of the matches"`
	Delete  DeleteCmd  `cmd:"" help:"Delete every matching element"`
	Format  FormatCmd  `cmd:"" help:"Apply formatting to every matching element"`
	Comment CommentCmd `cmd:"" help:"Attach a comment to the matching text"`
	Reply   ReplyCmd   `cmd:"" help:"Reply to every matching comment"`
	History HistoryCmd `cmd:"" help:"List journaled edits"`
	Serve   ServeCmd   `cmd:"" help:"Serve a document to MCP clients over stdio"`

	EditComment EditCommentCmd `cmd:"" name:"edit-comment" help:"Overwrite the text of every matching comment"`
}

// SelectCmd is the "select" subcommand.
type SelectCmd struct {
	Locator     string   `arg:"" help:"JSON locator, or @FILE to read it from a file"`
	Files       []string `arg:"" name:"file" help:"Documents to query"`
	Single      bool     `help:"Fail when more than one element matches"`
	JSON        bool     `name:"json" help:"Print element descriptions as JSON"`
	Concurrency int      `short:"c" default:"4" help:"Documents queried concurrently"`
}

// TextCmd is the "text" subcommand.
type TextCmd struct {
	Locator     string   `arg:"" help:"JSON locator, or @FILE to read it from a file"`
	Files       []string `arg:"" name:"file" help:"Documents to query"`
	Single      bool     `help:"Fail when more than one element matches"`
	Concurrency int      `short:"c" default:"4" help:"Documents queried concurrently"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Locator     string   `arg:"" help:"JSON locator, or @FILE to read it from a file"`
	Files       []string `arg:"" name:"file" help:"Documents to export from"`
	Out         string   `short:"o" type:"path" help:"Write one Markdown file per document to this directory"`
	Concurrency int      `short:"c" default:"4" help:"Documents queried concurrently"`
}

// ReplaceCmd is the "replace" subcommand.
type ReplaceCmd struct {
	Locator string   `arg:"" help:"JSON locator, or @FILE to read it from a file"`
	Text    string   `arg:"" help:"Replacement text; newlines start new paragraphs"`
	Files   []string `arg:"" name:"file" help:"Documents to edit"`
	Single  bool     `help:"Fail when more than one element matches"`
}

// InsertCmd is the "insert" subcommand.
type InsertCmd struct {
	Locator  string   `arg:"" help:"JSON locator, or @FILE to read it from a file"`
	Text     string   `arg:"" help:"Text to insert"`
	Files    []string `arg:"" name:"file" help:"Documents to edit"`
	Position string   `short:"p" default:"after" enum:"before,after,replace" help:"Where to insert: before, after or replace"`
	Style    string   `help:"Insert as separate paragraphs with this paragraph style"`
	Single   bool     `help:"Fail when more than one element matches"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Locator string   `arg:"" help:"JSON locator, or @FILE to read it from a file"`
	Files   []string `arg:"" name:"file" help:"Documents to edit"`
	Single  bool     `help:"Fail when more than one element matches"`
}

// FormatCmd is the "format" subcommand.
type FormatCmd struct {
	Locator string            `arg:"" help:"JSON locator, or @FILE to read it from a file"`
	Files   []string          `arg:"" name:"file" help:"Documents to edit"`
	Set     map[string]string `short:"s" help:"Formatting option as key=value (repeatable): bold, italic, underline, font_size, font_name, font_color, alignment, paragraph_style"`
	Single  bool              `help:"Fail when more than one element matches"`
}

// CommentCmd is the "comment" subcommand.
type CommentCmd struct {
	Locator string   `arg:"" help:"JSON locator, or @FILE to read it from a file"`
	Text    string   `arg:"" help:"Comment text; newlines start new paragraphs"`
	Files   []string `arg:"" name:"file" help:"Documents to edit"`
	Author  string   `short:"a" env:"DOCSEL_AUTHOR" help:"Comment author"`
	Single  bool     `help:"Fail when more than one element matches"`
}

// ReplyCmd is the "reply" subcommand. Its locator must match comments.
type ReplyCmd struct {
	Locator string   `arg:"" help:"JSON locator matching comments, or @FILE to read it from a file"`
	Text    string   `arg:"" help:"Reply text"`
	Files   []string `arg:"" name:"file" help:"Documents to edit"`
	Author  string   `short:"a" env:"DOCSEL_AUTHOR" help:"Reply author"`
	Single  bool     `help:"Fail when more than one element matches"`
}

// EditCommentCmd is the "edit-comment" subcommand.
type EditCommentCmd struct {
	Locator string   `arg:"" help:"JSON locator matching comments, or @FILE to read it from a file"`
	Text    string   `arg:"" help:"New comment text"`
	Files   []string `arg:"" name:"file" help:"Documents to edit"`
	Single  bool     `help:"Fail when more than one element matches"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	File   string `arg:"" optional:"" help:"Only list edits of this document"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of edits"`
	Offset int    `help:"Number of edits to skip"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	File string `arg:"" type:"existingfile" help:"Document to serve"`
}
