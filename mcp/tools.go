package mcp

import (
	"context"
	"time"

	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SelectInput is the input schema for the read-only tools.
type SelectInput struct {
	Locator      map[string]any `json:"locator" jsonschema:"JSON locator with a target and an optional anchor and relation"`
	ExpectSingle bool           `json:"expect_single,omitempty" jsonschema:"fail when the locator matches more than one element"`
}

// SelectOutput is the output schema for the select_elements tool.
type SelectOutput struct {
	Count    int                  `json:"count"`
	Elements []docsel.ElementInfo `json:"elements"`
}

// TextOutput is the output schema for the get_text tool.
type TextOutput struct {
	Text string `json:"text"`
}

// MarkdownOutput is the output schema for the export_markdown tool.
type MarkdownOutput struct {
	Markdown string `json:"markdown"`
}

// ReplaceInput is the input schema for the replace_text tool.
type ReplaceInput struct {
	Locator      map[string]any `json:"locator" jsonschema:"JSON locator of the elements to overwrite"`
	Text         string         `json:"text" jsonschema:"replacement text; newlines start new paragraphs"`
	ExpectSingle bool           `json:"expect_single,omitempty" jsonschema:"fail when the locator matches more than one element"`
}

// InsertInput is the input schema for the insert_text tool.
type InsertInput struct {
	Locator      map[string]any `json:"locator" jsonschema:"JSON locator of the elements to insert around"`
	Text         string         `json:"text" jsonschema:"text to insert"`
	Position     string         `json:"position,omitempty" jsonschema:"before, after or replace (default after)"`
	Style        string         `json:"style,omitempty" jsonschema:"insert as separate paragraphs with this paragraph style"`
	ExpectSingle bool           `json:"expect_single,omitempty" jsonschema:"fail when the locator matches more than one element"`
}

// CommentInput is the input schema for the add_comment and
// reply_to_comment tools.
type CommentInput struct {
	Locator      map[string]any `json:"locator" jsonschema:"JSON locator of the text to comment on, or of the comments to reply to"`
	Text         string         `json:"text" jsonschema:"comment text; newlines start new paragraphs"`
	Author       string         `json:"author,omitempty" jsonschema:"comment author (default docsel)"`
	ExpectSingle bool           `json:"expect_single,omitempty" jsonschema:"fail when the locator matches more than one element"`
}

// FormatInput is the input schema for the apply_format tool.
type FormatInput struct {
	Locator      map[string]any `json:"locator" jsonschema:"JSON locator of the elements to format"`
	Format       map[string]any `json:"format" jsonschema:"formatting keys: bold, italic, underline, font_size, font_name, font_color, alignment, paragraph_style"`
	ExpectSingle bool           `json:"expect_single,omitempty" jsonschema:"fail when the locator matches more than one element"`
}

// EditOutput is the output schema for the mutating tools.
type EditOutput struct {
	Count int `json:"count"`
}

// SaveOutput is the output schema for save_document and revert_document.
type SaveOutput struct {
	Path string `json:"path"`
}

// HistoryInput is the input schema for the edit_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of edits to return (default 20)"`
}

// HistoryOutput is the output schema for the edit_history tool.
type HistoryOutput struct {
	Edits []EditRecord `json:"edits"`
}

// EditRecord is one journaled edit.
type EditRecord struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
	Locator   string `json:"locator"`
	Detail    string `json:"detail,omitempty"`
	Count     int    `json:"count"`
	CreatedAt string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select_elements",
		Description: "Resolve a locator and describe the matching elements",
	}, s.handleSelect)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_text",
		Description: "Return the text of the elements a locator matches",
	}, s.handleGetText)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_markdown",
		Description: "Render the elements a locator matches as Markdown",
	}, s.handleExport)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "replace_text",
		Description: "Overwrite the text of every element a locator matches",
	}, s.handleReplace)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "insert_text",
		Description: "Insert text before, after or in place of the elements a locator matches",
	}, s.handleInsert)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_elements",
		Description: "Delete every element a locator matches",
	}, s.handleDelete)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "apply_format",
		Description: "Apply character and paragraph formatting to the elements a locator matches",
	}, s.handleFormat)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_comment",
		Description: "Attach one comment spanning the elements a locator matches",
	}, s.handleAddComment)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reply_to_comment",
		Description: "Reply to every comment a locator matches",
	}, s.handleReply)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "edit_comment",
		Description: "Overwrite the text of every comment a locator matches",
	}, s.handleEditComment)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_document",
		Description: "Write the edited document back to its file",
	}, s.handleSave)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "revert_document",
		Description: "Discard unsaved edits and reload the document from its file",
	}, s.handleRevert)
	if s.cfg.Edits != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "edit_history",
			Description: "List the journaled edits of the document, newest first",
		}, s.handleHistory)
	}
}

// selectLocked resolves a locator against the current document. The caller
// holds s.mu.
func (s *Server) selectLocked(ctx context.Context, raw map[string]any, expectSingle bool) (*docsel.Selection, error) {
	loc, err := docsel.DecodeLocator(raw)
	if err != nil {
		return nil, err
	}
	return s.cfg.Editor.Selector.Select(ctx, s.doc, loc, docsel.SelectOptions{ExpectSingle: expectSingle})
}

func (s *Server) handleSelect(ctx context.Context, _ *mcp.CallToolRequest, input SelectInput) (*mcp.CallToolResult, SelectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.selectLocked(ctx, input.Locator, input.ExpectSingle)
	if err != nil {
		return nil, SelectOutput{}, toolError(err)
	}
	return nil, SelectOutput{Count: sel.Len(), Elements: sel.Describe()}, nil
}

func (s *Server) handleGetText(ctx context.Context, _ *mcp.CallToolRequest, input SelectInput) (*mcp.CallToolResult, TextOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.selectLocked(ctx, input.Locator, input.ExpectSingle)
	if err != nil {
		return nil, TextOutput{}, toolError(err)
	}
	return nil, TextOutput{Text: sel.Text()}, nil
}

func (s *Server) handleExport(ctx context.Context, _ *mcp.CallToolRequest, input SelectInput) (*mcp.CallToolResult, MarkdownOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.selectLocked(ctx, input.Locator, input.ExpectSingle)
	if err != nil {
		return nil, MarkdownOutput{}, toolError(err)
	}
	md, err := s.cfg.Exporter.Export(sel)
	if err != nil {
		return nil, MarkdownOutput{}, toolError(err)
	}
	return nil, MarkdownOutput{Markdown: md}, nil
}

func (s *Server) handleReplace(ctx context.Context, _ *mcp.CallToolRequest, input ReplaceInput) (*mcp.CallToolResult, EditOutput, error) {
	return s.edit(ctx, input.Locator, input.ExpectSingle, docsel.OperationReplace, input.Text,
		func(ctx context.Context, sel *docsel.Selection) error {
			return sel.ReplaceText(ctx, input.Text)
		})
}

func (s *Server) handleInsert(ctx context.Context, _ *mcp.CallToolRequest, input InsertInput) (*mcp.CallToolResult, EditOutput, error) {
	pos := docsel.PositionAfter
	if input.Position != "" {
		var err error
		if pos, err = docsel.ParsePosition(input.Position); err != nil {
			return nil, EditOutput{}, toolError(err)
		}
	}
	detail := string(pos) + ": " + input.Text
	if input.Style != "" {
		detail = string(pos) + " (" + input.Style + "): " + input.Text
	}
	return s.edit(ctx, input.Locator, input.ExpectSingle, docsel.OperationInsert, detail,
		func(ctx context.Context, sel *docsel.Selection) error {
			return sel.InsertText(ctx, input.Text, pos, input.Style)
		})
}

func (s *Server) handleAddComment(ctx context.Context, _ *mcp.CallToolRequest, input CommentInput) (*mcp.CallToolResult, EditOutput, error) {
	c := docsel.Comment{Author: input.Author, Text: input.Text}.WithDefaults()
	return s.edit(ctx, input.Locator, input.ExpectSingle, docsel.OperationComment, c.Author+": "+c.Text,
		func(ctx context.Context, sel *docsel.Selection) error {
			return sel.AddComment(ctx, c)
		})
}

func (s *Server) handleReply(ctx context.Context, _ *mcp.CallToolRequest, input CommentInput) (*mcp.CallToolResult, EditOutput, error) {
	c := docsel.Comment{Author: input.Author, Text: input.Text}.WithDefaults()
	return s.edit(ctx, input.Locator, input.ExpectSingle, docsel.OperationReply, c.Author+": "+c.Text,
		func(ctx context.Context, sel *docsel.Selection) error {
			return sel.ReplyToComments(ctx, c)
		})
}

func (s *Server) handleEditComment(ctx context.Context, _ *mcp.CallToolRequest, input ReplaceInput) (*mcp.CallToolResult, EditOutput, error) {
	return s.edit(ctx, input.Locator, input.ExpectSingle, docsel.OperationEditComment, input.Text,
		func(ctx context.Context, sel *docsel.Selection) error {
			return sel.EditComments(ctx, input.Text)
		})
}

func (s *Server) handleDelete(ctx context.Context, _ *mcp.CallToolRequest, input SelectInput) (*mcp.CallToolResult, EditOutput, error) {
	return s.edit(ctx, input.Locator, input.ExpectSingle, docsel.OperationDelete, "",
		func(ctx context.Context, sel *docsel.Selection) error {
			return sel.Delete(ctx)
		})
}

func (s *Server) handleFormat(ctx context.Context, _ *mcp.CallToolRequest, input FormatInput) (*mcp.CallToolResult, EditOutput, error) {
	f, err := docsel.ParseFormat(input.Format)
	if err != nil {
		return nil, EditOutput{}, toolError(err)
	}
	return s.edit(ctx, input.Locator, input.ExpectSingle, docsel.OperationFormat, f.String(),
		func(ctx context.Context, sel *docsel.Selection) error {
			return sel.ApplyFormat(ctx, input.Format)
		})
}

// edit applies a journaled mutation to the current document.
func (s *Server) edit(ctx context.Context, raw map[string]any, expectSingle bool, op docsel.Operation, detail string, mutate func(context.Context, *docsel.Selection) error) (*mcp.CallToolResult, EditOutput, error) {
	loc, err := docsel.DecodeLocator(raw)
	if err != nil {
		return nil, EditOutput{}, toolError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	edit, err := s.cfg.Editor.Apply(ctx, engine.EditRequest{
		Path:      s.cfg.Path,
		Document:  s.doc,
		Locator:   loc,
		Options:   docsel.SelectOptions{ExpectSingle: expectSingle},
		Operation: op,
		Detail:    detail,
		Mutate:    mutate,
	})
	if err != nil {
		// Locator errors are raised before anything is mutated.
		if code := docsel.ErrorCode(err); code != docsel.ENOTFOUND && code != docsel.EAMBIGUOUS && code != docsel.ESYNTAX {
			s.dirty = true
		}
		return nil, EditOutput{}, toolError(err)
	}
	s.dirty = true
	if err := s.cfg.Editor.Record(ctx, edit); err != nil {
		return nil, EditOutput{}, toolError(err)
	}
	return nil, EditOutput{Count: edit.Count}, nil
}

func (s *Server) handleSave(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, SaveOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cfg.Store.Save(ctx, s.cfg.Path, s.doc); err != nil {
		_ = s.cfg.Store.Abort()
		return nil, SaveOutput{}, toolError(err)
	}
	if err := s.cfg.Store.Commit(); err != nil {
		return nil, SaveOutput{}, toolError(err)
	}
	s.dirty = false
	s.cfg.Logger.Info("document saved", "path", s.cfg.Path)
	return nil, SaveOutput{Path: s.cfg.Path}, nil
}

func (s *Server) handleRevert(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, SaveOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.cfg.Open(s.cfg.Path)
	if err != nil {
		return nil, SaveOutput{}, toolError(err)
	}
	s.doc = doc
	s.dirty = false
	s.cfg.Logger.Info("document reverted", "path", s.cfg.Path)
	return nil, SaveOutput{Path: s.cfg.Path}, nil
}

func (s *Server) handleHistory(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	path := s.cfg.Path
	edits, err := s.cfg.Edits.FindEdits(ctx, docsel.EditFilter{DocumentPath: &path, Limit: limit})
	if err != nil {
		return nil, HistoryOutput{}, toolError(err)
	}

	out := HistoryOutput{Edits: make([]EditRecord, len(edits))}
	for i, e := range edits {
		out.Edits[i] = EditRecord{
			ID:        e.ID,
			Operation: string(e.Operation),
			Locator:   e.Locator,
			Detail:    e.Detail,
			Count:     e.Count,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, out, nil
}
