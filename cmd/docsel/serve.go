package main

import (
	"path/filepath"

	"github.com/fwojciec/docsel/mcp"
)

// Run executes the serve command. It blocks until the client disconnects.
func (c *ServeCmd) Run(deps *Dependencies) error {
	path, err := filepath.Abs(c.File)
	if err != nil {
		return report(deps, err)
	}

	doc, err := deps.Open(path)
	if err != nil {
		return report(deps, err)
	}

	server, err := mcp.NewServer(mcp.Config{
		Path:     path,
		Document: doc,
		Open:     deps.Open,
		Editor:   deps.Editor,
		Store:    deps.Store,
		Exporter: deps.Exporter,
		Edits:    deps.Edits,
		Logger:   deps.Logger,
	})
	if err != nil {
		return report(deps, err)
	}

	deps.Logger.Info("serving document", "path", path)
	return server.Run(deps.Ctx)
}
