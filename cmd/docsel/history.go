package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fwojciec/docsel"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if deps.Edits == nil {
		return report(deps, docsel.Errorf(docsel.EINVALID, "history needs the edit journal; drop --no-journal"))
	}

	filter := docsel.EditFilter{Limit: c.Limit, Offset: c.Offset}
	if c.File != "" {
		abs, err := filepath.Abs(c.File)
		if err != nil {
			return report(deps, err)
		}
		filter.DocumentPath = &abs
	}

	edits, err := deps.Edits.FindEdits(deps.Ctx, filter)
	if err != nil {
		return report(deps, err)
	}

	if len(edits) == 0 {
		fmt.Fprintln(deps.Stdout, "No edits found.")
		return nil
	}

	for _, e := range edits {
		fmt.Fprintf(deps.Stdout, "%s  %-7s  %3d  %s  %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Operation, e.Count, e.DocumentPath, e.Locator)
		if e.Detail != "" {
			fmt.Fprintf(deps.Stdout, "    %q\n", e.Detail)
		}
	}
	return nil
}
