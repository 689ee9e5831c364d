package mock

import "github.com/fwojciec/docsel"

var _ docsel.Converter = (*Converter)(nil)

// Converter is a mock implementation of docsel.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ docsel.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of docsel.Exporter.
type Exporter struct {
	ExportFn func(sel *docsel.Selection) (string, error)
}

func (e *Exporter) Export(sel *docsel.Selection) (string, error) {
	return e.ExportFn(sel)
}
