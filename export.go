package docsel

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}

// Exporter renders the elements of a Selection in another format.
type Exporter interface {
	// Export renders sel. Headings, paragraphs, list items, tables and bold
	// runs keep their structure where the format allows it.
	Export(sel *Selection) (string, error)
}
