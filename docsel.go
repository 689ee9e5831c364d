// Package docsel provides a locator engine for rich-text documents.
// A locator is a declarative, JSON-shaped query that names a target element
// kind, optional filters, and an optional anchor plus relation. The engine
// resolves it against a document backend into an ordered, non-empty
// Selection that can be read or mutated.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., etree/, sqlite/, htmltomarkdown/).
package docsel
