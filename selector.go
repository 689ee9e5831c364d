package docsel

import "context"

// SelectOptions configures a Select call.
type SelectOptions struct {
	// ExpectSingle makes a match of more than one element an EAMBIGUOUS error.
	ExpectSingle bool
}

// Selector resolves locators against a document backend.
type Selector interface {
	// Select returns the elements of b matching loc, in document order.
	// A locator matching nothing returns an ENOTFOUND error, never an empty
	// Selection.
	Select(ctx context.Context, b Backend, loc *Locator, opts SelectOptions) (*Selection, error)
}
