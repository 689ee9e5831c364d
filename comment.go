package docsel

import "strings"

// DefaultCommentAuthor signs comments created without an author.
const DefaultCommentAuthor = "docsel"

// Comment is the content of a new comment or reply.
type Comment struct {
	Author   string
	Initials string
	Text     string
}

// WithDefaults returns c with the author and initials filled in when they
// are empty. Initials default to the first letter of each word of the
// author's name.
func (c Comment) WithDefaults() Comment {
	if strings.TrimSpace(c.Author) == "" {
		c.Author = DefaultCommentAuthor
	}
	if c.Initials == "" {
		var b strings.Builder
		for _, word := range strings.Fields(c.Author) {
			r := []rune(word)
			b.WriteString(strings.ToUpper(string(r[0])))
		}
		c.Initials = b.String()
	}
	return c
}
