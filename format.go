package docsel

import (
	"regexp"
	"strconv"
	"strings"
)

// Alignment is a paragraph alignment.
type Alignment string

// Paragraph alignments.
const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Format is a set of formatting attributes. Nil fields are left untouched.
type Format struct {
	Bold           *bool
	Italic         *bool
	Underline      *bool
	FontSize       *float64
	FontName       *string
	FontColor      *string
	Alignment      *Alignment
	ParagraphStyle *string
}

// IsZero reports whether no attribute is set.
func (f Format) IsZero() bool {
	return f == (Format{})
}

// String lists the set attributes as key=value pairs using the option
// names ParseFormat accepts.
func (f Format) String() string {
	var parts []string
	add := func(key, value string) { parts = append(parts, key+"="+value) }
	if f.Bold != nil {
		add("bold", strconv.FormatBool(*f.Bold))
	}
	if f.Italic != nil {
		add("italic", strconv.FormatBool(*f.Italic))
	}
	if f.Underline != nil {
		add("underline", strconv.FormatBool(*f.Underline))
	}
	if f.FontSize != nil {
		add("font_size", strconv.FormatFloat(*f.FontSize, 'f', -1, 64))
	}
	if f.FontName != nil {
		add("font_name", strconv.Quote(*f.FontName))
	}
	if f.FontColor != nil {
		add("font_color", *f.FontColor)
	}
	if f.Alignment != nil {
		add("alignment", string(*f.Alignment))
	}
	if f.ParagraphStyle != nil {
		add("paragraph_style", strconv.Quote(*f.ParagraphStyle))
	}
	return strings.Join(parts, " ")
}

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// ParseFormat converts a formatting options dictionary into a Format.
// Unrecognized keys are ignored. Recognized keys with a value of the wrong
// type return an EINVALID error.
func ParseFormat(options map[string]any) (Format, error) {
	var f Format
	for key, v := range options {
		switch key {
		case "bold":
			b, err := formatBool(key, v)
			if err != nil {
				return Format{}, err
			}
			f.Bold = &b
		case "italic":
			b, err := formatBool(key, v)
			if err != nil {
				return Format{}, err
			}
			f.Italic = &b
		case "underline":
			b, err := formatBool(key, v)
			if err != nil {
				return Format{}, err
			}
			f.Underline = &b
		case "font_size":
			n, ok := asFloat(v)
			if !ok || n <= 0 {
				return Format{}, Errorf(EINVALID, "font_size must be a positive number")
			}
			f.FontSize = &n
		case "font_name":
			s, ok := v.(string)
			if !ok || s == "" {
				return Format{}, Errorf(EINVALID, "font_name must be a non-empty string")
			}
			f.FontName = &s
		case "font_color":
			s, ok := v.(string)
			if !ok || !hexColor.MatchString(s) {
				return Format{}, Errorf(EINVALID, "font_color must be a hex color like \"FF0000\"")
			}
			s = strings.ToUpper(strings.TrimPrefix(s, "#"))
			f.FontColor = &s
		case "alignment":
			s, _ := v.(string)
			a := Alignment(strings.ToLower(s))
			switch a {
			case AlignLeft, AlignCenter, AlignRight, AlignJustify:
			default:
				return Format{}, Errorf(EINVALID, "alignment must be one of left, center, right, justify")
			}
			f.Alignment = &a
		case "paragraph_style":
			s, ok := v.(string)
			if !ok || s == "" {
				return Format{}, Errorf(EINVALID, "paragraph_style must be a non-empty string")
			}
			f.ParagraphStyle = &s
		}
	}
	return f, nil
}

func formatBool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, Errorf(EINVALID, "%s must be a boolean", key)
	}
	return b, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
