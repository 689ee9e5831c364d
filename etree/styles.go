package etree

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"
)

// maxStyleDepth bounds basedOn chains so that cyclic style sheets terminate.
const maxStyleDepth = 16

// style is one w:style definition.
type style struct {
	id      string
	name    string
	kind    string // paragraph, character, table, numbering
	basedOn string
	bold    *bool
	numID   string
	ilvl    string
}

// styleSheet resolves style IDs to display names and inherited properties.
type styleSheet struct {
	byID             map[string]*style
	defaultParagraph string
	defaultBold      bool
}

func parseStyles(doc *etree.Document) *styleSheet {
	ss := &styleSheet{byID: make(map[string]*style)}
	if doc == nil || doc.Root() == nil {
		return ss
	}
	root := doc.Root()

	if rPr := root.FindElement("w:docDefaults/w:rPrDefault/w:rPr"); rPr != nil {
		if b := rPr.SelectElement("w:b"); b != nil {
			ss.defaultBold = onOff(b)
		}
	}

	for _, el := range root.SelectElements("w:style") {
		s := &style{
			id:   el.SelectAttrValue("w:styleId", ""),
			kind: el.SelectAttrValue("w:type", "paragraph"),
		}
		if s.id == "" {
			continue
		}
		if name := el.SelectElement("w:name"); name != nil {
			s.name = displayName(name.SelectAttrValue("w:val", ""))
		}
		if based := el.SelectElement("w:basedOn"); based != nil {
			s.basedOn = based.SelectAttrValue("w:val", "")
		}
		if b := el.FindElement("w:rPr/w:b"); b != nil {
			v := onOff(b)
			s.bold = &v
		}
		if numPr := el.FindElement("w:pPr/w:numPr"); numPr != nil {
			s.numID, s.ilvl = numbering(numPr)
		}
		ss.byID[s.id] = s
		if s.kind == "paragraph" && onOffAttr(el.SelectAttr("w:default")) {
			ss.defaultParagraph = s.id
		}
	}
	return ss
}

// displayName capitalizes the first letter of a built-in style name, the
// way word processors present "heading 1" as "Heading 1".
func displayName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// name returns the display name of a style ID. Unknown IDs are returned as is.
func (ss *styleSheet) name(id string) string {
	if s, ok := ss.byID[id]; ok && s.name != "" {
		return s.name
	}
	return id
}

// id resolves a display name or style ID to a style ID.
func (ss *styleSheet) id(nameOrID string) (string, bool) {
	if _, ok := ss.byID[nameOrID]; ok {
		return nameOrID, true
	}
	for id, s := range ss.byID {
		if strings.EqualFold(s.name, nameOrID) {
			return id, true
		}
	}
	return "", false
}

// chain calls fn for the style and its ancestors until fn returns true.
func (ss *styleSheet) chain(id string, fn func(*style) bool) {
	for depth := 0; id != "" && depth < maxStyleDepth; depth++ {
		s, ok := ss.byID[id]
		if !ok || fn(s) {
			return
		}
		id = s.basedOn
	}
}

// styleBold returns the bold flag a style defines or inherits.
func (ss *styleSheet) styleBold(id string) (bold, ok bool) {
	ss.chain(id, func(s *style) bool {
		if s.bold != nil {
			bold, ok = *s.bold, true
		}
		return ok
	})
	return bold, ok
}

// paragraphStyleID returns the style ID applied to a w:p.
func (ss *styleSheet) paragraphStyleID(p *etree.Element) string {
	if ps := p.FindElement("w:pPr/w:pStyle"); ps != nil {
		if id := ps.SelectAttrValue("w:val", ""); id != "" {
			return id
		}
	}
	return ss.defaultParagraph
}

// runBold resolves the bold flag of a w:r: direct formatting first, then
// the character style, the paragraph style and the document defaults.
func (ss *styleSheet) runBold(r *etree.Element, paragraphStyle string) bool {
	rPr := r.SelectElement("w:rPr")
	if rPr != nil {
		if b := rPr.SelectElement("w:b"); b != nil {
			return onOff(b)
		}
		if rs := rPr.SelectElement("w:rStyle"); rs != nil {
			if bold, ok := ss.styleBold(rs.SelectAttrValue("w:val", "")); ok {
				return bold
			}
		}
	}
	if bold, ok := ss.styleBold(paragraphStyle); ok {
		return bold
	}
	return ss.defaultBold
}

// runStyleName returns the character style of a run, if any.
func (ss *styleSheet) runStyleName(r *etree.Element) string {
	if rs := r.FindElement("w:rPr/w:rStyle"); rs != nil {
		return ss.name(rs.SelectAttrValue("w:val", ""))
	}
	return ""
}

// listSignature returns "numId:ilvl" for list paragraphs and "" otherwise.
func (ss *styleSheet) listSignature(p *etree.Element, styleID string) string {
	numID, ilvl := "", ""
	if numPr := p.FindElement("w:pPr/w:numPr"); numPr != nil {
		numID, ilvl = numbering(numPr)
	}
	if numID == "" {
		ss.chain(styleID, func(s *style) bool {
			if s.numID != "" {
				numID = s.numID
				if ilvl == "" {
					ilvl = s.ilvl
				}
			}
			return numID != ""
		})
	}
	if numID == "" || numID == "0" {
		return ""
	}
	if ilvl == "" {
		ilvl = "0"
	}
	return numID + ":" + ilvl
}

func numbering(numPr *etree.Element) (numID, ilvl string) {
	if n := numPr.SelectElement("w:numId"); n != nil {
		numID = n.SelectAttrValue("w:val", "")
	}
	if l := numPr.SelectElement("w:ilvl"); l != nil {
		ilvl = l.SelectAttrValue("w:val", "")
	}
	return numID, ilvl
}

// onOff reads a WordprocessingML on/off property such as <w:b/>.
func onOff(el *etree.Element) bool {
	a := el.SelectAttr("w:val")
	if a == nil {
		return true
	}
	return onOffAttr(a)
}

func onOffAttr(a *etree.Attr) bool {
	if a == nil {
		return false
	}
	switch strings.ToLower(a.Value) {
	case "0", "false", "off":
		return false
	}
	return true
}
