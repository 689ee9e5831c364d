package docsel

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Relation names the positional algorithm connecting an anchor to its
// target candidates.
type Relation string

// Supported relations.
const (
	RelationAllOccurrencesWithin Relation = "all_occurrences_within"
	RelationFirstOccurrenceAfter Relation = "first_occurrence_after"
	RelationParentOf             Relation = "parent_of"
	RelationImmediatelyFollowing Relation = "immediately_following"
)

// Valid reports whether r is one of the supported relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationAllOccurrencesWithin, RelationFirstOccurrenceAfter, RelationParentOf, RelationImmediatelyFollowing:
		return true
	}
	return false
}

// TargetSpec describes an element kind and the filters narrowing it.
type TargetSpec struct {
	Type    ElementKind `json:"type"`
	Filters []Filter    `json:"filters,omitempty"`
}

// Locator is a declarative query selecting elements of a document.
//
// Anchor and Relation are either both set or both unset.
type Locator struct {
	Target   *TargetSpec `json:"target"`
	Anchor   *TargetSpec `json:"anchor,omitempty"`
	Relation Relation    `json:"relation,omitempty"`
}

// String returns the JSON form of the locator.
func (l *Locator) String() string {
	b, err := json.Marshal(l)
	if err != nil {
		return fmt.Sprintf("%+v", *l)
	}
	return string(b)
}

// Validate checks the structure of a locator built in code. It does not
// touch any document.
func (l *Locator) Validate() error {
	if l == nil || l.Target == nil {
		return SyntaxErrorf(l, "locator must have a 'target'")
	}
	if err := l.Target.validate("target"); err != nil {
		return err
	}
	if l.Target.Type.IsPseudo() {
		return SyntaxErrorf(l.Target, "%q may only be used as an anchor", l.Target.Type)
	}
	if l.Anchor == nil && l.Relation != "" {
		return SyntaxErrorf(l, "'relation' requires an 'anchor'")
	}
	if l.Anchor != nil {
		if l.Relation == "" {
			return SyntaxErrorf(l, "'anchor' requires a 'relation'")
		}
		if !l.Relation.Valid() {
			return SyntaxErrorf(l, "unknown relation %q", l.Relation)
		}
		if err := l.Anchor.validate("anchor"); err != nil {
			return err
		}
		if l.Anchor.Type.IsPseudo() {
			if len(l.Anchor.Filters) > 0 {
				return SyntaxErrorf(l.Anchor, "%q anchors take no filters", l.Anchor.Type)
			}
			if l.Relation == RelationParentOf {
				return SyntaxErrorf(l, "%q has no parent", l.Anchor.Type)
			}
		}
	}
	return nil
}

func (s *TargetSpec) validate(field string) error {
	if s.Type == "" {
		return SyntaxErrorf(s, "%s must have a 'type'", field)
	}
	if k, ok := ParseElementKind(string(s.Type)); !ok || k != s.Type {
		return SyntaxErrorf(s, "unknown element type %q", s.Type)
	}
	for i := range s.Filters {
		if err := s.Filters[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseLocator decodes and validates a JSON locator.
func ParseLocator(data []byte) (*Locator, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, SyntaxErrorf(string(data), "locator is not valid JSON: %s", err)
	}
	return DecodeLocator(v)
}

// DecodeLocator validates a locator already decoded into generic JSON values
// (maps, slices, strings, numbers, booleans) and converts it to a Locator.
// Checks run in a fixed order and the first failure is returned.
func DecodeLocator(v any) (*Locator, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, SyntaxErrorf(v, "locator must be an object")
	}
	rawTarget, ok := obj["target"]
	if !ok {
		return nil, SyntaxErrorf(v, "locator must have a 'target'")
	}

	target, err := decodeSpecHead(rawTarget, "target")
	if err != nil {
		return nil, err
	}
	if target.Type.IsPseudo() {
		return nil, SyntaxErrorf(rawTarget, "%q may only be used as an anchor", target.Type)
	}

	loc := &Locator{Target: target}
	rawAnchor, hasAnchor := obj["anchor"]
	rawRelation, hasRelation := obj["relation"]
	switch {
	case hasAnchor && !hasRelation:
		return nil, SyntaxErrorf(v, "'anchor' requires a 'relation'")
	case hasRelation && !hasAnchor:
		return nil, SyntaxErrorf(v, "'relation' requires an 'anchor'")
	case hasAnchor:
		rel, err := decodeRelation(rawRelation)
		if err != nil {
			return nil, err
		}
		anchor, err := decodeSpecHead(rawAnchor, "anchor")
		if err != nil {
			return nil, err
		}
		loc.Anchor, loc.Relation = anchor, rel
	}

	if loc.Target.Filters, err = decodeFilters(rawTarget); err != nil {
		return nil, err
	}
	if loc.Anchor != nil {
		if loc.Anchor.Filters, err = decodeFilters(rawAnchor); err != nil {
			return nil, err
		}
		id, err := decodeIdentifier(rawAnchor)
		if err != nil {
			return nil, err
		}
		loc.Anchor.Filters = append(loc.Anchor.Filters, id...)
	}

	// Anchor-specific rules are checked by Validate.
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return loc, nil
}

// decodeSpecHead decodes the object shape and element type of a spec.
func decodeSpecHead(v any, field string) (*TargetSpec, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, SyntaxErrorf(v, "%s must be an object", field)
	}
	rawType, ok := obj["type"]
	if !ok {
		return nil, SyntaxErrorf(v, "%s must have a 'type'", field)
	}
	name, ok := rawType.(string)
	if !ok {
		return nil, SyntaxErrorf(v, "%s 'type' must be a string", field)
	}
	kind, ok := ParseElementKind(name)
	if !ok {
		return nil, SyntaxErrorf(v, "unknown element type %q", name)
	}
	return &TargetSpec{Type: kind}, nil
}

// decodeRelation accepts either a bare relation name or {"type": name}.
func decodeRelation(v any) (Relation, error) {
	name, ok := v.(string)
	if !ok {
		obj, isObj := v.(map[string]any)
		if !isObj {
			return "", SyntaxErrorf(v, "'relation' must be a string or an object")
		}
		if name, ok = obj["type"].(string); !ok {
			return "", SyntaxErrorf(v, "'relation' must have a string 'type'")
		}
	}
	rel := Relation(name)
	if !rel.Valid() {
		return "", SyntaxErrorf(v, "unknown relation %q", name)
	}
	return rel, nil
}

func decodeFilters(spec any) ([]Filter, error) {
	obj := spec.(map[string]any)
	raw, ok := obj["filters"]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, SyntaxErrorf(raw, "'filters' must be a list")
	}
	filters := make([]Filter, 0, len(list))
	for _, item := range list {
		f, err := DecodeFilter(item)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// decodeIdentifier translates an anchor's optional identifier object
// {"text": ..., "index": ...} into contains_text and index_in_parent filters.
func decodeIdentifier(spec any) ([]Filter, error) {
	obj := spec.(map[string]any)
	raw, ok := obj["identifier"]
	if !ok || raw == nil {
		return nil, nil
	}
	id, ok := raw.(map[string]any)
	if !ok {
		return nil, SyntaxErrorf(raw, "'identifier' must be an object")
	}
	var filters []Filter
	if text, ok := id["text"]; ok {
		s, ok := text.(string)
		if !ok {
			return nil, SyntaxErrorf(raw, "identifier 'text' must be a string")
		}
		filters = append(filters, ContainsText(s))
	}
	if index, ok := id["index"]; ok {
		n, ok := asInt(index)
		if !ok {
			return nil, SyntaxErrorf(raw, "identifier 'index' must be an integer")
		}
		filters = append(filters, IndexInParent(n))
	}
	return filters, nil
}
