package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const attributeGroupsKey = "_attributeGroups"

// Entry is one member of a schema document, kept in document order.
// Location is set when the entry came from a reserved sub-map (_links/_meta)
// rather than from the top level.
type Entry struct {
	Name     string
	Location Location
	Raw      json.RawMessage
}

// Document is an ordered view over a raw form schema payload.
type Document struct {
	source          Source
	Entries         []Entry
	AttributeGroups []AttributeGroup
}

// Parse decodes a raw form schema. Member order is preserved so normalised
// fields come out in the order the server declared them.
func Parse(data []byte) (Document, error) {
	members, err := orderedMembers(data)
	if err != nil {
		return Document{}, err
	}

	doc := Document{Entries: make([]Entry, 0, len(members))}
	for _, member := range members {
		switch member.name {
		case attributeGroupsKey:
			doc.AttributeGroups = parseAttributeGroups(member.raw)
		case string(LocationLinks), string(LocationMeta):
			nested, err := orderedMembers(member.raw)
			if err != nil {
				// Not a sub-map of descriptors; keep it as a plain entry.
				doc.Entries = append(doc.Entries, Entry{Name: member.name, Raw: member.raw})
				continue
			}
			for _, child := range nested {
				doc.Entries = append(doc.Entries, Entry{
					Name:     child.name,
					Location: Location(member.name),
					Raw:      child.raw,
				})
			}
		default:
			doc.Entries = append(doc.Entries, Entry{Name: member.name, Raw: member.raw})
		}
	}
	return doc, nil
}

// NewDocument parses data and records where it was loaded from.
func NewDocument(src Source, data []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, fmt.Errorf("schema: %s: %w", src.Location(), err)
	}
	doc.source = src
	return doc, nil
}

// MustParse panics if data is not a valid schema document. Useful for tests.
func MustParse(data []byte) Document {
	doc, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin of the document, if known.
func (d Document) Source() Source {
	return d.source
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

type member struct {
	name string
	raw  json.RawMessage
}

func orderedMembers(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schema: decode document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("schema: document must be a JSON object")
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema: decode key: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("schema: unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("schema: decode %q: %w", name, err)
		}
		members = append(members, member{name: name, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("schema: decode document: %w", err)
	}
	return members, nil
}

func parseAttributeGroups(raw json.RawMessage) []AttributeGroup {
	var groups []AttributeGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil
	}
	out := groups[:0]
	for _, group := range groups {
		if group.Name == "" {
			continue
		}
		out = append(out, group)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
