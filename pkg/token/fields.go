// Package token implements the auth token codec.
package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter separates the fields of a plain token.
const Delimiter = "&"

// FullFormSegments is the segment count of a full token.
const FullFormSegments = 5

// Field names.
const (
	FieldExpires       = "Expires"
	FieldLoginMasterID = "LoginMasterID"
	FieldDatabaseName  = "Database_Name"
	FieldIssued        = "Issued"
	FieldOrgID         = "OrgID"
)

// IdentityFields are the fields present in both the short and the full form.
var IdentityFields = []string{FieldLoginMasterID, FieldDatabaseName, FieldOrgID}

// Field is one named segment of a plain token.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fields is an ordered field mapping.
//
// It marshals to a JSON/YAML object whose keys keep the token order.
type Fields []Field

// ParseFields splits a plain token into fields.
//
// Exactly five segments produce the full form. Any other count produces the
// short form from the first three segments; missing segments are empty and
// extra segments are dropped.
func ParseFields(plain string) Fields {
	parts := strings.Split(plain, Delimiter)
	if len(parts) == FullFormSegments {
		return Fields{
			{Name: FieldExpires, Value: parts[0]},
			{Name: FieldLoginMasterID, Value: parts[1]},
			{Name: FieldDatabaseName, Value: parts[2]},
			{Name: FieldIssued, Value: parts[3]},
			{Name: FieldOrgID, Value: parts[4]},
		}
	}
	return Fields{
		{Name: FieldLoginMasterID, Value: segment(parts, 0)},
		{Name: FieldDatabaseName, Value: segment(parts, 1)},
		{Name: FieldOrgID, Value: segment(parts, 2)},
	}
}

// SegmentCount returns how many '&'-separated segments plain has.
func SegmentCount(plain string) int {
	return strings.Count(plain, Delimiter) + 1
}

// Truncated reports whether ParseFields drops segments of plain.
func Truncated(plain string) bool {
	n := SegmentCount(plain)
	return n != FullFormSegments && n > len(IdentityFields)
}

func segment(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// Len returns the number of fields.
func (f Fields) Len() int {
	return len(f)
}

// IsFull reports whether f is a full-form mapping.
func (f Fields) IsFull() bool {
	return len(f) == FullFormSegments
}

// Get returns the value of the named field.
func (f Fields) Get(name string) (string, bool) {
	for _, fd := range f {
		if fd.Name == name {
			return fd.Value, true
		}
	}
	return "", false
}

// Value returns the named field or "" when absent.
func (f Fields) Value(name string) string {
	v, _ := f.Get(name)
	return v
}

// Has reports whether all names are present.
func (f Fields) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := f.Get(name); !ok {
			return false
		}
	}
	return true
}

// Names returns the field names in order.
func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, fd := range f {
		names[i] = fd.Name
	}
	return names
}

// Map returns the fields as an unordered map.
func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, fd := range f {
		m[fd.Name] = fd.Value
	}
	return m
}

// Join re-assembles the plain token from the field values.
func (f Fields) Join() string {
	values := make([]string, len(f))
	for i, fd := range f {
		values[i] = fd.Value
	}
	return strings.Join(values, Delimiter)
}

// MarshalJSON encodes f as an object with ordered keys. Values are not
// HTML escaped, so the delimiter stays a literal "&"; an outer json.Marshal
// still escapes the result if it is configured to.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, fd := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(fd.Name); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err := enc.Encode(fd.Value); err != nil {
			return nil, err
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// trimNewline drops the newline json.Encoder appends after each value.
func trimNewline(buf *bytes.Buffer) {
	buf.Truncate(buf.Len() - 1)
}

// UnmarshalJSON decodes an object of string values, keeping key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("token: fields must be a JSON object, got %v", tok)
	}

	var out Fields
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("token: unexpected field key %v", kt)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("token: field %s: %w", key, err)
		}
		out = append(out, Field{Name: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = out
	return nil
}

// MarshalYAML encodes f as a mapping with ordered keys.
func (f Fields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, fd := range f {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fd.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fd.Value},
		)
	}
	return node, nil
}
