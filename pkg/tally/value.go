// Package tally rolls per-file detection values (licenses, copyrights, holders,
// authors, languages, packages) up a codebase tree into ranked value counts.
package tally

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// nullText is how a Null value renders in logs and tables.
const nullText = "(none)"

// Value is a detected attribute value. The zero Value is Null and stands for
// "nothing detected"; it is counted like any other value.
type Value struct {
	text    string
	present bool
}

// Null is the value of a resource with no detection for a kind.
var Null = Value{}

// V returns a present Value holding s.
func V(s string) Value {
	return Value{text: s, present: true}
}

// IsNull reports whether v stands for "no detection".
func (v Value) IsNull() bool {
	return !v.present
}

// Text returns the detected string, or "" for Null.
func (v Value) Text() string {
	return v.text
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if !v.present {
		return nullText
	}

	return v.text
}

// MarshalJSON encodes Null as JSON null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}

	data, err := json.Marshal(v.text)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	return data, nil
}

// UnmarshalJSON decodes JSON null into Null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null

		return nil
	}

	var s string

	err := json.Unmarshal(data, &s)
	if err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}

	*v = V(s)

	return nil
}

// MarshalYAML encodes Null as a YAML null.
func (v Value) MarshalYAML() (any, error) {
	if !v.present {
		return nil, nil //nolint:nilnil // a nil node is how yaml.v3 spells null.
	}

	return v.text, nil
}

// UnmarshalYAML decodes a YAML null into Null.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*v = Null

		return nil
	}

	var s string

	err := node.Decode(&s)
	if err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}

	*v = V(s)

	return nil
}

// Values wraps raw strings as present Values.
func Values(raw ...string) []Value {
	out := make([]Value, len(raw))
	for i, s := range raw {
		out[i] = V(s)
	}

	return out
}
