package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringList is a list of domain names that may be written as a single string
// or as a list:
//
//	input_domains: lines1
//	input_domains: [lines2, lines1]
//
// A null or absent value decodes to nil; an explicit empty list decodes to an
// empty, non-nil slice.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*s = StringList{one}
		return nil
	case yaml.SequenceNode:
		many := make([]string, 0, len(value.Content))
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = StringList(many)
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = nil
		return nil
	}
	if b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = StringList{one}
		return nil
	}
	many := []string{}
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*s = StringList(many)
	return nil
}

// DefaultIndexKey is the bucket applied to every domain.
const DefaultIndexKey = "__DEFAULT__"

// IndexSpec lists index columns per domain. Two shapes are accepted in the
// document; both normalize to the mapping form on decode:
//
//	indexes: [id, day]                      # same as {__DEFAULT__: [id, day]}
//	indexes: {__DEFAULT__: [id], aa: [day]}
type IndexSpec map[string][]string

// For returns the default index columns followed by the domain-specific ones.
func (s IndexSpec) For(domain string) []string {
	def, own := s[DefaultIndexKey], s[domain]
	if len(def) == 0 && len(own) == 0 {
		return nil
	}
	out := make([]string, 0, len(def)+len(own))
	out = append(out, def...)
	return append(out, own...)
}

// Clone returns a deep copy of s.
func (s IndexSpec) Clone() IndexSpec {
	if s == nil {
		return nil
	}
	out := make(IndexSpec, len(s))
	for k, cols := range s {
		out[k] = append([]string(nil), cols...)
	}
	return out
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *IndexSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var flat []string
		if err := value.Decode(&flat); err != nil {
			return err
		}
		*s = IndexSpec{DefaultIndexKey: flat}
		return nil
	case yaml.MappingNode:
		var m map[string][]string
		if err := value.Decode(&m); err != nil {
			return err
		}
		*s = IndexSpec(m)
		return nil
	default:
		return fmt.Errorf("line %d: indexes must be a list or a mapping of domain to list", value.Line)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *IndexSpec) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = nil
		return nil
	}
	if b[0] == '[' {
		var flat []string
		if err := json.Unmarshal(b, &flat); err != nil {
			return err
		}
		*s = IndexSpec{DefaultIndexKey: flat}
		return nil
	}
	var m map[string][]string
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("indexes must be a list or a mapping of domain to list: %w", err)
	}
	*s = IndexSpec(m)
	return nil
}
