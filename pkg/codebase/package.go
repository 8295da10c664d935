package codebase

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	refTypeFile      = "file"
	refTypeDirectory = "directory"
)

// FileRef points from a package record back to a resource it was found in.
type FileRef struct {
	Path string `json:"path" yaml:"path"`
	Type string `json:"type" yaml:"type"`
}

// Package is a package record detected in a manifest or lockfile. Fields the
// model does not name are preserved in Extra and written back flat, next to
// the named fields, in both JSON and YAML.
type Package struct {
	Type      string         `json:"type,omitempty" yaml:"type,omitempty"`
	Namespace string         `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Version   string         `json:"version,omitempty" yaml:"version,omitempty"`
	PURL      string         `json:"purl,omitempty" yaml:"purl,omitempty"`
	Files     []FileRef      `json:"files,omitempty" yaml:"files,omitempty"`
	Extra     map[string]any `json:"-" yaml:"-"`
}

var packageKeys = []string{"type", "namespace", "name", "version", "purl", "files"}

// Clone returns a deep copy of the named fields and a shallow copy of Extra.
func (p Package) Clone() Package {
	p.Files = slices.Clone(p.Files)
	p.Extra = maps.Clone(p.Extra)

	return p
}

// WithFile returns a copy of p whose Files list includes ref exactly once.
func (p Package) WithFile(ref FileRef) Package {
	out := p.Clone()
	if !slices.Contains(out.Files, ref) {
		out.Files = append(out.Files, ref)
	}

	return out
}

// MarshalJSON flattens Extra next to the named fields.
func (p Package) MarshalJSON() ([]byte, error) {
	type plain Package

	named, err := json.Marshal(plain(p))
	if err != nil {
		return nil, fmt.Errorf("marshal package: %w", err)
	}

	if len(p.Extra) == 0 {
		return named, nil
	}

	merged := make(map[string]any, len(p.Extra)+len(packageKeys))
	maps.Copy(merged, p.Extra)

	err = json.Unmarshal(named, &merged)
	if err != nil {
		return nil, fmt.Errorf("merge package fields: %w", err)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal package: %w", err)
	}

	return data, nil
}

// UnmarshalJSON keeps unknown fields in Extra.
func (p *Package) UnmarshalJSON(data []byte) error {
	type plain Package

	var named plain

	err := json.Unmarshal(data, &named)
	if err != nil {
		return fmt.Errorf("unmarshal package: %w", err)
	}

	var all map[string]any

	err = json.Unmarshal(data, &all)
	if err != nil {
		return fmt.Errorf("unmarshal package: %w", err)
	}

	for _, key := range packageKeys {
		delete(all, key)
	}

	if len(all) > 0 {
		named.Extra = all
	}

	*p = Package(named)

	return nil
}

// MarshalYAML flattens Extra after the named fields, in key order.
func (p Package) MarshalYAML() (any, error) {
	type plain Package

	var node yaml.Node

	err := node.Encode(plain(p))
	if err != nil {
		return nil, fmt.Errorf("marshal package: %w", err)
	}

	node.Style &^= yaml.FlowStyle

	for _, key := range slices.Sorted(maps.Keys(p.Extra)) {
		if slices.Contains(packageKeys, key) {
			continue
		}

		var k, v yaml.Node

		k.SetString(key)

		err = v.Encode(p.Extra[key])
		if err != nil {
			return nil, fmt.Errorf("marshal package field %s: %w", key, err)
		}

		node.Content = append(node.Content, &k, &v)
	}

	return &node, nil
}

// UnmarshalYAML keeps unknown fields in Extra.
func (p *Package) UnmarshalYAML(node *yaml.Node) error {
	type plain Package

	var named plain

	err := node.Decode(&named)
	if err != nil {
		return fmt.Errorf("unmarshal package: %w", err)
	}

	var all map[string]any

	err = node.Decode(&all)
	if err != nil {
		return fmt.Errorf("unmarshal package: %w", err)
	}

	for _, key := range packageKeys {
		delete(all, key)
	}

	if len(all) > 0 {
		named.Extra = all
	}

	*p = Package(named)

	return nil
}
