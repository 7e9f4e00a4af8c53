// Package aircraft maps raw aircraft type strings onto canonical fleet tags.
package aircraft

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed types.yaml
var defaultTable []byte

// Rule maps a set of raw strings to one canonical tag
type Rule struct {
	Tag      string   `yaml:"tag"`
	Exact    []string `yaml:"exact"`
	Contains []string `yaml:"contains"`
}

// Normalizer resolves raw type strings using a rules table
type Normalizer struct {
	exact    map[string]string
	contains []containsRule
}

type containsRule struct {
	needle string
	tag    string
}

// Default returns a normalizer loaded with the built-in table
func Default() *Normalizer {
	n := &Normalizer{exact: make(map[string]string)}
	rules, err := ParseRules(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("aircraft: built-in type table is invalid: %v", err))
	}
	n.Add(rules...)
	return n
}

// ParseRules decodes a YAML rules table
func ParseRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode aircraft type table: %w", err)
	}
	for i, rule := range rules {
		if strings.TrimSpace(rule.Tag) == "" {
			return nil, fmt.Errorf("rule %d has no tag", i+1)
		}
	}
	return rules, nil
}

// LoadFile adds the rules from a YAML file. Rules added later win over
// earlier ones for exact matches and are tried first for substring matches.
func (n *Normalizer) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open aircraft type table: %w", err)
	}
	defer f.Close()

	rules, err := ParseRules(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	n.Add(rules...)
	return nil
}

// Add merges rules into the table
func (n *Normalizer) Add(rules ...Rule) {
	var added []containsRule
	for _, rule := range rules {
		tag := strings.TrimSpace(rule.Tag)
		n.exact[key(tag)] = tag
		for _, raw := range rule.Exact {
			n.exact[key(raw)] = tag
		}
		for _, needle := range rule.Contains {
			if k := key(needle); k != "" {
				added = append(added, containsRule{needle: k, tag: tag})
			}
		}
	}
	n.contains = append(added, n.contains...)
}

// Normalize returns the canonical tag for raw, or false if the type is unknown
func (n *Normalizer) Normalize(raw string) (string, bool) {
	k := key(raw)
	if k == "" {
		return "", false
	}
	if tag, ok := n.exact[k]; ok {
		return tag, true
	}
	for _, rule := range n.contains {
		if strings.Contains(k, rule.needle) {
			return rule.tag, true
		}
	}
	return "", false
}

func key(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
