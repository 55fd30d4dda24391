// Package filter decides, per filesystem entry, whether it is included when
// a tree is captured from disk. Either a global ordered list of ignore
// patterns applies, or a directory-local rule file replaces it for the whole
// read.
package filter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// RuleFileName is the directory-local rule file. It is always excluded from
// the captured tree.
const RuleFileName = ".f2t2f"

// RuleType tags a rule file as a whitelist or a blacklist.
type RuleType int

const (
	Blacklist RuleType = iota
	Whitelist
)

// Rules is a parsed rule file: its type tag and the ordered glob patterns.
type Rules struct {
	Type     RuleType
	Patterns []string
}

// ConfigError reports a malformed rule file. It is recovered locally by
// falling back to the global ignore patterns and is never fatal.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid rule file %s: %s", e.Path, e.Reason)
}

// ParseRuleFile parses a rule file: a `type:` tag line, a `---` separator,
// then pattern lines. Blank lines and `#` comments are skipped.
func ParseRuleFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: err.Error()}
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return nil, &ConfigError{Path: path, Reason: "missing type tag"}
	}

	tag := strings.ToLower(strings.TrimSpace(lines[i]))
	if !strings.HasPrefix(tag, "type:") {
		return nil, &ConfigError{Path: path, Reason: "first line must be a type tag"}
	}
	rules := &Rules{}
	switch strings.TrimSpace(strings.TrimPrefix(tag, "type:")) {
	case "whitelist":
		rules.Type = Whitelist
	case "blacklist":
		rules.Type = Blacklist
	default:
		return nil, &ConfigError{Path: path, Reason: "type must be whitelist or blacklist"}
	}

	i++
	sep := -1
	for j := i; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "---" {
			sep = j
			break
		}
	}
	if sep == -1 {
		return nil, &ConfigError{Path: path, Reason: "missing --- separator"}
	}

	for _, line := range lines[sep+1:] {
		p := strings.TrimSpace(line)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		rules.Patterns = append(rules.Patterns, p)
	}
	return rules, nil
}

// Matcher applies one rule source for a whole directory read. When the root
// holds a well-formed rule file, its rules replace the global ignore
// patterns; otherwise the globals apply.
type Matcher struct {
	root   string
	ignore []string
	rules  *Rules
}

// NewMatcher builds the matcher for a read rooted at root. ignore is the
// global pattern list from configuration. A malformed rule file silently
// falls back to the globals.
func NewMatcher(root string, ignore []string) *Matcher {
	m := &Matcher{root: root, ignore: ignore}
	rulePath := filepath.Join(root, RuleFileName)
	if _, err := os.Stat(rulePath); err == nil {
		if rules, err := ParseRuleFile(rulePath); err == nil {
			m.rules = rules
		}
	}
	return m
}

// RuleMode reports whether a local rule file governs this read.
func (m *Matcher) RuleMode() bool { return m.rules != nil }

// RuleType returns the active rule file's type. Only meaningful in rule mode.
func (m *Matcher) RuleType() RuleType { return m.rules.Type }

// NameIgnored reports whether the entry's base name matches any global
// ignore pattern. Used outside rule mode.
func (m *Matcher) NameIgnored(name string) bool {
	for _, pattern := range m.ignore {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Matched reports whether the entry matches any rule-file pattern, by exact
// absolute path, base-name glob, or root-relative POSIX path glob.
func (m *Matcher) Matched(abs, rel, name string) bool {
	for _, pattern := range m.rules.Patterns {
		normalized := strings.ReplaceAll(pattern, `\`, "/")
		if filepath.IsAbs(pattern) {
			if filepath.Clean(pattern) == filepath.Clean(abs) {
				return true
			}
			continue
		}
		if ok, err := doublestar.Match(normalized, name); err == nil && ok {
			return true
		}
		if rel != "" {
			if ok, err := doublestar.Match(normalized, rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}
