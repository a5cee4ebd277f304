// Package env loads .env-style files into an ordered map.
//
// Parsing is deliberately simple and mirrors what shell `source` loops do
// with such files: blank lines and #-comments are skipped, lines without
// an = are ignored, and values are truncated at the first # that is not
// inside a quoted span. Loaded values are returned to the caller; nothing
// is ever exported into the process environment.
package env

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"stackup/internal/check"
)

// Map is an ordered name→value mapping. Keys keep first-insertion order;
// a repeated name keeps its position but takes the last value seen.
// Immutable once returned from Load.
type Map struct {
	keys   []string
	values map[string]string
}

// Get returns the value for name, or "" when absent.
func (m *Map) Get(name string) string {
	return m.values[name]
}

// Lookup returns the value for name and whether it is present.
func (m *Map) Lookup(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Keys returns the names in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of distinct names.
func (m *Map) Len() int { return len(m.keys) }

// Values returns a copy of the mapping, for callers that need a plain map
// (compose interpolation, secret lookup).
func (m *Map) Values() map[string]string {
	check.Assert(len(m.keys) == len(m.values), "env map keys and values out of sync")
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *Map) set(name, value string) {
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

// Result carries Load diagnostics.
type Result struct {
	ParsedLines int  // lines that contributed a name=value pair
	FileFound   bool // false when path did not exist and only defaults apply
}

// Load reads the file at path, merging over defaults (file wins, last
// occurrence wins). A missing file is not an error: the defaults are
// returned with FileFound=false and the caller decides whether to warn.
// Any other read failure is fatal.
func Load(path string, defaults map[string]string) (*Map, Result, error) {
	m := &Map{values: make(map[string]string)}

	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.set(name, defaults[name])
	}

	if path == "" {
		return m, Result{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, Result{}, nil
		}
		return nil, Result{}, fmt.Errorf("read env file %q: %w", path, err)
	}
	defer f.Close()

	res := Result{FileFound: true}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, rest, ok := strings.Cut(line, "=")
		if !ok {
			continue // malformed, not counted
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m.set(name, cleanValue(rest))
		res.ParsedLines++
	}
	if err := scanner.Err(); err != nil {
		return nil, Result{}, fmt.Errorf("read env file %q: %w", path, err)
	}

	return m, res, nil
}

// cleanValue strips an inline comment and surrounding whitespace.
//
// The comment heuristic truncates at the first # outside single or double
// quotes. It does not unquote or handle escapes; values that legitimately
// contain an unquoted # (URL fragments, passwords) are truncated. That
// matches the shell loaders this replaces and is a documented gap, not
// something to paper over with a fuller parser.
func cleanValue(raw string) string {
	var inSingle, inDouble bool
	for i, r := range raw {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '#' && !inSingle && !inDouble:
			return strings.TrimSpace(raw[:i])
		}
	}
	return strings.TrimSpace(raw)
}
