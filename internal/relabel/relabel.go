package relabel

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/harborlight/harborlight/internal/model"
)

//go:embed relabeling.json
var packagedTable []byte

// Table rewrites observed-property names and descriptions to canonical
// values so that many raw labels collapse onto one measurement type.
// Names are matched exactly; descriptions by case-insensitive substring
// containment, first match wins.
type Table struct {
	names        map[string]string
	descriptions map[string]string
	descKeys     []string
}

type tableFile struct {
	Name        map[string]string `json:"name"`
	Description map[string]string `json:"description"`
}

// Load parses the relabeling table packaged with the binary. A missing or
// malformed resource is fatal at startup, not recoverable per request.
func Load() (*Table, error) {
	return Parse(packagedTable)
}

// Parse builds a Table from raw JSON of the shape
// {"name": {raw: canonical}, "description": {substring: canonical}}.
func Parse(raw []byte) (*Table, error) {
	var file tableFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse relabeling table: %w", err)
	}

	t := &Table{
		names:        file.Name,
		descriptions: file.Description,
	}
	if t.names == nil {
		t.names = map[string]string{}
	}
	if t.descriptions == nil {
		t.descriptions = map[string]string{}
	}

	// Substring matching must be deterministic across runs.
	t.descKeys = make([]string, 0, len(t.descriptions))
	for k := range t.descriptions {
		t.descKeys = append(t.descKeys, k)
	}
	sort.Strings(t.descKeys)

	return t, nil
}

// CanonicalName maps a raw observed-property name to its canonical form,
// falling back to the raw name when no entry exists.
func (t *Table) CanonicalName(raw string) string {
	if canonical, ok := t.names[raw]; ok {
		return canonical
	}
	return raw
}

// CanonicalDescription maps a raw description by substring containment,
// falling back to the raw description when nothing matches.
func (t *Table) CanonicalDescription(raw string) string {
	lower := strings.ToLower(raw)
	for _, key := range t.descKeys {
		if strings.Contains(lower, strings.ToLower(key)) {
			return t.descriptions[key]
		}
	}
	return raw
}

// Apply rewrites every datastream's observed property in place.
func (t *Table) Apply(dev *model.CleanDevice) {
	for i := range dev.Datastreams {
		op := &dev.Datastreams[i].ObservedProperty
		op.Name = t.CanonicalName(op.Name)
		op.Description = t.CanonicalDescription(op.Description)
	}
}
