// Package differ provides semantic comparison of emitted CloudFormation templates.
//
// Both sides are normalized through JSON before comparison so a freshly built
// template and one loaded from disk compare equal when they describe the same stack.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	netgraph "github.com/lex00/netgraph-go"
)

// outputType is the entry type reported for template outputs.
const outputType = "Output"

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Result contains the difference between two templates.
type Result struct {
	Diff    netgraph.TemplateDiff
	Summary netgraph.DiffSummary
}

// Identical reports whether the templates had no differences.
func (r *Result) Identical() bool {
	return r.Summary.Total == 0
}

// Compare compares two CloudFormation templates and returns differences.
func Compare(template1, template2 *netgraph.Template, opts Options) (*Result, error) {
	t1, err := normalize(template1)
	if err != nil {
		return nil, fmt.Errorf("normalizing first template: %w", err)
	}
	t2, err := normalize(template2)
	if err != nil {
		return nil, fmt.Errorf("normalizing second template: %w", err)
	}

	result := &Result{}
	res1, res2 := t1.Resources, t2.Resources

	for name, def := range res2 {
		if _, exists := res1[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, netgraph.DiffEntry{Resource: name, Type: def.Type})
		}
	}

	for name, def := range res1 {
		if _, exists := res2[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, netgraph.DiffEntry{Resource: name, Type: def.Type})
		}
	}

	for name, def1 := range res1 {
		if def2, exists := res2[name]; exists {
			if changes := compareResources(def1, def2, opts); len(changes) > 0 {
				result.Diff.Modified = append(result.Diff.Modified, netgraph.DiffEntry{
					Resource: name,
					Type:     def1.Type,
					Changes:  changes,
				})
			}
		}
	}

	compareOutputs(&result.Diff, t1.Outputs, t2.Outputs, opts)

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = netgraph.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := LoadTemplate(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := LoadTemplate(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// LoadTemplate loads a CloudFormation template from a JSON or YAML file.
func LoadTemplate(path string) (*netgraph.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var template netgraph.Template
	if err := json.Unmarshal(data, &template); err != nil {
		if err := yaml.Unmarshal(data, &template); err != nil {
			return nil, fmt.Errorf("failed to parse as JSON or YAML: %w", err)
		}
	}

	return &template, nil
}

// normalize round-trips a template through JSON so typed property structs,
// intrinsics and YAML-decoded values all compare as plain maps, slices and float64.
func normalize(t *netgraph.Template) (*netgraph.Template, error) {
	if t == nil {
		return &netgraph.Template{}, nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var out netgraph.Template
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// compareResources compares two resource definitions and returns changes.
func compareResources(def1, def2 netgraph.ResourceDef, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)

	if !equalStringSlices(def1.DependsOn, def2.DependsOn) {
		changes = append(changes, "DependsOn changed")
	}

	return changes
}

// compareProperties recursively compares property maps. Nested maps are
// descended into so a changed tag or intrinsic reports its full path.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	for key, val2 := range props2 {
		path := joinPath(prefix, key)

		val1, exists := props1[key]
		if !exists {
			changes = append(changes, fmt.Sprintf("%s added", path))
			continue
		}

		m1, ok1 := val1.(map[string]any)
		m2, ok2 := val2.(map[string]any)
		if ok1 && ok2 {
			changes = append(changes, compareProperties(path, m1, m2, opts)...)
			continue
		}

		if !deepEqual(val1, val2, opts) {
			changes = append(changes, fmt.Sprintf("%s modified", path))
		}
	}

	for key := range props1 {
		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", joinPath(prefix, key)))
		}
	}

	sort.Strings(changes)
	return changes
}

func compareOutputs(diff *netgraph.TemplateDiff, out1, out2 map[string]netgraph.Output, opts Options) {
	for name := range out2 {
		if _, exists := out1[name]; !exists {
			diff.Added = append(diff.Added, netgraph.DiffEntry{Resource: name, Type: outputType})
		}
	}
	for name, o1 := range out1 {
		o2, exists := out2[name]
		if !exists {
			diff.Removed = append(diff.Removed, netgraph.DiffEntry{Resource: name, Type: outputType})
			continue
		}

		var changes []string
		if !deepEqual(o1.Value, o2.Value, opts) {
			changes = append(changes, "Value modified")
		}
		if o1.Description != o2.Description {
			changes = append(changes, "Description modified")
		}
		if (o1.Export == nil) != (o2.Export == nil) ||
			(o1.Export != nil && !deepEqual(o1.Export.Name, o2.Export.Name, opts)) {
			changes = append(changes, "Export modified")
		}
		if len(changes) > 0 {
			diff.Modified = append(diff.Modified, netgraph.DiffEntry{Resource: name, Type: outputType, Changes: changes})
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// deepEqual compares two values deeply, optionally ignoring order.
func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalizeValue(a)
		b = normalizeValue(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeValue sorts every slice by the JSON encoding of its elements.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		keys := make([]string, len(val))
		for i, item := range val {
			result[i] = normalizeValue(item)
		}
		for i, item := range result {
			data, _ := json.Marshal(item)
			keys[i] = string(data)
		}
		sort.Sort(byKey{items: result, keys: keys})
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = normalizeValue(v)
		}
		return result
	default:
		return v
	}
}

// byKey sorts items in lockstep with their precomputed keys.
type byKey struct {
	items []any
	keys  []string
}

func (b byKey) Len() int           { return len(b.items) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// equalStringSlices compares two string slices for equality.
func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortEntries sorts diff entries by resource name.
func sortEntries(entries []netgraph.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
