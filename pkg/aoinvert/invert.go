// Package aoinvert flips the sign of ambient occlusion rule patterns in JSON
// level project files.
//
// Any object whose "name" is the target name (AmbientOcclusion by default)
// is a rule set. Each rule in its "rules" array may carry a "pattern" array
// of -1/0/1 values; inverting swaps -1 and 1 and leaves everything else alone.
package aoinvert

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/tilesmith/pkg/jsontree"
)

// DefaultTarget is the rule set name that is inverted.
const DefaultTarget = "AmbientOcclusion"

// Stats counts what a transform touched.
type Stats struct {
	// Found is true when at least one rule set matched.
	Found bool
	// Objects is the number of matched rule sets.
	Objects int
	// Modified is the number of rule patterns that were inverted.
	Modified int
}

// Change records one inverted rule pattern.
type Change struct {
	UID    string
	Before jsontree.Array
	After  jsontree.Array
}

// Inverter rewrites matching rule sets.
type Inverter struct {
	Target string
	Logger *zap.Logger
}

// New returns an Inverter for DefaultTarget.
func New(log *zap.Logger) *Inverter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inverter{Target: DefaultTarget, Logger: log}
}

func (inv *Inverter) log() *zap.Logger {
	if inv.Logger == nil {
		return zap.NewNop()
	}
	return inv.Logger
}

// TargetName returns the rule set name that is matched: Target, or
// DefaultTarget when Target is empty.
func (inv *Inverter) TargetName() string {
	if inv.Target == "" {
		return DefaultTarget
	}
	return inv.Target
}

// InvertPattern returns a copy of pattern with -1 and 1 swapped. Values that
// are not numerically -1 or 1, including non-numbers, are kept unchanged.
func InvertPattern(pattern jsontree.Array) jsontree.Array {
	out := make(jsontree.Array, len(pattern))
	for i, v := range pattern {
		out[i] = invertValue(v)
	}
	return out
}

func invertValue(v jsontree.Value) jsontree.Value {
	n, ok := v.(jsontree.Number)
	if !ok {
		return v
	}
	f, err := n.Float64()
	if err != nil {
		return v
	}
	switch f {
	case -1:
		return jsontree.Number("1")
	case 1:
		return jsontree.Number("-1")
	default:
		return v
	}
}

// Transform walks v depth first and returns a new document in which every
// matching rule set has its patterns inverted, along with what was changed.
// Scalars are shared with the input; objects and arrays are rebuilt, so v is
// never modified.
func (inv *Inverter) Transform(v jsontree.Value) (jsontree.Value, Stats, []Change) {
	w := &walker{target: inv.TargetName(), log: inv.log()}
	out := w.walk(v)
	return out, w.stats, w.changes
}

type walker struct {
	target  string
	log     *zap.Logger
	stats   Stats
	changes []Change
}

func (w *walker) walk(v jsontree.Value) jsontree.Value {
	switch t := v.(type) {
	case *jsontree.Object:
		if w.matches(t) {
			return w.ruleSet(t)
		}
		out := jsontree.NewObject(t.Len())
		for _, m := range t.Members {
			out.Members = append(out.Members, jsontree.Member{Key: m.Key, Value: w.walk(m.Value)})
		}
		return out
	case jsontree.Array:
		out := make(jsontree.Array, len(t))
		for i, item := range t {
			out[i] = w.walk(item)
		}
		return out
	default:
		return v
	}
}

func (w *walker) matches(obj *jsontree.Object) bool {
	name, ok := obj.Get("name")
	if !ok {
		return false
	}
	s, ok := name.(jsontree.String)
	return ok && string(s) == w.target
}

// ruleSet copies a matched object and inverts its rule patterns. Nested
// objects below a match are not searched further.
func (w *walker) ruleSet(obj *jsontree.Object) jsontree.Value {
	w.stats.Found = true
	w.stats.Objects++
	w.log.Info("Found rule set", zap.String("name", w.target), zap.String("uid", uidOf(obj)))

	out := jsontree.Clone(obj).(*jsontree.Object)

	rules, ok := obj.Get("rules")
	if !ok {
		return out
	}
	arr, ok := rules.(jsontree.Array)
	if !ok {
		return out
	}

	w.log.Info("Processing rules", zap.Int("count", len(arr)))
	newRules := make(jsontree.Array, len(arr))
	for i, rule := range arr {
		newRules[i] = w.rule(rule)
	}
	out.Set("rules", newRules)
	return out
}

func (w *walker) rule(rule jsontree.Value) jsontree.Value {
	copied := jsontree.Clone(rule)
	obj, ok := copied.(*jsontree.Object)
	if !ok {
		return copied
	}
	p, ok := obj.Get("pattern")
	if !ok {
		return copied
	}
	pattern, ok := p.(jsontree.Array)
	if !ok {
		return copied
	}

	inverted := InvertPattern(pattern)
	obj.Set("pattern", inverted)
	w.stats.Modified++

	uid := uidOf(obj)
	w.changes = append(w.changes, Change{UID: uid, Before: pattern, After: inverted})
	w.log.Info("Inverted rule pattern",
		zap.String("uid", uid),
		zap.String("before", FormatArray(pattern)),
		zap.String("after", FormatArray(inverted)),
	)
	return copied
}

func uidOf(obj *jsontree.Object) string {
	v, ok := obj.Get("uid")
	if !ok {
		return "unknown"
	}
	return FormatValue(v)
}

// FormatValue renders a value compactly for messages. Strings are written
// without quotes.
func FormatValue(v jsontree.Value) string {
	switch t := v.(type) {
	case jsontree.String:
		return string(t)
	case jsontree.Number:
		return string(t)
	case jsontree.Bool:
		if t {
			return "true"
		}
		return "false"
	case jsontree.Null:
		return "null"
	case jsontree.Array:
		return FormatArray(t)
	case *jsontree.Object:
		parts := make([]string, 0, t.Len())
		for _, m := range t.Members {
			parts = append(parts, m.Key+": "+FormatValue(m.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}

// FormatArray renders an array as "[a, b, c]".
func FormatArray(a jsontree.Array) string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = FormatValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
