package aoinvert

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/tilesmith/pkg/jsontree"
)

func mustParse(t *testing.T, s string) jsontree.Value {
	t.Helper()
	v, err := jsontree.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func nums(vals ...int) jsontree.Array {
	out := make(jsontree.Array, len(vals))
	for i, v := range vals {
		out[i] = jsontree.Int(int64(v))
	}
	return out
}

func TestInvertPattern(t *testing.T) {
	assert.Equal(t, nums(1, 0, -1), InvertPattern(nums(-1, 0, 1)))

	mixed := jsontree.Array{
		jsontree.Number("2"),
		jsontree.Number("0.5"),
		jsontree.Number("1.0"),
		jsontree.String("1"),
		jsontree.Bool(true),
		jsontree.Null{},
	}
	got := InvertPattern(mixed)
	assert.Equal(t, jsontree.Number("2"), got[0])
	assert.Equal(t, jsontree.Number("0.5"), got[1])
	assert.Equal(t, jsontree.Number("-1"), got[2], "1.0 is numerically one")
	assert.Equal(t, jsontree.String("1"), got[3])
	assert.Equal(t, jsontree.Bool(true), got[4])
	assert.Equal(t, jsontree.Null{}, got[5])
}

func TestInvertPatternIsInvolution(t *testing.T) {
	values := []int{-1, 0, 1}
	// Every pattern of length 1..4 over {-1, 0, 1}.
	for length := 1; length <= 4; length++ {
		total := 1
		for i := 0; i < length; i++ {
			total *= len(values)
		}
		for n := 0; n < total; n++ {
			p := make([]int, length)
			k := n
			for i := range p {
				p[i] = values[k%3]
				k /= 3
			}
			pattern := nums(p...)
			assert.Equal(t, pattern, InvertPattern(InvertPattern(pattern)), "pattern %v", p)
		}
	}
}

func TestTransformExample(t *testing.T) {
	in := mustParse(t, `{"name":"AmbientOcclusion","rules":[{"uid":1,"pattern":[-1,0,1]}]}`)
	want := mustParse(t, `{"name":"AmbientOcclusion","rules":[{"uid":1,"pattern":[1,0,-1]}]}`)

	out, stats, changes := New(nil).Transform(in)
	assert.True(t, jsontree.Equal(want, out))
	assert.Equal(t, Stats{Found: true, Objects: 1, Modified: 1}, stats)
	require.Len(t, changes, 1)
	assert.Equal(t, "1", changes[0].UID)
}

func TestTransformNestedAndOrder(t *testing.T) {
	in := mustParse(t, `{
		"defs": {
			"layers": [
				{"z": 0, "name": "Walls", "rules": [{"uid": 9, "pattern": [1]}]},
				{"name": "AmbientOcclusion", "uid": 5, "extra": {"k": [1, 2]}, "rules": [
					{"uid": 10, "pattern": [-1, -1, 0], "active": true},
					{"uid": 11},
					{"uid": 12, "pattern": "not an array"},
					7
				]}
			]
		},
		"name": "AmbientOcclusion"
	}`)

	out, stats, _ := New(nil).Transform(in)

	// The root itself is named AmbientOcclusion but has no rules, so it is
	// copied as-is and not searched further.
	assert.True(t, jsontree.Equal(in, out), "root match stops descent")
	assert.Equal(t, Stats{Found: true, Objects: 1, Modified: 0}, stats)

	// Without the root match the nested rule set is reached.
	root := in.(*jsontree.Object)
	root.Members = root.Members[:1]
	out, stats, changes := New(nil).Transform(in)
	assert.Equal(t, Stats{Found: true, Objects: 1, Modified: 1}, stats)
	require.Len(t, changes, 1)
	assert.Equal(t, "10", changes[0].UID)

	want := mustParse(t, `{
		"defs": {
			"layers": [
				{"z": 0, "name": "Walls", "rules": [{"uid": 9, "pattern": [1]}]},
				{"name": "AmbientOcclusion", "uid": 5, "extra": {"k": [1, 2]}, "rules": [
					{"uid": 10, "pattern": [1, 1, 0], "active": true},
					{"uid": 11},
					{"uid": 12, "pattern": "not an array"},
					7
				]}
			]
		}
	}`)
	assert.True(t, jsontree.Equal(want, out))
}

func TestTransformDoesNotAliasInput(t *testing.T) {
	in := mustParse(t, `[{"name":"AmbientOcclusion","rules":[{"uid":"a","pattern":[1],"meta":{"x":1}}]}]`)
	snapshot := jsontree.Clone(in)

	out, _, _ := New(nil).Transform(in)
	rule := out.(jsontree.Array)[0].(*jsontree.Object)
	rules, _ := rule.Get("rules")
	meta, _ := rules.(jsontree.Array)[0].(*jsontree.Object).Get("meta")
	meta.(*jsontree.Object).Set("x", jsontree.Number("2"))

	assert.True(t, jsontree.Equal(snapshot, in), "input must stay untouched")
}

func TestTransformNameMustMatchExactly(t *testing.T) {
	for _, doc := range []string{
		`{"name":"ambientocclusion","rules":[{"pattern":[1]}]}`,
		`{"name":"AmbientOcclusion ","rules":[{"pattern":[1]}]}`,
		`{"Name":"AmbientOcclusion","rules":[{"pattern":[1]}]}`,
		`{"name":["AmbientOcclusion"],"rules":[{"pattern":[1]}]}`,
	} {
		_, stats, _ := New(nil).Transform(mustParse(t, doc))
		assert.False(t, stats.Found, doc)
	}
}

func TestTransformCustomTarget(t *testing.T) {
	inv := New(nil)
	inv.Target = "Shadows"
	_, stats, _ := inv.Transform(mustParse(t, `{"name":"Shadows","rules":[{"pattern":[1]},{"pattern":[]}]}`))
	assert.Equal(t, Stats{Found: true, Objects: 1, Modified: 2}, stats)
}

func TestEmptyTargetFallsBackToDefault(t *testing.T) {
	inv := New(nil)
	inv.Target = ""
	assert.Equal(t, DefaultTarget, inv.TargetName())

	_, stats, _ := inv.Transform(mustParse(t, `{"name":"AmbientOcclusion","rules":[{"pattern":[1]}]}`))
	assert.True(t, stats.Found)

	var buf bytes.Buffer
	(&Report{}).Print(&buf, inv.TargetName())
	assert.Equal(t, "No AmbientOcclusion objects found in the JSON file.\n", buf.String())
}

func TestTransformLogsRules(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	inv := New(zap.New(core))

	inv.Transform(mustParse(t, `{"name":"AmbientOcclusion","rules":[{"pattern":[-1,0,1]}]}`))

	entries := logs.FilterMessage("Inverted rule pattern").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "unknown", ctx["uid"])
	assert.Equal(t, "[-1, 0, 1]", ctx["before"])
	assert.Equal(t, "[1, 0, -1]", ctx["after"])
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestProcessWritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.json", `{"name":"AmbientOcclusion","rules":[{"uid":1,"pattern":[-1,0,1]}],"label":"ombre é"}`)
	out := filepath.Join(dir, "out.json")

	report, err := New(nil).Process(in, out, ProcessOptions{})
	require.NoError(t, err)
	assert.True(t, report.Written)
	assert.Equal(t, 1, report.Stats.Modified)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "AmbientOcclusion",
  "rules": [
    {
      "uid": 1,
      "pattern": [
        1,
        0,
        -1
      ]
    }
  ],
  "label": "ombre é"
}
`, string(data))
}

func TestProcessNoMatchWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.json", `{"layers":[{"name":"Walls","rules":[{"pattern":[1]}]}]}`)
	out := filepath.Join(dir, "out.json")

	report, err := New(nil).Process(in, out, ProcessOptions{})
	require.NoError(t, err)
	assert.False(t, report.Stats.Found)
	assert.False(t, report.Written)
	assert.NoFileExists(t, out)

	var buf bytes.Buffer
	report.Print(&buf, DefaultTarget)
	assert.Equal(t, "No AmbientOcclusion objects found in the JSON file.\n", buf.String())
}

func TestProcessDryRun(t *testing.T) {
	dir := t.TempDir()
	doc := `[{"name":"AmbientOcclusion","rules":[{"uid":1,"pattern":[-1]},{"uid":2,"pattern":[1,1]}]}]`
	in := writeFile(t, dir, "in.json", doc)
	out := filepath.Join(dir, "out.json")

	dry, err := New(nil).Process(in, out, ProcessOptions{DryRun: true})
	require.NoError(t, err)
	assert.False(t, dry.Written)
	assert.NoFileExists(t, out)

	full, err := New(nil).Process(in, filepath.Join(dir, "real.json"), ProcessOptions{})
	require.NoError(t, err)
	assert.Equal(t, full.Stats, dry.Stats, "dry run must report the same counts")
	assert.Equal(t, len(full.Changes), len(dry.Changes))

	var buf bytes.Buffer
	dry.Print(&buf, DefaultTarget)
	assert.Contains(t, buf.String(), "Pattern rules modified: 2")
	assert.Contains(t, buf.String(), "Dry run mode - no file saved.")
	assert.Contains(t, buf.String(), "Would save to: "+out)
	assert.Contains(t, buf.String(), "Rule UID 2: Pattern [1, 1] -> [-1, -1]")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "only the input and the real run output exist")
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"name": "AmbientOcclusion",`)
	good := writeFile(t, dir, "good.json", `{"name":"AmbientOcclusion","rules":[]}`)
	latin1 := writeFile(t, dir, "latin1.json", "{\"n\":\"caf\xe9\",\"name\":\"AmbientOcclusion\",\"rules\":[{\"pattern\":[1]}]}")

	tests := []struct {
		name  string
		in    string
		out   string
		class ErrorClass
		msg   string
	}{
		{"missing input", filepath.Join(dir, "missing.json"), filepath.Join(dir, "o1.json"), ClassNotFound, "Error: Input file '" + filepath.Join(dir, "missing.json") + "' not found."},
		{"malformed", bad, filepath.Join(dir, "o2.json"), ClassInvalidJSON, "Error: Invalid JSON in input file - "},
		{"not utf-8", latin1, filepath.Join(dir, "o4.json"), ClassInvalidEncoding, "Error: Input file '" + latin1 + "' is not valid UTF-8 - "},
		{"unwritable output", good, filepath.Join(dir, "no", "such", "dir", "o3.json"), ClassOther, "Error: writing "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil).Process(tt.in, tt.out, ProcessOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.class, Classify(err))
			assert.True(t, strings.HasPrefix(ProcessErrorMessage(tt.in, err), tt.msg), ProcessErrorMessage(tt.in, err))
			assert.NoFileExists(t, tt.out)
			assert.NotContains(t, err.Error(), "invalid JSON: invalid JSON")
		})
	}
}

func TestProcessRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.json",
		"{\"n\":\"a\xffb\",\"x\":{\"name\":\"AmbientOcclusion\",\"rules\":[{\"pattern\":[1]}]}}")
	out := filepath.Join(dir, "out.json")

	for _, dryRun := range []bool{false, true} {
		report, err := New(nil).Process(in, out, ProcessOptions{DryRun: dryRun})
		require.ErrorIs(t, err, ErrInvalidEncoding)
		assert.False(t, report.Written)
		assert.False(t, report.Stats.Found)
		assert.NoFileExists(t, out)
	}

	res := ValidateAll([]string{in})[0]
	assert.False(t, res.OK())
	assert.True(t, strings.HasPrefix(res.String(), fmt.Sprintf("✗ Invalid UTF-8 in '%s': ", in)), res.String())
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"a": [1, 2, {"b": null}]}`)
	bad := writeFile(t, dir, "bad.json", `{"a": [1, 2}`)
	missing := filepath.Join(dir, "missing.json")

	results := ValidateAll([]string{good, bad, missing, dir})
	require.Len(t, results, 4)

	assert.True(t, results[0].OK())
	assert.Equal(t, fmt.Sprintf("✓ JSON file '%s' is valid", good), results[0].String())

	assert.True(t, errors.Is(results[1].Err, ErrInvalidJSON))
	assert.True(t, strings.HasPrefix(results[1].String(), fmt.Sprintf("✗ Invalid JSON in '%s': ", bad)))

	assert.Equal(t, fmt.Sprintf("✗ File '%s' not found", missing), results[2].String())

	assert.False(t, results[3].OK())
	assert.True(t, strings.HasPrefix(results[3].String(), fmt.Sprintf("✗ Error reading '%s'", dir)))
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
	one := writeFile(t, dir, "one.json", `{}`)
	two := writeFile(t, filepath.Join(dir, "a", "b"), "two.json", `{}`)
	writeFile(t, dir, "notes.txt", "x")

	got, err := ExpandInputs([]string{filepath.Join(dir, "**", "*.json"), "plain.json", filepath.Join(dir, "*.yaml")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{one, two, "plain.json", filepath.Join(dir, "*.yaml")}, got)

	_, err = ExpandInputs([]string{filepath.Join(dir, "[")})
	assert.Error(t, err)
}
