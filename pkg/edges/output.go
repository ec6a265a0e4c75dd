package edges

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/Faultbox/tilesmith/pkg/jsontree"
)

// ErrInvalidSignatureFile is returned when a signature JSON file does not
// have the expected shape.
var ErrInvalidSignatureFile = errors.New("invalid signature file")

// Document returns the JSON form of the sheet: an object keyed by the
// decimal tile index whose values are the padded 16 element signatures.
func (s *Sheet) Document() *jsontree.Object {
	doc := jsontree.NewObject(s.Len())
	for _, e := range s.entries {
		padded := e.Signature.Padded()
		arr := make(jsontree.Array, len(padded))
		for i, v := range padded {
			arr[i] = jsontree.Float(v)
		}
		doc.Set(strconv.Itoa(e.Index), arr)
	}
	return doc
}

// WriteJSON writes the sheet as indented JSON.
func (s *Sheet) WriteJSON(w io.Writer) error {
	return jsontree.Encode(w, s.Document(), jsontree.DefaultIndent)
}

// SaveJSON writes the sheet as indented JSON to path.
func (s *Sheet) SaveJSON(path string) error {
	return jsontree.WriteFile(path, s.Document(), jsontree.DefaultIndent)
}

// ReadJSON reads a signature file written by WriteJSON. Entries are ordered
// by ascending numeric key; padded (16 value) and unpadded (9 value)
// signatures are both accepted. Tile positions are not stored in the file,
// so Col and Row are -1.
func ReadJSON(r io.Reader) (*Sheet, error) {
	v, err := jsontree.Decode(r)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*jsontree.Object)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %s, want object", ErrInvalidSignatureFile, v.Kind())
	}

	type keyed struct {
		key int
		sig Signature
	}
	items := make([]keyed, 0, obj.Len())
	for _, m := range obj.Members {
		idx, err := strconv.Atoi(m.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q is not a tile index", ErrInvalidSignatureFile, m.Key)
		}
		sig, err := parseSignature(m.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: tile %q: %v", ErrInvalidSignatureFile, m.Key, err)
		}
		items = append(items, keyed{key: idx, sig: sig})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].key < items[j].key })

	sheet := &Sheet{}
	for i, it := range items {
		sheet.add(Entry{Index: i, Col: -1, Row: -1, Signature: it.sig})
	}
	return sheet, nil
}

// LoadJSON reads a signature file from path.
func LoadJSON(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

func parseSignature(v jsontree.Value) (Signature, error) {
	arr, ok := v.(jsontree.Array)
	if !ok {
		return Signature{}, fmt.Errorf("value is %s, want array", v.Kind())
	}
	vals := make([]float64, len(arr))
	for i, item := range arr {
		n, ok := item.(jsontree.Number)
		if !ok {
			return Signature{}, fmt.Errorf("element %d is %s, want number", i, item.Kind())
		}
		f, err := n.Float64()
		if err != nil {
			return Signature{}, fmt.Errorf("element %d: %w", i, err)
		}
		vals[i] = f
	}

	switch len(vals) {
	case 16:
		var m [16]float64
		copy(m[:], vals)
		return Unpad(m), nil
	case 9:
		var s Signature
		copy(s[:], vals)
		return s, nil
	default:
		return Signature{}, fmt.Errorf("has %d values, want 16 or 9", len(vals))
	}
}

// TableOptions controls the generated source table.
type TableOptions struct {
	Package string
	Name    string
	// Source is mentioned in the generated header when set.
	Source string
}

// DefaultTableOptions returns the package and variable names used when none
// are configured.
func DefaultTableOptions() TableOptions {
	return TableOptions{Package: "tiles", Name: "EdgeSignatures"}
}

var tableTemplate = template.Must(template.New("table").Parse(
	`// Code generated by autotile{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.

package {{.Package}}

// {{.Name}} holds the 3x3 edge signature of every tile, indexed by tile.
var {{.Name}} = [...][9]float64{
{{- range $i, $row := .Rows}}{{if $i}},{{end}}
	{ {{- $row -}} }
{{- end}}}
`))

// WriteTable writes the signatures as a Go source table: one literal of nine
// one-decimal values per tile, in index order, without padding.
func (s *Sheet) WriteTable(w io.Writer, opts TableOptions) error {
	if !token.IsIdentifier(opts.Package) {
		return fmt.Errorf("invalid package name %q", opts.Package)
	}
	if !token.IsIdentifier(opts.Name) {
		return fmt.Errorf("invalid variable name %q", opts.Name)
	}

	rows := make([]string, len(s.entries))
	for i, e := range s.entries {
		rows[i] = FormatSignature(e.Signature)
	}

	return tableTemplate.Execute(w, struct {
		TableOptions
		Rows []string
	}{opts, rows})
}

// SaveTable writes the source table to path.
func (s *Sheet) SaveTable(path string, opts TableOptions) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteTable(f, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatSignature renders the nine values with one decimal each, separated
// by ", ".
func FormatSignature(sig Signature) string {
	parts := make([]string, len(sig))
	for i, v := range sig {
		parts[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strings.Join(parts, ", ")
}
