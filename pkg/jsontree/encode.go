package jsontree

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIndent is the indentation used by WriteFile.
const DefaultIndent = "  "

// Encode writes v to w as indented JSON followed by a newline. Objects and
// arrays with members are spread over multiple lines; empty ones are written
// as {} and []. Non-ASCII text is written as UTF-8, not escaped.
func Encode(w io.Writer, v Value, indent string) error {
	bw := bufio.NewWriter(w)
	e := &encoder{w: bw, indent: indent}
	if err := e.value(v, 0); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// Marshal returns the indented encoding of v.
func Marshal(v Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes v to path. The document is written to a temporary file in
// the same directory and renamed into place, so a failed write never leaves a
// partial document behind.
func WriteFile(path string, v Value, indent string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, v, indent); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

type encoder struct {
	w      *bufio.Writer
	indent string
}

func (e *encoder) newline(depth int) {
	e.w.WriteByte('\n')
	e.w.WriteString(strings.Repeat(e.indent, depth))
}

func (e *encoder) value(v Value, depth int) error {
	switch t := v.(type) {
	case nil, Null:
		e.w.WriteString("null")
	case Bool:
		if t {
			e.w.WriteString("true")
		} else {
			e.w.WriteString("false")
		}
	case Number:
		if !json.Valid([]byte(t)) {
			return fmt.Errorf("invalid number literal %q", string(t))
		}
		e.w.WriteString(string(t))
	case String:
		return e.str(string(t))
	case Array:
		if len(t) == 0 {
			e.w.WriteString("[]")
			return nil
		}
		e.w.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				e.w.WriteByte(',')
			}
			e.newline(depth + 1)
			if err := e.value(item, depth+1); err != nil {
				return err
			}
		}
		e.newline(depth)
		e.w.WriteByte(']')
	case *Object:
		if t == nil || len(t.Members) == 0 {
			e.w.WriteString("{}")
			return nil
		}
		e.w.WriteByte('{')
		for i, m := range t.Members {
			if i > 0 {
				e.w.WriteByte(',')
			}
			e.newline(depth + 1)
			if err := e.str(m.Key); err != nil {
				return err
			}
			e.w.WriteString(": ")
			if err := e.value(m.Value, depth+1); err != nil {
				return err
			}
		}
		e.newline(depth)
		e.w.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func (e *encoder) str(s string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	e.w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	return nil
}
