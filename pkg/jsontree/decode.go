package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode errors.
var (
	// ErrSyntax is returned when the input is not a well-formed JSON document.
	ErrSyntax = errors.New("invalid JSON")
	// ErrEncoding is returned when the input is not valid UTF-8.
	ErrEncoding = errors.New("input is not valid UTF-8")
)

// Decode reads exactly one JSON document from r. A leading UTF-8 byte order
// mark is skipped. Input that is not valid UTF-8 is rejected with ErrEncoding
// rather than having bad bytes replaced. Trailing non-whitespace data is a
// syntax error.
func Decode(r io.Reader) (Value, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// The BOM decoder replaces ill-formed bytes, so validate first.
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid byte at offset %d", ErrEncoding, invalidOffset(raw))
	}
	data, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, wrapSyntax(err, dec)
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%w: extra data after offset %d", ErrSyntax, dec.InputOffset())
		}
		return nil, wrapSyntax(err, dec)
	}
	return v, nil
}

// Parse decodes a JSON document held in memory.
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile decodes the JSON document stored at path. Errors from opening the
// file are returned unwrapped so callers can test them with os.IsNotExist.
func ReadFile(path string) (Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// invalidOffset returns the offset of the first byte of data that does not
// start a valid UTF-8 sequence.
func invalidOffset(data []byte) int {
	for off := 0; off < len(data); {
		r, size := utf8.DecodeRune(data[off:])
		if r == utf8.RuneError && size <= 1 {
			return off
		}
		off += size
	}
	return len(data)
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, rune(t), dec.InputOffset())
		}
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case nil:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key is %T at offset %d", ErrSyntax, tok, dec.InputOffset())
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		// Duplicate keys: the last value wins, the first position is kept.
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	arr := Array{}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func wrapSyntax(err error, dec *json.Decoder) error {
	if errors.Is(err, ErrSyntax) {
		return err
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return fmt.Errorf("%w: %s (offset %d)", ErrSyntax, syn.Error(), syn.Offset)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: unexpected end of input at offset %d", ErrSyntax, dec.InputOffset())
	}
	return err
}
