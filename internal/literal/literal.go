// Package literal renders Go values as JavaScript literal source text.
//
// The output is deterministic: map keys are sorted, strings are single-quoted
// with every character that could break a downstream parser escaped, and
// nesting is indented with tabs. Only JSON-like values plus time.Time are
// accepted; anything else is an error rather than a best-effort guess.
package literal

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const indentUnit = "\t"

// Object renders fields as a JavaScript object literal.
func Object(fields map[string]any) (string, error) {
	var w writer
	if err := w.object(fields, 0); err != nil {
		return "", err
	}
	return w.String(), nil
}

// Value renders a single value as a JavaScript literal.
func Value(v any) (string, error) {
	var w writer
	if err := w.value(v, 0); err != nil {
		return "", err
	}
	return w.String(), nil
}

// UnsupportedTypeError reports a value that has no literal form.
type UnsupportedTypeError struct {
	Path string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Path == "" {
		return "cannot render value of type " + e.Type + " as a literal"
	}
	return fmt.Sprintf("cannot render %s (type %s) as a literal", e.Path, e.Type)
}

type writer struct {
	strings.Builder
	path []string
}

func (w *writer) where() string {
	return strings.Join(w.path, ".")
}

func (w *writer) fail(v any) error {
	return &UnsupportedTypeError{Path: w.where(), Type: reflect.TypeOf(v).String()}
}

func (w *writer) value(v any, depth int) error {
	switch vv := v.(type) {
	case nil:
		w.WriteString("null")
	case string:
		w.WriteString(Quote(vv))
	case bool:
		w.WriteString(strconv.FormatBool(vv))
	case int:
		w.WriteString(strconv.Itoa(vv))
	case int64:
		w.WriteString(strconv.FormatInt(vv, 10))
	case uint64:
		w.WriteString(strconv.FormatUint(vv, 10))
	case float64:
		return w.float(vv)
	case json.Number:
		if _, err := vv.Float64(); err != nil {
			return w.fail(v)
		}
		w.WriteString(vv.String())
	case time.Time:
		w.WriteString("new Date(")
		w.WriteString(Quote(vv.Format(time.RFC3339Nano)))
		w.WriteString(")")
	case map[string]any:
		return w.object(vv, depth)
	case []any:
		return w.array(len(vv), func(i int) any { return vv[i] }, depth)
	case encoding.TextMarshaler:
		text, err := vv.MarshalText()
		if err != nil {
			return fmt.Errorf("%s: %w", w.where(), err)
		}
		w.WriteString(Quote(string(text)))
	default:
		return w.reflected(reflect.ValueOf(v), depth)
	}
	return nil
}

func (w *writer) float(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("cannot render non-finite number %v at %q", f, w.where())
	}
	w.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

// reflected handles the remaining kinds: sized numbers, typed slices and maps, pointers.
func (w *writer) reflected(rv reflect.Value, depth int) error {
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		w.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uintptr:
		w.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		return w.float(rv.Float())
	case reflect.String:
		w.WriteString(Quote(rv.String()))
	case reflect.Bool:
		w.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Pointer:
		if rv.IsNil() {
			w.WriteString("null")
			return nil
		}
		return w.value(rv.Elem().Interface(), depth)
	case reflect.Slice:
		if rv.IsNil() {
			w.WriteString("[]")
			return nil
		}
		return w.array(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, depth)
	case reflect.Array:
		return w.array(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, depth)
	case reflect.Map:
		return w.reflectedMap(rv, depth)
	default:
		return w.fail(rv.Interface())
	}
	return nil
}

// reflectedMap converts maps with scalar keys (as YAML produces for
// non-string keys) into string-keyed maps before rendering.
func (w *writer) reflectedMap(rv reflect.Value, depth int) error {
	fields := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key()
		for key.Kind() == reflect.Interface && !key.IsNil() {
			key = key.Elem()
		}
		switch key.Kind() {
		case reflect.String, reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			fields[fmt.Sprint(key.Interface())] = iter.Value().Interface()
		default:
			return w.fail(rv.Interface())
		}
	}
	return w.object(fields, depth)
}

func (w *writer) object(fields map[string]any, depth int) error {
	if len(fields) == 0 {
		w.WriteString("{}")
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	w.WriteString("{\n")
	for i, k := range keys {
		w.WriteString(strings.Repeat(indentUnit, depth+1))
		w.WriteString(Key(k))
		w.WriteString(": ")
		w.path = append(w.path, k)
		if err := w.value(fields[k], depth+1); err != nil {
			return err
		}
		w.path = w.path[:len(w.path)-1]
		if i < len(keys)-1 {
			w.WriteByte(',')
		}
		w.WriteByte('\n')
	}
	w.WriteString(strings.Repeat(indentUnit, depth))
	w.WriteByte('}')
	return nil
}

func (w *writer) array(n int, at func(int) any, depth int) error {
	if n == 0 {
		w.WriteString("[]")
		return nil
	}
	w.WriteString("[\n")
	for i := range n {
		w.WriteString(strings.Repeat(indentUnit, depth+1))
		w.path = append(w.path, strconv.Itoa(i))
		if err := w.value(at(i), depth+1); err != nil {
			return err
		}
		w.path = w.path[:len(w.path)-1]
		if i < n-1 {
			w.WriteByte(',')
		}
		w.WriteByte('\n')
	}
	w.WriteString(strings.Repeat(indentUnit, depth))
	w.WriteByte(']')
	return nil
}

// Key renders an object key, bare when it is a valid identifier.
func Key(k string) string {
	if isIdentifier(k) {
		return k
	}
	return Quote(k)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// Quote renders s as a single-quoted JavaScript string literal.
//
// Line and paragraph separators are escaped because older parsers treat
// them as line terminators inside string literals. Invalid UTF-8 bytes are
// replaced with U+FFFD.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\u2028', '\u2029', utf8.RuneError:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
