package frontmatter

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdxlayout/internal/literal"
	"gopkg.in/yaml.v3"
)

// SerializeYAML renders metadata as YAML without delimiters, for display.
//
// It accepts the same values the layout literal does: JSON-like values from
// any front matter engine, sized numbers, time.Time and maps with scalar
// keys. Keys are sorted at every level. Values that have no literal form
// fail with *literal.UnsupportedTypeError so what inspect prints is what a
// layout would receive. Newlines follow style; an empty map yields no output.
func SerializeYAML(fields map[string]any, style Style) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	var nb nodeBuilder
	root, err := nb.mapping(fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	out := buf.Bytes()
	if nl := style.Newline; nl != "" && nl != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(nl))
	}
	return out, nil
}

// nodeBuilder converts metadata values to yaml nodes, tracking the key path
// for error messages.
type nodeBuilder struct {
	path []string
}

func (nb *nodeBuilder) unsupported(v any) error {
	return &literal.UnsupportedTypeError{Path: strings.Join(nb.path, "."), Type: reflect.TypeOf(v).String()}
}

func (nb *nodeBuilder) mapping(fields map[string]any) (*yaml.Node, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		nb.path = append(nb.path, k)
		val, err := nb.node(fields[k])
		if err != nil {
			return nil, err
		}
		nb.path = nb.path[:len(nb.path)-1]
		n.Content = append(n.Content, scalar("!!str", k), val)
	}
	return n, nil
}

func (nb *nodeBuilder) sequence(n int, at func(int) any) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i := range n {
		nb.path = append(nb.path, strconv.Itoa(i))
		item, err := nb.node(at(i))
		if err != nil {
			return nil, err
		}
		nb.path = nb.path[:len(nb.path)-1]
		seq.Content = append(seq.Content, item)
	}
	return seq, nil
}

func (nb *nodeBuilder) node(v any) (*yaml.Node, error) {
	switch vv := v.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case string:
		return scalar("!!str", vv), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(vv)), nil
	case int:
		return scalar("!!int", strconv.Itoa(vv)), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(vv, 10)), nil
	case uint64:
		return scalar("!!int", strconv.FormatUint(vv, 10)), nil
	case float64:
		return nb.float(vv)
	case json.Number:
		if _, err := vv.Int64(); err == nil {
			return scalar("!!int", vv.String()), nil
		}
		f, err := vv.Float64()
		if err != nil {
			return nil, nb.unsupported(v)
		}
		return nb.float(f)
	case time.Time:
		return scalar("!!timestamp", vv.Format(time.RFC3339Nano)), nil
	case map[string]any:
		return nb.mapping(vv)
	case []any:
		return nb.sequence(len(vv), func(i int) any { return vv[i] })
	case encoding.TextMarshaler:
		text, err := vv.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(nb.path, "."), err)
		}
		return scalar("!!str", string(text)), nil
	}
	return nb.reflected(reflect.ValueOf(v))
}

func (nb *nodeBuilder) float(f float64) (*yaml.Node, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot render non-finite number %v at %q", f, strings.Join(nb.path, "."))
	}
	text := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(text, ".e") {
		// Keep integral floats resolving as floats: 2 would read back as !!int.
		text += ".0"
	}
	return scalar("!!float", text), nil
}

func (nb *nodeBuilder) reflected(rv reflect.Value) (*yaml.Node, error) {
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return scalar("!!int", strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uintptr:
		return scalar("!!int", strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32:
		return nb.float(rv.Float())
	case reflect.String:
		return scalar("!!str", rv.String()), nil
	case reflect.Bool:
		return scalar("!!bool", strconv.FormatBool(rv.Bool())), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return scalar("!!null", "null"), nil
		}
		return nb.node(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		return nb.sequence(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
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
				return nil, nb.unsupported(rv.Interface())
			}
		}
		return nb.mapping(fields)
	default:
		return nil, nb.unsupported(rv.Interface())
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
