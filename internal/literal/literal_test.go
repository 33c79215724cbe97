package literal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SortedKeysAndIndentation(t *testing.T) {
	out, err := Object(map[string]any{
		"title":          "Hello",
		"layout":         "post",
		"__resourcePath": "blog/hello.md",
		"tags":           []any{"go", "mdx"},
		"author":         map[string]any{"name": "Ada", "id": 7},
	})
	require.NoError(t, err)

	want := "{\n" +
		"\t__resourcePath: 'blog/hello.md',\n" +
		"\tauthor: {\n" +
		"\t\tid: 7,\n" +
		"\t\tname: 'Ada'\n" +
		"\t},\n" +
		"\tlayout: 'post',\n" +
		"\ttags: [\n" +
		"\t\t'go',\n" +
		"\t\t'mdx'\n" +
		"\t],\n" +
		"\ttitle: 'Hello'\n" +
		"}"
	assert.Equal(t, want, out)
}

func TestObject_Empty(t *testing.T) {
	out, err := Object(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)

	out, err = Object(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}

func TestObject_Deterministic(t *testing.T) {
	fields := map[string]any{}
	for _, k := range []string{"z", "y", "x", "w", "v", "u", "t", "s"} {
		fields[k] = k
	}
	first, err := Object(fields)
	require.NoError(t, err)
	for range 20 {
		again, err := Object(fields)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"layout":      "layout",
		"_private":    "_private",
		"$ref":        "$ref",
		"camelCase2":  "camelCase2",
		"kebab-case":  "'kebab-case'",
		"2fast":       "'2fast'",
		"with space":  "'with space'",
		"":            "''",
		"it's":        `'it\'s'`,
		"ünïcode":     "'ünïcode'",
	}
	for in, want := range tests {
		assert.Equal(t, want, Key(in), in)
	}
}

func TestQuote_Escapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `'plain'`},
		{"it's", `'it\'s'`},
		{`back\slash`, `'back\\slash'`},
		{"line\nbreak", `'line\nbreak'`},
		{"tab\there", `'tab\there'`},
		{"cr\r", `'cr\r'`},
		{"sep\u2028para\u2029", `'sep\u2028para\u2029'`},
		{"bell\x07", `'bell\x07'`},
		{"bad\xffbyte", `'bad\ufffdbyte'`},
		{`"double"`, `'"double"'`},
		{"</script>", `'</script>'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in), tt.in)
	}
}

func TestValue_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"true", true, "true"},
		{"int", 42, "42"},
		{"negative int64", int64(-3), "-3"},
		{"uint8", uint8(9), "9"},
		{"float", 1.5, "1.5"},
		{"integral float", float64(2), "2"},
		{"float32", float32(0.25), "0.25"},
		{"time", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "new Date('2024-03-01T10:00:00Z')"},
		{"typed slice", []string{"a"}, "[\n\t'a'\n]"},
		{"nil slice", []string(nil), "[]"},
		{"string map", map[string]string{"b": "2", "a": "1"}, "{\n\ta: '1',\n\tb: '2'\n}"},
		{"any-keyed map", map[any]any{1: "one", "two": 2}, "{\n\t'1': 'one',\n\ttwo: 2\n}"},
		{"pointer", ptr("x"), "'x'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Value(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestValue_Unsupported(t *testing.T) {
	_, err := Object(map[string]any{"fn": func() {}})
	require.Error(t, err)
	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "fn", unsupported.Path)

	_, err = Object(map[string]any{"nested": map[string]any{"ch": make(chan int)}})
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "nested.ch", unsupported.Path)

	_, err = Value(math.NaN())
	require.Error(t, err)
	_, err = Value(math.Inf(1))
	require.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
