package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Document is a source file split into its metadata and body.
type Document struct {
	Content  string
	Data     map[string]any
	Language Language
	// HadFrontMatter reports whether the source opened with a fence.
	HadFrontMatter bool
}

// Parse splits raw at its front matter fences and decodes the metadata
// block using the engine named on the opening fence.
//
// A document without front matter yields its full text as Content and an
// empty Data map. Malformed metadata or a missing closing fence is a
// CategoryFrontMatter error.
func Parse(raw []byte) (Document, error) {
	block, err := Split(raw)
	if err != nil {
		return Document{}, errors.WrapError(err, errors.CategoryFrontMatter, "invalid front matter").
			UserAction().
			Build()
	}

	doc := Document{
		Content:        string(block.Body),
		Language:       block.Language,
		HadFrontMatter: block.Had,
	}
	if !block.Had {
		doc.Data = map[string]any{}
		return doc, nil
	}

	data, err := Decode(block.Language, block.Raw)
	if err != nil {
		return Document{}, errors.WrapError(err, errors.CategoryFrontMatter, "invalid front matter").
			UserAction().
			WithContext("language", string(block.Language)).
			Build()
	}
	doc.Data = data
	return doc, nil
}

// Decode parses a front matter block (without delimiters) in the given language.
func Decode(lang Language, raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	switch lang {
	case LanguageYAML, "":
		return ParseYAML(raw)
	case LanguageTOML:
		var fields map[string]any
		if err := toml.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		return nonNil(fields), nil
	case LanguageJSON:
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		return nonNil(fields), nil
	default:
		return nil, fmt.Errorf("unsupported front matter language %q", lang)
	}
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return nonNil(fields), nil
}

func nonNil(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return fields
}
