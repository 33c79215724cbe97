package frontmatter

import (
	"bytes"
	"errors"
)

// Language names the data format of a front matter block.
type Language string

const (
	LanguageYAML Language = "yaml"
	LanguageTOML Language = "toml"
	LanguageJSON Language = "json"
)

const fence = "---"

// Style captures the newline shape of the source document.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Block is the result of splitting a document at its front matter fences.
type Block struct {
	// Raw is the front matter text between the fences, without delimiters.
	Raw []byte
	// Body is everything after the closing fence line.
	Body []byte
	// Had reports whether the document opened with a front matter fence.
	Had bool
	// Language is taken from the opening fence (`---toml`); yaml when absent.
	Language Language
	Style    Style
}

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Split separates `---` delimited front matter from the body.
//
// The opening fence may carry a language token (`---yaml`, `---toml`,
// `---json`). If the document does not start with a fence, Had is false and
// Body is the full input.
func Split(content []byte) (Block, error) {
	style := detectStyle(content)
	nl := style.Newline

	firstLine, rest, ok := bytes.Cut(content, []byte(nl))
	if !ok || !bytes.HasPrefix(firstLine, []byte(fence)) {
		return Block{Body: content, Language: LanguageYAML, Style: style}, nil
	}
	lang, isFence := fenceLanguage(firstLine[len(fence):])
	if !isFence {
		return Block{Body: content, Language: LanguageYAML, Style: style}, nil
	}

	closeLine := []byte(fence + nl)
	if bytes.HasPrefix(rest, closeLine) {
		return Block{Raw: []byte{}, Body: rest[len(closeLine):], Had: true, Language: lang, Style: style}, nil
	}
	if bytes.Equal(rest, []byte(fence)) {
		return Block{Raw: []byte{}, Body: []byte{}, Had: true, Language: lang, Style: style}, nil
	}

	closeSeq := []byte(nl + fence + nl)
	idx := bytes.Index(rest, closeSeq)
	bodyStart := idx + len(closeSeq)
	if idx < 0 {
		// A closing fence on the final line without a trailing newline.
		if !bytes.HasSuffix(rest, []byte(nl+fence)) {
			return Block{}, ErrMissingClosingDelimiter
		}
		idx = len(rest) - len(nl+fence)
		bodyStart = len(rest)
	}

	return Block{
		Raw:      rest[:idx+len(nl)],
		Body:     rest[bodyStart:],
		Had:      true,
		Language: lang,
		Style:    style,
	}, nil
}

// fenceLanguage interprets the text after `---` on the opening line.
func fenceLanguage(tail []byte) (Language, bool) {
	token := string(bytes.TrimSpace(tail))
	if token == "" {
		return LanguageYAML, true
	}
	for _, c := range token {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return "", false
		}
	}
	return Language(bytes.ToLower([]byte(token))), true
}

func detectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
