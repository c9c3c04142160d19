// Package frontmatter separates the YAML metadata block (`---` delimited)
// at the top of a content document from its Markdown body.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Meta is the typed frontmatter of a content document. Title is what the
// page renders as its heading; Description feeds the page summary. Draft
// documents are excluded from builds.
type Meta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Draft       bool   `yaml:"draft,omitempty"`
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter opening delimiter found but closing delimiter is missing")

// Split separates raw YAML frontmatter from the Markdown body. If the
// document does not start with a `---` line, had is false and body is the
// full input. CRLF documents are handled by detecting the newline style up
// front.
func Split(content []byte) (meta, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]

	// Empty frontmatter: opening delimiter immediately followed by the
	// closing one.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A final "---" without trailing newline still closes the block.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(rest, tail) {
			return rest[:len(rest)-len(tail)+len(nl)], nil, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
}

// Parse unmarshals raw frontmatter (without delimiters) into typed Meta.
func Parse(raw []byte) (Meta, error) {
	var m Meta
	if len(raw) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// Fields unmarshals raw frontmatter into a generic map for callers that
// need fields beyond Meta.
func Fields(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			if i > 0 && content[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}
