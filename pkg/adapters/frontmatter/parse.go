// Package frontmatter reads wizard bundles written as markdown files: a YAML
// frontmatter block holding the Definition and a body holding the document template.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter is returned when a file does not open with a "---" fence.
var ErrNoFrontmatter = errors.New("missing frontmatter")

const fence = "---"

// Split separates the frontmatter from the body. The body keeps its own
// leading blank lines trimmed.
func Split(data []byte) (meta []byte, body string, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(text, fence+"\n") {
		return nil, "", ErrNoFrontmatter
	}
	rest := text[len(fence)+1:]

	end := -1
	offset := 0
	for _, line := range strings.SplitAfter(rest, "\n") {
		if strings.TrimRight(line, "\n") == fence {
			end = offset
			break
		}
		offset += len(line)
	}
	if end < 0 {
		return nil, "", fmt.Errorf("%w: unterminated fence", ErrNoFrontmatter)
	}

	meta = []byte(rest[:end])
	body = rest[end+len(fence):]
	body = strings.TrimPrefix(body, "\n")
	return meta, strings.TrimLeft(body, "\n"), nil
}

// Decode maps raw frontmatter onto a Definition. Unknown keys are errors so
// typos in hand-written bundles surface at load time.
func Decode(raw map[string]any, def *domain.Definition) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           def,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Parse reads one bundle file. The body becomes the template unless the
// frontmatter already declares one.
func Parse(data []byte) (domain.Definition, error) {
	var def domain.Definition

	meta, body, err := Split(data)
	if err != nil {
		return def, err
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(meta, &raw); err != nil {
		return def, fmt.Errorf("invalid frontmatter yaml: %w", err)
	}
	if err := Decode(raw, &def); err != nil {
		return def, fmt.Errorf("invalid bundle: %w", err)
	}

	if strings.TrimSpace(def.Template) == "" {
		def.Template = body
	}
	return def, nil
}
