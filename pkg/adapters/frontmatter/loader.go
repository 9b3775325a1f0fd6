package frontmatter

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/aretw0/writ/pkg/domain"
)

// Loader implements ports.BundleLoader over the markdown files of an fs.FS.
// Files are parsed once, when the loader is built.
type Loader struct {
	defs  map[string]domain.Definition
	paths map[string]string
}

// Load parses every "*.md" file under root. A bundle without an id takes its
// file name. Two files declaring the same id is an error.
func Load(fsys fs.FS, root string) (*Loader, error) {
	if root == "" {
		root = "."
	}
	l := &Loader{
		defs:  make(map[string]domain.Definition),
		paths: make(map[string]string),
	}

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" || strings.EqualFold(d.Name(), "README.md") {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		def, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(path.Base(p), ".md")
		}
		if existing, ok := l.paths[def.ID]; ok {
			return fmt.Errorf("collision detected: id %q is defined in both %q and %q", def.ID, existing, p)
		}
		l.defs[def.ID] = def
		l.paths[def.ID] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetBundle returns the parsed definition.
func (l *Loader) GetBundle(ctx context.Context, id string) (*domain.Definition, error) {
	def, ok := l.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWizardNotFound, id)
	}
	return &def, nil
}

// ListBundles returns bundle ids in lexical order.
func (l *Loader) ListBundles(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(l.defs))
	for id := range l.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Path reports the file a bundle was read from.
func (l *Loader) Path(id string) (string, bool) {
	p, ok := l.paths[id]
	return p, ok
}
