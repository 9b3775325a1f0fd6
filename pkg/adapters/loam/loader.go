// Package loam loads wizard bundles from a directory managed by the loam
// document store. Each document's metadata is a Definition and its body is
// the document template.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/writ/pkg/adapters/frontmatter"
	"github.com/aretw0/writ/pkg/domain"
)

// Metadata is the raw frontmatter of a bundle document. It is decoded into a
// Definition with the same rules as the frontmatter package.
type Metadata map[string]any

// Loader adapts a loam repository to ports.BundleLoader.
type Loader struct {
	Repo *loam.TypedRepository[Metadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[Metadata]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a read-only, strict loam repository at dir.
func Open(dir string) (*Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bundle directory: %w", err)
	}
	repo, err := loam.Init(abs,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle directory %s: %w", abs, err)
	}
	return New(loam.NewTypedRepository[Metadata](repo)), nil
}

type entry struct {
	docID string
	def   domain.Definition
}

// index decodes every document, keyed by normalized bundle id.
func (l *Loader) index(ctx context.Context) (map[string]entry, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make(map[string]entry, len(docs))
	for _, doc := range docs {
		if strings.EqualFold(trimExtension(filepath.Base(doc.ID)), "README") {
			continue
		}

		var def domain.Definition
		if err := frontmatter.Decode(map[string]any(doc.Data), &def); err != nil {
			return nil, fmt.Errorf("%s: invalid bundle: %w", doc.ID, err)
		}
		raw := def.ID
		if raw == "" {
			raw = doc.ID
		}
		def.ID = trimExtension(raw)
		if strings.TrimSpace(def.Template) == "" {
			def.Template = doc.Content
		}

		if existing, ok := out[def.ID]; ok {
			return nil, fmt.Errorf("collision detected: id %q is defined in both %q and %q", def.ID, existing.docID, doc.ID)
		}
		out[def.ID] = entry{docID: doc.ID, def: def}
	}
	return out, nil
}

// GetBundle retrieves a bundle by id. Ids are matched without file extension.
func (l *Loader) GetBundle(ctx context.Context, id string) (*domain.Definition, error) {
	idx, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := idx[trimExtension(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWizardNotFound, id)
	}
	return &e.def, nil
}

// ListBundles lists bundle ids in lexical order.
func (l *Loader) ListBundles(ctx context.Context) ([]string, error) {
	idx, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch reports the ids of bundle documents as they change on disk.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
