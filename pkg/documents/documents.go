// Package documents embeds the built-in wizard bundles shipped with writ.
//
// Each bundle is a markdown file whose frontmatter declares the sections and
// questions and whose body is the document template. Bundles that reference
// named validators need the options returned by Options when compiled.
package documents

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/aretw0/writ/pkg/adapters/frontmatter"
	"github.com/aretw0/writ/pkg/wizard"
)

//go:embed bundles/*.md
var files embed.FS

// FS returns the bundle files, rooted at the bundle directory.
func FS() fs.FS {
	sub, err := fs.Sub(files, "bundles")
	if err != nil {
		panic(err)
	}
	return sub
}

var load = sync.OnceValues(func() (*frontmatter.Loader, error) {
	return frontmatter.Load(FS(), ".")
})

// Loader returns a BundleLoader over the built-in bundles. The files are
// parsed once per process.
func Loader() (*frontmatter.Loader, error) {
	return load()
}

// Options returns the compile options every built-in bundle may need.
func Options() []wizard.Option {
	opts := make([]wizard.Option, 0, len(validators))
	for name, fn := range validators {
		opts = append(opts, wizard.WithValidator(name, fn))
	}
	return opts
}
