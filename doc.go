/*
Package writ is a declarative engine for multi-step legal-document wizards.

Each document type is a bundle: an ordered graph of sections, the questions each
section asks, the rules that gate leaving a section, and a template that lays the
answers out as a paginated document. One generic engine drives every bundle, so
adding a document means writing a bundle, not code.

# Concept

The engine is stateless. Every operation takes a *domain.State and returns a new
one, which lets the host keep sessions wherever it likes (memory, files, redis).
Navigation is a back-stack of visited sections: Advance pushes the next section
once the current one validates, Retreat pops it. Passing the terminal section
marks the state complete; Submit then records the user's contact and generates
the document.

# Usage

	engine, err := writ.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := engine.Start(ctx, "residential_lease", "")
	if err != nil {
		log.Fatal(err)
	}

	state, _ = engine.RecordAnswer(ctx, state, "country", "1")
	view, _ := engine.Render(ctx, state)
	fmt.Println(view.Title, view.CanAdvance)

	state, err = engine.Advance(ctx, state)
	if errors.Is(err, domain.ErrValidationPending) {
		// keep collecting answers
	}

	doc, state, err := engine.Submit(ctx, state, domain.Contact{FullName: "Ann Lee", Email: "ann@example.com"})

# Bundles

Built-in bundles live in pkg/documents. More can be read from a directory of
markdown files with YAML frontmatter (WithBundlesDir) or declared in Go with the
fluent builder in pkg/wizard and served through any ports.BundleLoader.
*/
package writ
