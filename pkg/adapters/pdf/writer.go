// Package pdf renders composed documents to PDF with go-pdf/fpdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aretw0/writ/pkg/compose"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/go-pdf/fpdf"
)

// ContentType is the MIME type of the writer's output.
const ContentType = "application/pdf"

// Writer implements ports.DocumentWriter. Blocks are drawn where the composer
// placed them, so the layout must match the one the document was composed with.
type Writer struct {
	layout  compose.Layout
	family  string
	creator string
	clock   func() time.Time
}

type Option func(*Writer)

// WithLayout sets the page geometry.
func WithLayout(l compose.Layout) Option {
	return func(w *Writer) { w.layout = l }
}

// WithCreator sets the Creator metadata field.
func WithCreator(creator string) Option {
	return func(w *Writer) { w.creator = creator }
}

// WithClock fixes the creation date, which makes output reproducible.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.clock = now }
}

// New creates a Writer using the default layout and Courier.
func New(opts ...Option) *Writer {
	w := &Writer{
		layout:  compose.DefaultLayout(),
		family:  "Courier",
		creator: "writ",
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) ContentType() string {
	return ContentType
}

// Write draws every page of doc and returns the PDF bytes.
func (w *Writer) Write(ctx context.Context, doc *domain.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	l := w.layout

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetMargins(l.MarginLeft, l.MarginTop, l.MarginRight)
	pdf.SetAutoPageBreak(false, l.MarginBottom)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator(w.creator, true)
	now := w.clock()
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		for _, b := range page.Blocks {
			w.drawBlock(pdf, tr, b)
		}
	}
	if len(doc.Pages) == 0 {
		pdf.AddPage()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Writer) drawBlock(pdf *fpdf.Fpdf, tr func(string) string, b domain.Block) {
	l := w.layout
	scale := compose.StyleScale(b.Kind)
	size := l.FontSize * scale
	lh := l.LineHeight() * scale

	style := ""
	if b.Kind == domain.BlockTitle || b.Kind == domain.BlockHeading {
		style = "B"
	}
	pdf.SetFont(w.family, style, size)

	for i, line := range b.Lines {
		if line == "" {
			continue
		}
		text := tr(line)
		x := l.MarginLeft
		if b.Kind == domain.BlockTitle {
			x = (l.PageWidth - pdf.GetStringWidth(text)) / 2
		}
		// Text positions the baseline.
		pdf.Text(x, b.Y+float64(i)*lh+size, text)
	}
}
