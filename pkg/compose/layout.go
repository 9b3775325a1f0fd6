package compose

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/writ/pkg/domain"
)

// Layout describes the page geometry in points. Text is set in a monospace
// face whose glyphs are CharWidth x FontSize wide.
type Layout struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	FontSize     float64
	LineSpacing  float64 // line height as a multiple of FontSize
	CharWidth    float64 // glyph advance as a multiple of FontSize
}

// DefaultLayout is US Letter with one-inch margins and 11pt Courier.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:    612,
		PageHeight:   792,
		MarginTop:    72,
		MarginBottom: 72,
		MarginLeft:   72,
		MarginRight:  72,
		FontSize:     11,
		LineSpacing:  1.4,
		CharWidth:    0.6,
	}
}

type blockStyle struct {
	scale  float64 // font size multiplier
	after  float64 // space after the block, in lines
	indent int     // hanging indent in columns
}

var styles = map[domain.BlockKind]blockStyle{
	domain.BlockTitle:     {scale: 1.5, after: 1},
	domain.BlockHeading:   {scale: 1.2, after: 0.5},
	domain.BlockParagraph: {scale: 1, after: 0.6},
	domain.BlockBullet:    {scale: 1, after: 0.25, indent: 2},
	domain.BlockSignature: {scale: 1, after: 0.6},
	domain.BlockSpacer:    {scale: 1},
}

// StyleScale returns the font size multiplier of a block kind.
func StyleScale(kind domain.BlockKind) float64 {
	if s, ok := styles[kind]; ok {
		return s.scale
	}
	return 1
}

// LineHeight is the height of one body line.
func (l Layout) LineHeight() float64 {
	return l.FontSize * l.LineSpacing
}

// Columns is the number of body characters that fit on one line.
func (l Layout) Columns() int {
	cols := int((l.PageWidth - l.MarginLeft - l.MarginRight) / (l.FontSize * l.CharWidth))
	if cols < 10 {
		cols = 10
	}
	return cols
}

// SignatureRule is the line drawn above a signature label.
const SignatureRule = "______________________________"

// measure wraps a block's text and sets its Lines and Height.
func (l Layout) measure(b *domain.Block) {
	st := styles[b.Kind]
	width := int(float64(l.Columns()) / st.scale)

	switch b.Kind {
	case domain.BlockSpacer:
		b.Lines = nil
		b.Height = l.LineHeight()
		return
	case domain.BlockSignature:
		b.Lines = append([]string{"", SignatureRule}, Wrap(b.Text, width)...)
	case domain.BlockBullet:
		wrapped := Wrap(b.Text, width-st.indent)
		pad := strings.Repeat(" ", st.indent)
		b.Lines = make([]string, len(wrapped))
		for i, line := range wrapped {
			if i == 0 {
				b.Lines[i] = "- " + line
			} else {
				b.Lines[i] = pad + line
			}
		}
	default:
		b.Lines = Wrap(b.Text, width)
	}

	lh := l.LineHeight() * st.scale
	b.Height = float64(len(b.Lines))*lh + st.after*l.LineHeight()
}

// Paginate lays blocks out top to bottom. When a block would cross the bottom
// margin it starts a new page; a block taller than a page still gets a page
// of its own.
func (l Layout) Paginate(blocks []domain.Block) []domain.Page {
	limit := l.PageHeight - l.MarginBottom
	pages := []domain.Page{{Number: 1}}
	cursor := l.MarginTop

	for _, b := range blocks {
		l.measure(&b)
		cur := &pages[len(pages)-1]
		if cursor+b.Height > limit && len(cur.Blocks) > 0 {
			pages = append(pages, domain.Page{Number: len(pages) + 1})
			cur = &pages[len(pages)-1]
			cursor = l.MarginTop
		}
		b.Y = cursor
		cursor += b.Height
		cur.Blocks = append(cur.Blocks, b)
	}
	return pages
}

// Wrap breaks text into lines of at most width runes at spaces. Words longer
// than a line are split. Empty text yields one empty line.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curLen = 0
	}

	for _, w := range words {
		for utf8.RuneCountInString(w) > width {
			if curLen > 0 {
				flush()
			}
			runes := []rune(w)
			lines = append(lines, string(runes[:width]))
			w = string(runes[width:])
		}
		wl := utf8.RuneCountInString(w)
		if wl == 0 {
			continue
		}
		if curLen > 0 && curLen+1+wl > width {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	if curLen > 0 {
		flush()
	}
	return lines
}
