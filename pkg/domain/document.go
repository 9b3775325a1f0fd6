package domain

// BlockKind classifies a unit of composed text.
type BlockKind string

const (
	BlockTitle     BlockKind = "title"
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockBullet    BlockKind = "bullet"
	BlockSignature BlockKind = "signature"
	BlockSpacer    BlockKind = "spacer"
)

// Block is a laid-out unit of text. Y is the top of the block in points from
// the top edge of its page.
type Block struct {
	Kind   BlockKind `json:"kind"`
	Text   string    `json:"text"`
	Lines  []string  `json:"lines"`
	Y      float64   `json:"y"`
	Height float64   `json:"height"`
}

// Page is one page of a composed document.
type Page struct {
	Number int     `json:"number"`
	Blocks []Block `json:"blocks"`
}

// Document is the paginated output of the composer.
type Document struct {
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// GeneratedDocument is a rendered file ready for download.
type GeneratedDocument struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	Pages       int    `json:"pages"`
}
