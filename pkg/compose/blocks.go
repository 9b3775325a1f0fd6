package compose

import (
	"strings"

	"github.com/aretw0/writ/pkg/domain"
)

// unescape drops the backslash in front of an escaped block marker.
var unescape = strings.NewReplacer(`\#`, "#", `\-`, "-", `\~`, "~")

// ParseBlocks splits rendered template output into typed blocks. A marker
// preceded by a backslash is literal text.
func ParseBlocks(text string) []domain.Block {
	var blocks []domain.Block
	var para []string

	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, domain.Block{Kind: domain.BlockParagraph, Text: unescape.Replace(strings.Join(para, " "))})
			para = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "## "):
			flush()
			blocks = append(blocks, domain.Block{Kind: domain.BlockHeading, Text: unescape.Replace(strings.TrimSpace(line[3:]))})
		case strings.HasPrefix(line, "# "):
			flush()
			blocks = append(blocks, domain.Block{Kind: domain.BlockTitle, Text: unescape.Replace(strings.TrimSpace(line[2:]))})
		case strings.HasPrefix(line, "- "):
			flush()
			blocks = append(blocks, domain.Block{Kind: domain.BlockBullet, Text: unescape.Replace(strings.TrimSpace(line[2:]))})
		case strings.HasPrefix(line, "~~~"):
			flush()
			blocks = append(blocks, domain.Block{Kind: domain.BlockSignature, Text: unescape.Replace(strings.TrimSpace(line[3:]))})
		case line == "---":
			flush()
			blocks = append(blocks, domain.Block{Kind: domain.BlockSpacer})
		default:
			para = append(para, line)
		}
	}
	flush()
	return blocks
}
