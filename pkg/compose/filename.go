package compose

import (
	"fmt"
	"time"
)

// FilenameLayout is the timestamp format used in download names.
const FilenameLayout = "20060102_150405"

// Filename returns the download name {slug}_{yyyyMMdd_HHmmss}.pdf.
func Filename(slug string, t time.Time) string {
	return fmt.Sprintf("%s_%s.pdf", slug, t.Format(FilenameLayout))
}
