package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainRenderer(t *testing.T) {
	render := NewPlainRenderer(60)

	out, err := render("# Lease\n\nThe tenant pays **rent**.")
	require.NoError(t, err)
	assert.Contains(t, out, "Lease")
	assert.Contains(t, out, "rent")
	assert.NotContains(t, out, "**")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
