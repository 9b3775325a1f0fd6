package writ

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release of the writ module.
var Version = strings.TrimSpace(rawVersion)
