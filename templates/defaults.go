package templates

import "embed"

// The embedded default template set, applied when no on-disk template
// tree is configured.
//
//go:embed all:defaults
var defaultSet embed.FS

const defaultRoot = "defaults"
