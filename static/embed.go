package static

import "embed"

//go:embed index.html
var EmbeddedFiles embed.FS
