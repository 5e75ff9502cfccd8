// Package web holds the embedded templates and static assets served by
// the site.
package web

import "embed"

//go:embed templates static
var Files embed.FS
