// Package dashboard provides the embedded progress page for genrelay.
//
// The page lists running and finished polls and updates live from the
// /api/sse stream. It is compiled into the binary so the relay deploys as a
// single file.
//
// The server package serves it at the root path ("/").
package dashboard

import "embed"

// Assets is an embedded filesystem containing the progress page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Progress page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
