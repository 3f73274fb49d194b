package tools

import (
	"net/url"
	"path"
	"strings"
)

// DefaultMimeType is reported for extensions not in the table.
const DefaultMimeType = "application/octet-stream"

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
}

// DetectMimeType guesses a media type from the extension of the URL path.
// Query strings and fragments are ignored. Matching is case-insensitive.
func DetectMimeType(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if mt, ok := mimeByExt[strings.ToLower(path.Ext(p))]; ok {
		return mt
	}
	return DefaultMimeType
}

// IsImage reports whether mimeType is an image type.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
