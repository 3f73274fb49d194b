package tools

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jpalmerr/genrelay/internal/apiclient"
)

// DisplayRequest is the input of display_media.
type DisplayRequest struct {
	URL string `json:"url"`
}

func (r DisplayRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return errors.New("URL is required")
	}
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("URL must use http or https protocol")
	}
	return nil
}

func (r *Registry) displayMediaTool() Tool {
	return newTool("display_media",
		"Render media (image or video) from a URL in markdown format for display. Supports images (jpg, png, gif, webp) and videos (mp4, webm, mov). For images, downloads and returns as base64 for inline display.",
		&Schema{
			Type: "object",
			Properties: map[string]Property{
				"url": {
					Type:        "string",
					Description: "Media URL to render (must be http or https)",
				},
			},
			Required: []string{"url"},
		},
		r.displayMedia,
	)
}

// displayMedia inlines images and links everything else.
func (r *Registry) displayMedia(ctx context.Context, req DisplayRequest) (Result, error) {
	mimeType := DetectMimeType(req.URL)
	if !IsImage(mimeType) {
		return TextResult(markdownLink(req.URL)), nil
	}

	media, err := r.api.Download(ctx, req.URL)
	if err != nil {
		var te *apiclient.TransportError
		if errors.As(err, &te) && te.Kind == apiclient.KindStatus {
			return ErrorResult(fmt.Sprintf("Failed to download image: %d", te.Code)), nil
		}
		return ErrorResult(fmt.Sprintf("Failed to download image: %v", err)), nil
	}

	return ImageResult(base64.StdEncoding.EncodeToString(media.Data), mimeType), nil
}

func markdownLink(u string) string {
	return fmt.Sprintf("![Media](%s)\n\nMedia URL: %s", u, u)
}
