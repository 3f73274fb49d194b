package tools

import (
	"context"
	"errors"
)

// VisualEffectsRequest is the input of get_visual_effects.
type VisualEffectsRequest struct {
	EffectType string `json:"effect_type,omitempty"`
	Page       *int   `json:"page,omitempty"`
}

// Validate checks the effect type filter.
func (r VisualEffectsRequest) Validate() error {
	switch r.EffectType {
	case "", "image", "video":
		return nil
	}
	return errors.New("effect_type must be 'image' or 'video'")
}

func (r VisualEffectsRequest) page() int {
	if r.Page == nil {
		return 1
	}
	return *r.Page
}

func (r *Registry) visualEffectsTool() Tool {
	return newTool("get_visual_effects",
		"Get a list of available visual effects for content generation. Filter by type (image/video) and paginate through results.",
		&Schema{
			Type: "object",
			Properties: map[string]Property{
				"effect_type": {
					Type:        "string",
					Description: "Filter by effect type: 'image' or 'video'",
					Enum:        []string{"image", "video"},
				},
				"page": {
					Type:        "integer",
					Description: "Page number for pagination (default: 1)",
					Default:     1,
				},
			},
		},
		r.getVisualEffects,
	)
}

// getVisualEffects sends the credential only when one is available.
func (r *Registry) getVisualEffects(ctx context.Context, req VisualEffectsRequest) (Result, error) {
	body, err := r.api.ListEffects(ctx, req.EffectType, req.page(), r.credentialFor(ctx))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(body), nil
}
