package tools

import (
	"context"
	"errors"

	"github.com/jpalmerr/genrelay/internal/apiclient"
)

var imagesProperty = Property{
	Type:        "array",
	Description: "Array of image URLs or Base64 encoded images",
	Items:       &Property{Type: "string"},
}

// EffectRequest is the input of generate_with_effect.
type EffectRequest struct {
	EffectID string   `json:"effect_id"`
	Images   []string `json:"images,omitempty"`
}

func (r EffectRequest) Validate() error {
	if r.EffectID == "" {
		return errors.New("Effect ID is required")
	}
	return nil
}

// CustomRequest is the input of generate_custom_advanced.
type CustomRequest struct {
	Prompt string   `json:"prompt"`
	Type   string   `json:"type"`
	Images []string `json:"images,omitempty"`
}

func (r CustomRequest) Validate() error {
	if r.Prompt == "" {
		return errors.New("Prompt is required")
	}
	switch r.Type {
	case "":
		return errors.New("Type is required (image or video)")
	case "image", "video":
		return nil
	}
	return errors.New("Type must be 'image' or 'video'")
}

func (r *Registry) generateWithEffectTool() Tool {
	return newTool("generate_with_effect",
		"Generate image or video content using a specific visual effect. Returns a request_id for polling the result. Requires an API key (set ETERNAL_AI_API_KEY environment variable).",
		&Schema{
			Type: "object",
			Properties: map[string]Property{
				"images": imagesProperty,
				"effect_id": {
					Type:        "string",
					Description: "The ID of the visual effect to apply",
				},
			},
			Required: []string{"effect_id"},
		},
		r.generateWithEffect,
	)
}

func (r *Registry) generateCustomTool() Tool {
	return newTool("generate_custom_advanced",
		"Generate custom image or video content using advanced prompts. Returns a request_id for polling the result. Requires an API key (set ETERNAL_AI_API_KEY environment variable).",
		&Schema{
			Type: "object",
			Properties: map[string]Property{
				"images": imagesProperty,
				"prompt": {
					Type:        "string",
					Description: "Custom text prompt describing the desired output",
				},
				"type": {
					Type:        "string",
					Description: "Output type: 'image' or 'video'",
					Enum:        []string{"image", "video"},
				},
			},
			Required: []string{"prompt", "type"},
		},
		r.generateCustom,
	)
}

func (r *Registry) generateWithEffect(ctx context.Context, req EffectRequest) (Result, error) {
	credential := r.credentialFor(ctx)
	if credential == "" {
		return ErrorResult(MissingCredentialMessage), nil
	}

	resp, err := r.api.GenerateWithEffect(ctx, credential, apiclient.EffectRequest{
		EffectID: req.EffectID,
		Images:   req.Images,
	})
	if err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(resp.Fields()), nil
}

func (r *Registry) generateCustom(ctx context.Context, req CustomRequest) (Result, error) {
	credential := r.credentialFor(ctx)
	if credential == "" {
		return ErrorResult(MissingCredentialMessage), nil
	}

	resp, err := r.api.GenerateCustom(ctx, credential, apiclient.CustomRequest{
		Prompt: req.Prompt,
		Type:   req.Type,
		Images: req.Images,
	})
	if err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(resp.Fields()), nil
}
