// Package tools implements the tool catalogue exposed by the relay.
//
// Each tool has a name, a description and a JSON-schema input declaration.
// Arguments arrive as a generic map and are decoded into a typed request
// before the tool runs. Results are a list of text or image content blocks.
//
// The catalogue:
//
//   - get_visual_effects lists the effects offered by the API
//   - generate_with_effect submits a job using an effect
//   - generate_custom_advanced submits a job from a free-form prompt
//   - smart_poll_result waits for a job and reports its outcome
//   - display_media renders a result URL inline
//
// Credentials are passed per call with [WithCredential]. When the context
// carries none, the registry's default credential is used.
package tools
