package tools

import "context"

type credentialKey struct{}

// WithCredential returns a copy of ctx carrying an API credential for tool
// calls made with it. An empty credential leaves ctx unchanged.
func WithCredential(ctx context.Context, credential string) context.Context {
	if credential == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey{}, credential)
}

// CredentialFrom returns the credential attached by [WithCredential].
func CredentialFrom(ctx context.Context) (string, bool) {
	c, ok := ctx.Value(credentialKey{}).(string)
	return c, ok && c != ""
}
