package speech

import (
	"context"
	"net/http"
	"sort"
)

// HTTPClient is the outbound transport shared by every adapter.
// *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SynthesisResult is the audio returned by a provider.
type SynthesisResult struct {
	Audio       []byte
	ContentType string
}

// Provider translates a canonical request into one provider's native API call.
// Implementations must be safe for concurrent use and hold no per-request state.
type Provider interface {
	// Name returns the registry key, the part before "/" in a model identifier
	Name() string

	// Synthesize performs exactly one upstream call using client, relaying
	// token as the provider credential
	Synthesize(ctx context.Context, client HTTPClient, req *ProcessedSpeechRequest, token string) (*SynthesisResult, error)
}

// Registry maps provider keys to adapters. It is populated once at startup
// and only read afterwards.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry keyed by each provider's Name.
// A later provider with a duplicate name replaces the earlier one.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Lookup returns the adapter registered under name (case-sensitive).
func (r *Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider keys in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch hands req to the adapter registered for req.Provider.
func (r *Registry) Dispatch(ctx context.Context, client HTTPClient, req *ProcessedSpeechRequest, token string) (*SynthesisResult, error) {
	p, ok := r.Lookup(req.Provider)
	if !ok {
		return nil, NewUnsupportedProviderError(req.Provider)
	}
	return p.Synthesize(ctx, client, req, token)
}
