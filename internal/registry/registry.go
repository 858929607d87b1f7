// Package registry holds the static lookup from a model identifier to its
// upstream provider, upstream model name and display metadata. The registry
// is built once at process start and passed by reference into the services
// that need it; it is read-only afterwards and safe for concurrent reads.
package registry

// ProviderID identifies which upstream generation service serves a model.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGoogle    ProviderID = "google"
)

// ModelDescriptor is pure data: no I/O, loaded once, immutable.
type ModelDescriptor struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	Provider     ProviderID `json:"provider"`
	UpstreamName string     `json:"upstream_name"`
	PriceTier    string     `json:"price_tier"`
}

// DefaultModelID is the documented fallback for unknown or missing model ids.
const DefaultModelID = "claude-haiku-4.5"

// Registry maps model ids to descriptors.
type Registry struct {
	models    map[string]ModelDescriptor
	order     []string
	defaultID string
}

// New builds a registry from the given descriptors. The descriptor whose ID
// equals defaultID becomes the fallback; it must be present.
func New(defaultID string, descriptors ...ModelDescriptor) *Registry {
	r := &Registry{
		models:    make(map[string]ModelDescriptor, len(descriptors)),
		defaultID: defaultID,
	}
	for _, d := range descriptors {
		r.models[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	if _, ok := r.models[defaultID]; !ok {
		panic("registry: default model id not among descriptors: " + defaultID)
	}
	return r
}

// NewDefault returns the registry shipped with the service.
func NewDefault() *Registry {
	return New(DefaultModelID,
		ModelDescriptor{
			ID:           "claude-haiku-4.5",
			Label:        "Claude Haiku 4.5",
			Provider:     ProviderAnthropic,
			UpstreamName: "claude-haiku-4-5",
			PriceTier:    "standard",
		},
		ModelDescriptor{
			ID:           "claude-sonnet-4.5",
			Label:        "Claude Sonnet 4.5",
			Provider:     ProviderAnthropic,
			UpstreamName: "claude-sonnet-4-5",
			PriceTier:    "premium",
		},
		ModelDescriptor{
			ID:           "gpt-4o-mini",
			Label:        "GPT-4o mini",
			Provider:     ProviderOpenAI,
			UpstreamName: "gpt-4o-mini",
			PriceTier:    "standard",
		},
		ModelDescriptor{
			ID:           "gpt-4o",
			Label:        "GPT-4o",
			Provider:     ProviderOpenAI,
			UpstreamName: "gpt-4o",
			PriceTier:    "premium",
		},
		ModelDescriptor{
			ID:           "gemini-2.0-flash",
			Label:        "Gemini 2.0 Flash",
			Provider:     ProviderGoogle,
			UpstreamName: "gemini-2.0-flash",
			PriceTier:    "standard",
		},
	)
}

// Resolve returns the descriptor for id, falling back to the default model
// when id is unknown or empty. Resolution never fails.
func (r *Registry) Resolve(id string) ModelDescriptor {
	if d, ok := r.models[id]; ok {
		return d
	}
	return r.models[r.defaultID]
}

// Default returns the documented fallback model.
func (r *Registry) Default() ModelDescriptor {
	return r.models[r.defaultID]
}

// List returns every descriptor in registration order.
func (r *Registry) List() []ModelDescriptor {
	out := make([]ModelDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.models[id])
	}
	return out
}
