package sources

import (
	"context"
	"log/slog"
	"sync"

	"sentinel-hq/sentinel/pkg/limits/ratelimit"
	"sentinel-hq/sentinel/pkg/screening"
)

// Factory builds a Client from a Config. Implemented by the sourcefactory
// package; injected here to keep adapter packages from importing each other.
type Factory func(Config) (Client, error)

// Registry holds the configured sources and exposes the currently enabled
// set. Enable/Disable/Configure take the write lock so a concurrent
// EnabledSources snapshot never observes a partially-updated source;
// a snapshot taken before a change keeps working unchanged, so a fan-out
// already in flight is never affected.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*registryEntry
	factory Factory
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

type registryEntry struct {
	config Config
	client Client
}

// NewRegistry creates an empty registry using the given factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		factory: factory,
		limiter: ratelimit.NewLimiter(),
		logger:  slog.Default().With("component", "sources.registry"),
	}
}

// Register adds a source from its configuration. The client is built
// immediately and wrapped with the source's rate limit, if any.
// Registration order determines iteration order everywhere else.
func (r *Registry) Register(cfg Config) error {
	client, err := r.buildClient(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[cfg.Name]; !exists {
		r.order = append(r.order, cfg.Name)
	}
	r.entries[cfg.Name] = &registryEntry{config: cfg, client: client}
	r.limiter.SetLimit(cfg.Name, cfg.RateLimitPerMinute)

	r.logger.Info("source registered",
		"source", cfg.Name,
		"type", cfg.Type,
		"enabled", cfg.Enabled,
		"rate_limit_per_minute", cfg.RateLimitPerMinute,
	)

	return nil
}

// buildClient constructs and wraps a client for the config.
func (r *Registry) buildClient(cfg Config) (Client, error) {
	client, err := r.factory(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimitPerMinute > 0 {
		client = &limitedClient{Client: client, limiter: r.limiter}
	}

	return client, nil
}

// EnabledSources returns a snapshot of the enabled clients in registration
// order. The slice is freshly allocated and safe to iterate without
// locking; later registry changes do not affect it.
func (r *Registry) EnabledSources() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]Client, 0, len(r.order))
	for _, name := range r.order {
		entry := r.entries[name]
		if entry.config.Enabled {
			clients = append(clients, entry.client)
		}
	}
	return clients
}

// EnabledNames returns the enabled source names in registration order.
func (r *Registry) EnabledNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if r.entries[name].config.Enabled {
			names = append(names, name)
		}
	}
	return names
}

// Configs returns a snapshot of every source configuration in registration
// order, enabled or not.
func (r *Registry) Configs() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs := make([]Config, 0, len(r.order))
	for _, name := range r.order {
		configs = append(configs, r.entries[name].config)
	}
	return configs
}

// SourceHealth returns the health of the named source's client. The second
// return value is false when the source is not registered.
func (r *Registry) SourceHealth(name string) (Health, bool) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return Health{}, false
	}
	return entry.client.Health(), true
}

// Enable marks a source as participating in fan-outs.
func (r *Registry) Enable(name string) error {
	return r.setEnabled(name, true)
}

// Disable removes a source from future fan-outs. In-flight validations
// that already snapshotted the source are unaffected.
func (r *Registry) Disable(name string) error {
	return r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return &UnknownSourceError{Source: name}
	}
	entry.config.Enabled = enabled

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	r.logger.Info("source "+state, "source", name)

	return nil
}

// Configure sets a source's API key and rebuilds its client so the new
// credential takes effect on the next fan-out.
func (r *Registry) Configure(name, apiKey string) error {
	r.mu.Lock()
	entry, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return &UnknownSourceError{Source: name}
	}
	cfg := entry.config
	r.mu.Unlock()

	cfg.APIKey = apiKey

	client, err := r.buildClient(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; the entry cannot vanish but may have
	// changed enabled state meanwhile.
	entry, ok = r.entries[name]
	if !ok {
		return &UnknownSourceError{Source: name}
	}
	old := entry.client
	cfg.Enabled = entry.config.Enabled
	entry.config = cfg
	entry.client = client

	if old != nil {
		old.Close()
	}

	r.logger.Info("source API key configured", "source", name)
	return nil
}

// Limiter exposes the per-source rate limiter, mainly for stats.
func (r *Registry) Limiter() *ratelimit.Limiter {
	return r.limiter
}

// Close closes every registered client.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		if err := r.entries[name].client.Close(); err != nil {
			r.logger.Warn("failed to close source client", "source", name, "error", err)
		}
	}
	return nil
}

// limitedClient rejects lookups locally once the source's token bucket is
// empty, before any network traffic happens.
type limitedClient struct {
	Client
	limiter *ratelimit.Limiter
}

// Check consumes one rate-limit token, then delegates.
func (c *limitedClient) Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error) {
	if !c.limiter.Allow(c.Client.Name()) {
		return nil, &RateLimitError{
			Source:  c.Client.Name(),
			Message: "local rate limit bucket empty",
		}
	}
	return c.Client.Check(ctx, name, category)
}
