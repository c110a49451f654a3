package snapsolve

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// registrySnapshot is the immutable view readers get. It is replaced
// wholesale on reconfiguration, never mutated, so an in-flight request keeps
// the client it was issued with even if the registry moves on.
type registrySnapshot struct {
	provider Provider
	client   providerClient // nil when unconfigured
}

// Registry holds at most one live provider client, rebuilt whenever the
// configuration changes. Construction failures degrade silently into the
// unconfigured state so a later Reinitialize can retry.
type Registry struct {
	log     *logrus.Entry
	build   func(Config) (providerClient, error)
	current atomic.Pointer[registrySnapshot]
}

func NewRegistry(log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Registry{
		log:   log.WithField("component", "registry"),
		build: newProviderClient,
	}
	r.current.Store(&registrySnapshot{})
	return r
}

func newProviderClient(cfg Config) (providerClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderOpenRouter:
		return newOpenAIClient(cfg)
	case ProviderGemini:
		return newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Reinitialize rebuilds the active client from cfg and reports whether a
// client is live afterwards. Idempotent; selecting one provider clears all
// others by construction since the snapshot holds a single client.
func (r *Registry) Reinitialize(cfg Config) bool {
	if !cfg.HasAPIKey() {
		r.current.Store(&registrySnapshot{provider: cfg.Provider})
		r.log.WithField("provider", cfg.Provider).Warn("no API key available, client not initialized")
		return false
	}
	client, err := r.build(cfg)
	if err != nil {
		r.current.Store(&registrySnapshot{provider: cfg.Provider})
		r.log.WithError(err).WithField("provider", cfg.Provider).Error("initializing provider client")
		return false
	}
	r.current.Store(&registrySnapshot{provider: cfg.Provider, client: client})
	r.log.WithField("provider", cfg.Provider).Info("provider client initialized")
	return true
}

// active returns the current snapshot; client is nil when unconfigured.
func (r *Registry) active() (Provider, providerClient) {
	s := r.current.Load()
	return s.provider, s.client
}
