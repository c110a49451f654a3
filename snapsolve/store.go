package snapsolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// ConfigStore persists the assistant configuration as a JSON file and
// notifies subscribers when request-relevant fields change. It replaces the
// event-emitter coupling of older designs with explicit subscriptions.
type ConfigStore struct {
	path string
	log  *logrus.Entry

	mu        sync.Mutex
	subs      []func(Config)
	selfWrite int // pending saves the watcher should ignore
}

// NewConfigStore creates a store backed by the file at path. The file is
// created with defaults on first Load if it does not exist.
func NewConfigStore(path string, log *logrus.Logger) *ConfigStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ConfigStore{
		path: path,
		log:  log.WithField("component", "config"),
	}
}

// Load reads the persisted configuration, applying defaults and clamping
// provider and model selections. Any read or decode error degrades to the
// default configuration rather than failing.
func (s *ConfigStore) Load() Config {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := defaultConfig()
		if err := s.save(cfg); err != nil {
			s.log.WithError(err).Error("writing initial config")
		}
		return cfg
	}
	if err != nil {
		s.log.WithError(err).Error("reading config")
		return defaultConfig()
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		s.log.WithError(err).Error("decoding config")
		return defaultConfig()
	}

	changed := false
	switch cfg.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
	default:
		cfg.Provider = ProviderGemini
		changed = true
	}
	for _, m := range []*string{&cfg.ExtractionModel, &cfg.SolutionModel, &cfg.DebuggingModel, &cfg.MCQModel} {
		if clamped := sanitizeModel(*m, cfg.Provider); clamped != *m {
			s.log.WithField("model", *m).Warn("invalid model selection, using default")
			*m = clamped
			changed = true
		}
	}
	if changed {
		if err := s.save(cfg); err != nil {
			s.log.WithError(err).Error("persisting sanitized config")
		}
	}
	return cfg
}

func (s *ConfigStore) save(cfg Config) error {
	s.mu.Lock()
	s.selfWrite++
	s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// ConfigUpdate is a partial configuration change; nil fields are untouched.
type ConfigUpdate struct {
	Provider         *Provider
	OpenAIAPIKey     *string
	GeminiAPIKey     *string
	OpenRouterAPIKey *string
	OpenRouterModel  *string
	ExtractionModel  *string
	SolutionModel    *string
	DebuggingModel   *string
	MCQModel         *string
	Language         *string
	SolvingMode      *Mode
}

// Update merges u into the persisted configuration. Setting a
// provider-specific key without naming a provider switches to that provider;
// switching providers resets all stage models to the new provider's default.
// Subscribers are notified only when request-relevant fields change, so
// display-only updates never tear down in-flight clients.
func (s *ConfigStore) Update(u ConfigUpdate) Config {
	cfg := s.Load()
	provider := cfg.Provider
	if u.Provider != nil {
		provider = *u.Provider
	} else {
		switch {
		case u.OpenAIAPIKey != nil:
			provider = ProviderOpenAI
		case u.GeminiAPIKey != nil:
			provider = ProviderGemini
		case u.OpenRouterAPIKey != nil:
			provider = ProviderOpenRouter
		}
	}

	providerChanged := provider != cfg.Provider
	if providerChanged {
		cfg.Provider = provider
		def := defaultModel(provider)
		if provider == ProviderOpenRouter && u.OpenRouterModel != nil {
			def = *u.OpenRouterModel
		}
		cfg.ExtractionModel = def
		cfg.SolutionModel = def
		cfg.DebuggingModel = def
		cfg.MCQModel = def
	}

	relevant := providerChanged
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
			relevant = true
		}
	}
	setStr(&cfg.OpenAIAPIKey, u.OpenAIAPIKey)
	setStr(&cfg.GeminiAPIKey, u.GeminiAPIKey)
	setStr(&cfg.OpenRouterAPIKey, u.OpenRouterAPIKey)
	setStr(&cfg.OpenRouterModel, u.OpenRouterModel)
	setStr(&cfg.Language, u.Language)
	if u.ExtractionModel != nil {
		cfg.ExtractionModel = sanitizeModel(*u.ExtractionModel, provider)
		relevant = true
	}
	if u.SolutionModel != nil {
		cfg.SolutionModel = sanitizeModel(*u.SolutionModel, provider)
		relevant = true
	}
	if u.DebuggingModel != nil {
		cfg.DebuggingModel = sanitizeModel(*u.DebuggingModel, provider)
		relevant = true
	}
	if u.MCQModel != nil {
		cfg.MCQModel = sanitizeModel(*u.MCQModel, provider)
		relevant = true
	}
	if u.SolvingMode != nil {
		// Mode only changes which workflow the next cycle runs; no client
		// reinitialization is needed, so subscribers are not notified.
		cfg.SolvingMode = *u.SolvingMode
	}

	if err := s.save(cfg); err != nil {
		s.log.WithError(err).Error("saving config")
	}
	if relevant {
		s.notify(cfg)
	}
	return cfg
}

// Subscribe registers fn to run after every request-relevant config change.
func (s *ConfigStore) Subscribe(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *ConfigStore) notify(cfg Config) {
	s.mu.Lock()
	subs := make([]func(Config), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(cfg)
	}
}

// Watch reloads and notifies subscribers when the config file is edited
// outside this process. Saves made through Update are not re-notified.
// The watcher stops when ctx is done.
func (s *ConfigStore) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return err
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != s.path || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				s.mu.Lock()
				skip := s.selfWrite > 0
				if skip {
					s.selfWrite--
				}
				s.mu.Unlock()
				if skip {
					continue
				}
				s.log.Info("config file changed on disk")
				s.notify(s.Load())
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.WithError(err).Warn("config watcher error")
			}
		}
	}()
	return nil
}

// TestAPIKey verifies a credential before it is saved. OpenAI keys are
// checked with a live model-list call; Gemini and OpenRouter keys are
// format-checked only. An empty provider is auto-detected from the key.
func TestAPIKey(ctx context.Context, key string, p Provider) error {
	if p == "" {
		p = DetectProvider(key)
	}
	switch p {
	case ProviderOpenAI:
		client := openai.NewClient(strings.TrimSpace(key))
		if _, err := client.ListModels(ctx); err != nil {
			switch httpStatus(err) {
			case 401:
				return errors.New("invalid API key, please check your OpenAI key and try again")
			case 429:
				return errors.New("rate limit exceeded, your OpenAI API key has reached its request limit or has insufficient quota")
			}
			return fmt.Errorf("validating OpenAI API key: %w", err)
		}
		return nil
	case ProviderGemini:
		if len(strings.TrimSpace(key)) >= 20 {
			return nil
		}
		return errors.New("invalid Gemini API key format")
	case ProviderOpenRouter:
		if openRouterKeyRe.MatchString(strings.TrimSpace(key)) {
			return nil
		}
		return errors.New("invalid OpenRouter API key format")
	default:
		return fmt.Errorf("unknown provider %q", p)
	}
}
