package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"framelink-support/internal/infrastructure/metrics"
	"framelink-support/internal/utils/platformerrors"
)

// Definition describes the assistant created when none exists.
type Definition struct {
	Model        string
	Name         string
	Instructions string
}

// Provisioner creates and verifies assistants upstream.
type Provisioner interface {
	CreateAssistant(ctx context.Context, def Definition) (string, error)
	AssistantExists(ctx context.Context, id string) (bool, error)
}

// HandleStore holds the current assistant id. WithLock serializes creation across
// every process sharing the store.
type HandleStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, id string) error
	CompareAndClear(ctx context.Context, id string) error
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// Provider is the ensure-exists accessor for the assistant handle.
type Provider struct {
	def          Definition
	configuredID string
	provisioner  Provisioner
	store        HandleStore
	group        singleflight.Group
	log          zerolog.Logger
}

// NewProvider creates a Provider. configuredID is verified before first use.
func NewProvider(def Definition, configuredID string, provisioner Provisioner, store HandleStore, log zerolog.Logger) *Provider {
	return &Provider{
		def:          def,
		configuredID: strings.TrimSpace(configuredID),
		provisioner:  provisioner,
		store:        store,
		log:          log.With().Str("component", "assistant-provider").Logger(),
	}
}

// Ensure returns the assistant id, verifying or creating it on first use.
func (p *Provider) Ensure(ctx context.Context) (string, error) {
	if id := p.cached(ctx); id != "" {
		return id, nil
	}

	v, err, _ := p.group.Do("assistant", func() (interface{}, error) {
		var id string
		err := p.store.WithLock(ctx, func(ctx context.Context) error {
			if cached := p.cached(ctx); cached != "" {
				id = cached
				return nil
			}
			resolved, err := p.resolve(ctx)
			if err != nil {
				return err
			}
			id = resolved
			if err := p.store.Set(ctx, id); err != nil {
				p.log.Warn().Err(err).Str("assistant_id", id).Msg("failed to cache assistant id")
			}
			return nil
		})
		return id, err
	})
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "Failed to prepare assistant")
	}
	return v.(string), nil
}

// Invalidate drops the cached id if it still equals id.
func (p *Provider) Invalidate(ctx context.Context, id string) {
	if err := p.store.CompareAndClear(ctx, id); err != nil {
		p.log.Warn().Err(err).Str("assistant_id", id).Msg("failed to invalidate assistant id")
		return
	}
	p.log.Info().Str("assistant_id", id).Msg("assistant id invalidated")
}

func (p *Provider) cached(ctx context.Context) string {
	id, err := p.store.Get(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("assistant id lookup failed")
		return ""
	}
	return id
}

func (p *Provider) resolve(ctx context.Context) (string, error) {
	if p.configuredID != "" {
		exists, err := p.provisioner.AssistantExists(ctx, p.configuredID)
		if err != nil {
			return "", err
		}
		if exists {
			return p.configuredID, nil
		}
		p.log.Warn().Str("assistant_id", p.configuredID).Msg("configured assistant not found upstream, creating a new one")
	}

	id, err := p.provisioner.CreateAssistant(ctx, p.def)
	if err != nil {
		return "", err
	}
	metrics.RecordAssistantCreation()
	p.log.Info().Str("assistant_id", id).Str("model", p.def.Model).Msg("assistant created")
	return id, nil
}

// MemoryStore keeps the assistant id in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	id string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, nil
}

func (s *MemoryStore) Set(_ context.Context, id string) error {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) CompareAndClear(_ context.Context, id string) error {
	s.mu.Lock()
	if s.id == id {
		s.id = ""
	}
	s.mu.Unlock()
	return nil
}

// WithLock runs fn directly; in-process callers are already collapsed by singleflight.
func (s *MemoryStore) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
