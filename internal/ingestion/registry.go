package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

// Provider turns the raw bytes of one document kind into plain text
type Provider interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Loader prepares a Provider. It runs once per process, in the background.
type Loader func(ctx context.Context) (Provider, error)

type slot struct {
	loader   Loader
	provider Provider
	err      error
	done     chan struct{}
}

// Registry holds the parsing capabilities available to the extractor
type Registry struct {
	mu    sync.RWMutex
	slots map[models.MimeKind]*slot
	once  sync.Once
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		slots: make(map[models.MimeKind]*slot),
	}
}

// DefaultRegistry registers the PDF, DOCX and plain text providers
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(models.MimePDF, func(ctx context.Context) (Provider, error) {
		return NewPDFProvider(), nil
	})
	r.Register(models.MimeDOCX, func(ctx context.Context) (Provider, error) {
		return NewDOCXProvider(), nil
	})
	r.RegisterReady(models.MimePlainText, TextProvider{})
	return r
}

// Register adds a provider that becomes available once LoadAll has run its loader
func (r *Registry) Register(kind models.MimeKind, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[kind] = &slot{loader: loader, done: make(chan struct{})}
}

// RegisterReady adds a provider that needs no loading
func (r *Registry) RegisterReady(kind models.MimeKind, p Provider) {
	s := &slot{provider: p, done: make(chan struct{})}
	close(s.done)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[kind] = s
}

// LoadAll starts every pending loader in the background and returns immediately.
// Only the first call has any effect.
func (r *Registry) LoadAll(ctx context.Context) {
	r.once.Do(func() {
		r.mu.RLock()
		defer r.mu.RUnlock()

		for kind, s := range r.slots {
			if s.loader == nil {
				continue
			}
			go r.load(ctx, kind, s)
		}
	})
}

func (r *Registry) load(ctx context.Context, kind models.MimeKind, s *slot) {
	p, err := s.loader(ctx)

	r.mu.Lock()
	s.provider, s.err = p, err
	r.mu.Unlock()
	close(s.done)

	if err != nil {
		log.Printf("Failed to load %s provider: %v", kind.Label(), err)
		return
	}
	log.Printf("%s provider ready", kind.Label())
}

func (r *Registry) slot(kind models.MimeKind) (*slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[kind]
	return s, ok
}

// Ready reports whether the provider for kind has loaded successfully
func (r *Registry) Ready(kind models.MimeKind) bool {
	_, err := r.Provider(kind)
	return err == nil
}

// AwaitReady blocks until the provider for kind has finished loading
func (r *Registry) AwaitReady(ctx context.Context, kind models.MimeKind) error {
	s, ok := r.slot(kind)
	if !ok {
		return fmt.Errorf("%w: no %s provider registered", ErrProviderNotReady, kind.Label())
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	_, err := r.Provider(kind)
	return err
}

// AwaitAll calls AwaitReady for each kind in turn and returns once all of them have
// finished loading. Load failures are joined; only ctx ends the wait early.
func (r *Registry) AwaitAll(ctx context.Context, kinds ...models.MimeKind) error {
	var errs []error
	for _, kind := range kinds {
		err := r.AwaitReady(ctx, kind)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Provider returns the loaded provider for kind, or ErrProviderNotReady
func (r *Registry) Provider(kind models.MimeKind) (Provider, error) {
	s, ok := r.slot(kind)
	if !ok {
		return nil, fmt.Errorf("%w: no %s provider registered", ErrProviderNotReady, kind.Label())
	}

	select {
	case <-s.done:
	default:
		return nil, fmt.Errorf("%w: %s provider is still loading", ErrProviderNotReady, kind.Label())
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if s.err != nil {
		return nil, fmt.Errorf("%w: %s provider failed to load: %v", ErrProviderNotReady, kind.Label(), s.err)
	}
	return s.provider, nil
}
