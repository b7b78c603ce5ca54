package sheets

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"studentdesk/internal/logging"
)

// Connector opens a backend. It is called until it succeeds once.
type Connector func(ctx context.Context) (Backend, error)

// Provider hands out a single backend for the life of the process. A failed
// connect is not remembered, so the next request tries again.
type Provider struct {
	connect Connector

	mu      sync.Mutex
	backend Backend
}

func NewProvider(connect Connector) *Provider {
	return &Provider{connect: connect}
}

// StaticProvider wraps an already open backend.
func StaticProvider(b Backend) *Provider {
	return &Provider{backend: b}
}

// Backend returns the shared backend, connecting on first use.
func (p *Provider) Backend(ctx context.Context) (Backend, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.backend != nil {
		return p.backend, nil
	}
	if p.connect == nil {
		return nil, errors.Wrap(ErrConnection, "no connector configured")
	}
	b, err := p.connect(ctx)
	if err != nil {
		logging.L().Errorw("spreadsheet connect failed", "error", err)
		return nil, markErr(ErrConnection, err, "connect")
	}
	logging.L().Infow("spreadsheet backend connected", "backend", b.Name())
	p.backend = b
	return b, nil
}
