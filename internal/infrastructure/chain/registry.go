package chain

import (
	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/config"
	"github.com/emailauth/relayer/internal/domain"
)

// Registry resolves a configured chain name to its gateway client.
// Clients are built once at startup; an unconfigured chain name is a
// request-level failure, not a panic.
type Registry struct {
	clients map[string]application.ChainClient
}

func NewRegistry(chains map[string]config.ChainConfig) *Registry {
	clients := make(map[string]application.ChainClient, len(chains))
	for name, cfg := range chains {
		clients[name] = NewHTTPClient(name, cfg)
	}
	return &Registry{clients: clients}
}

func (r *Registry) Client(chain string) (application.ChainClient, error) {
	client, ok := r.clients[chain]
	if !ok {
		return nil, domain.NewUnknownChainError(chain)
	}
	return client, nil
}
