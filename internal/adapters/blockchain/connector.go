package blockchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// Connector dials the configured network when a use case first needs it
type Connector struct {
	network *config.Network
	log     *slog.Logger
	wrap    func(usecase.ChainClient) usecase.ChainClient
}

// NewConnector creates a connector for cfg.Network. wrap may be nil.
func NewConnector(cfg *config.RuntimeConfig, log *slog.Logger, wrap func(usecase.ChainClient) usecase.ChainClient) *Connector {
	return &Connector{
		network: cfg.Network,
		log:     log,
		wrap:    wrap,
	}
}

// Connect dials the network and verifies its chain id
func (c *Connector) Connect(ctx context.Context) (usecase.ChainClient, error) {
	if c.network == nil || c.network.RPCURL == "" {
		return nil, fmt.Errorf("%w: no network configured; set USE_LOCAL_DEFAULT=TRUE or CLIENT_URL and CHAIN_ID", domain.ErrInvalidConfig)
	}

	c.log.Debug("connecting to network", "network", c.network.Name, "rpc", c.network.RPCURL)
	client, err := Dial(ctx, c.network, c.log)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", c.network.Name, err)
	}
	if c.wrap != nil {
		return c.wrap(client), nil
	}
	return client, nil
}

var _ usecase.ChainConnector = (*Connector)(nil)
